package resolver

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ParseQName(t *testing.T) {
	r, err := New(nil, 0)
	require.NoError(t, err)

	tests := []struct {
		qname  string
		wantNS string
		wantID string
	}{
		{"GO:0000002", "go", "0000002"},
		{" CHEBI:15377 ", "chebi", "15377"},
		{"part_of", "", "part_of"},
		{"OBO_REL:has_part", "obo_rel", "has_part"},
		{"EFO:ORPHA:123", "efo", "ORPHA:123"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.qname, func(t *testing.T) {
			ns, id := r.ParseQName(tt.qname)
			assert.Equal(t, tt.wantNS, ns)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestRegistry_IRI(t *testing.T) {
	r, err := New(map[string]string{"GO": "http://purl.obolibrary.org/obo/GO_"}, 4)
	require.NoError(t, err)

	assert.Equal(t, "http://bio2rdf.org/obo_vocabulary:Entity", r.IRI("obo_vocabulary", "Entity"))
	assert.Equal(t, "http://www.w3.org/2000/01/rdf-schema#label", r.IRI("rdfs", "label"))
	assert.Equal(t, "http://purl.obolibrary.org/obo/GO_0005634", r.IRI("go", "0005634"))
	assert.Equal(t, "http://example.org/x", r.IRI("http", "//example.org/x"))

	// Served from the cache the second time
	assert.Equal(t, "http://purl.obolibrary.org/obo/GO_0005634", r.IRI("go", "0005634"))

	base, ok := r.Base("GO")
	assert.True(t, ok)
	assert.Equal(t, "http://purl.obolibrary.org/obo/GO_", base)
}

func TestRegistry_InvalidOverride(t *testing.T) {
	_, err := New(map[string]string{"go": ""}, 0)
	require.Error(t, err)
}

func TestLoadPrefixFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/prefixes.yaml", []byte("chebi: http://purl.obolibrary.org/obo/CHEBI_\n"), 0o644))

	prefixes, err := LoadPrefixFile(fs, "/prefixes.yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"chebi": "http://purl.obolibrary.org/obo/CHEBI_"}, prefixes)

	_, err = LoadPrefixFile(fs, "/missing.yaml")
	require.Error(t, err)
}
