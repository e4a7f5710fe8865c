package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thanos-io/objstore"

	"github.com/aleksaelezovic/obo2rdf/internal/config"
	"github.com/aleksaelezovic/obo2rdf/internal/emit"
	"github.com/aleksaelezovic/obo2rdf/internal/encoding"
	"github.com/aleksaelezovic/obo2rdf/internal/obo"
	"github.com/aleksaelezovic/obo2rdf/internal/resolver"
	"github.com/aleksaelezovic/obo2rdf/internal/storage"
	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
	"github.com/aleksaelezovic/obo2rdf/pkg/store"
)

const (
	goOBO = "format-version: 1.2\n\n[Term]\nid: GO:0000002\nname: x\n"
	doOBO = "[Term]\nid: DOID:4\nname: disease\n"

	goGraph = "http://bio2rdf.org/go_resource:bio2rdf.dataset.go.R5"
	doGraph = "http://bio2rdf.org/do_resource:bio2rdf.dataset.do.R5"
)

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, fs afero.Fs, name string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, name, data, 0o644))
}

func testInput(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/in/go.obo", []byte(goOBO))
	writeFile(t, fs, "/in/sub/doid.obo.gz", gzipped(t, doOBO))
	writeFile(t, fs, "/in/chebi.obo", []byte("[Term]\nid: CHEBI:1\n"))
	writeFile(t, fs, "/in/README.txt", []byte("not an ontology"))
	return fs
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Input.Dir = "/in"
	cfg.Input.Exclude = []string{"chebi"}
	cfg.Output.Dir = "/out"
	cfg.Bucket.Prefix = "bio2rdf"
	cfg.Workers = 2
	return cfg
}

func newTestStore(t *testing.T) *store.TripleStore {
	t.Helper()
	s, err := storage.NewBadgerStorage("", nil)
	require.NoError(t, err)
	ts := store.NewTripleStore(s, encoding.NewTermEncoder(), encoding.NewTermDecoder())
	t.Cleanup(func() { _ = ts.Close() })
	return ts
}

func newTestPipeline(t *testing.T, cfg *config.Config, fs afero.Fs, sinks Sinks, reg prometheus.Registerer) *Pipeline {
	t.Helper()
	res, err := resolver.New(nil, 0)
	require.NoError(t, err)
	p, err := New(cfg, fs, res, sinks, nil, reg)
	require.NoError(t, err)
	return p
}

func TestDiscover(t *testing.T) {
	fs := afero.NewBasePathFs(testInput(t), "/in")

	sources, err := Discover(fs, Selection{Include: []string{"**/*.obo", "**/*.obo.gz", "*.obo"}})
	require.NoError(t, err)
	assert.Equal(t, []Source{
		{Path: "chebi.obo", Abbreviation: "chebi"},
		{Path: "sub/doid.obo.gz", Abbreviation: "do", Compressed: true},
		{Path: "go.obo", Abbreviation: "go"},
	}, sources)

	sources, err = Discover(fs, Selection{Include: []string{"**/*.obo*"}, Exclude: []string{"GO"}})
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "chebi", sources[0].Abbreviation)
	assert.Equal(t, "do", sources[1].Abbreviation)

	sources, err = Discover(fs, Selection{Include: []string{"**/*.obo*"}, ContinueFrom: "doid"})
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "do", sources[0].Abbreviation, "continue_from includes the named ontology")

	_, err = Discover(fs, Selection{Include: []string{"**/*.obo*"}, ContinueFrom: "mondo"})
	assert.Error(t, err)

	_, err = Discover(fs, Selection{Include: []string{"[unclosed"}})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	fs := testInput(t)
	bucket := objstore.NewInMemBucket()
	ts := newTestStore(t)
	stream := emit.NewCollector()
	reg := prometheus.NewRegistry()

	p := newTestPipeline(t, testConfig(), fs, Sinks{Store: ts, Stream: stream, Bucket: bucket}, reg)
	results, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "do.nq", results[0].Output)
	assert.Equal(t, "go.nq", results[1].Output)
	// ontology declaration, format-version, four name statements, default parent
	assert.Equal(t, 7, results[1].Stats.Statements)
	assert.Positive(t, results[1].Bytes)

	out, err := afero.ReadFile(fs, "/out/go.nq")
	require.NoError(t, err)
	assert.Contains(t, string(out),
		`<http://bio2rdf.org/go:0000002> <http://www.w3.org/2000/01/rdf-schema#label> "x"@en <`+goGraph+"> .\n")

	out, err = afero.ReadFile(fs, "/out/do.nq")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<http://bio2rdf.org/doid:4> ")
	assert.Contains(t, string(out), "<"+doGraph+">")

	desc, err := afero.ReadFile(fs, "/out/"+DescriptionFile)
	require.NoError(t, err)
	assert.Contains(t, string(desc),
		`<http://download.bio2rdf.org/release/5/bioportal/go.nq> <http://rdfs.org/ns/void#triples> "7"^^<http://www.w3.org/2001/XMLSchema#integer> .`)
	assert.Contains(t, string(desc), "<http://data.bioontology.org/ontologies/DO/download>")

	objects := bucket.Objects()
	assert.Contains(t, objects, "bio2rdf/go.nq")
	assert.Contains(t, objects, "bio2rdf/do.nq")
	assert.Contains(t, objects, "bio2rdf/"+DescriptionFile)

	counts, err := ts.GraphCounts()
	require.NoError(t, err)
	assert.Equal(t, int64(7), counts[goGraph])
	assert.Equal(t, int64(results[0].Stats.Statements), counts[doGraph])
	assert.Equal(t, results[0].Stats.Statements+results[1].Stats.Statements, stream.Len())

	assert.Equal(t, 2.0, testutil.ToFloat64(p.filesTotal.WithLabelValues(outcomeConverted)))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.filesTotal.WithLabelValues(outcomeFailed)))
}

func TestRunReplacesStoredGraph(t *testing.T) {
	fs := testInput(t)
	ts := newTestStore(t)
	p := newTestPipeline(t, testConfig(), fs, Sinks{Store: ts}, nil)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	counts, err := ts.GraphCounts()
	require.NoError(t, err)
	assert.Equal(t, int64(7), counts[goGraph])
}

func TestRunContinuesPastFailures(t *testing.T) {
	fs := testInput(t)
	writeFile(t, fs, "/in/broken.obo.gz", []byte("plain text pretending to be gzip"))

	reg := prometheus.NewRegistry()
	p := newTestPipeline(t, testConfig(), fs, Sinks{}, reg)
	results, err := p.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.obo.gz")
	assert.Len(t, results, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.filesTotal.WithLabelValues(outcomeFailed)))

	desc, err := afero.ReadFile(fs, "/out/"+DescriptionFile)
	require.NoError(t, err)
	assert.NotContains(t, string(desc), "broken")
}

func TestConvertNTriplesGzip(t *testing.T) {
	fs := testInput(t)
	cfg := testConfig()
	cfg.Output.Format = "nt"
	compress := true
	cfg.Output.Gzip = &compress
	cfg.Detail = "min"
	p := newTestPipeline(t, cfg, fs, Sinks{}, nil)

	res, err := p.Convert(context.Background(), Source{Path: "go.obo", Abbreviation: "go"})
	require.NoError(t, err)
	assert.Equal(t, "go.nt.gz", res.Output)

	f, err := fs.Open("/out/go.nt.gz")
	require.NoError(t, err)
	defer f.Close()
	r, err := gzip.NewReader(f)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// min drops the full-tier ontology declaration and header tag
	assert.Len(t, lines, 5)
	for _, l := range lines {
		assert.NotContains(t, l, goGraph)
	}
}

func TestDescribe(t *testing.T) {
	res := Result{
		Source: Source{Path: "go.obo", Abbreviation: "go"},
		Output: "go.nt.gz",
		Stats:  obo.Stats{Statements: 42},
	}
	quads := Describe(res, "5", emit.FormatNTriples, true)

	output := rdf.NewNamedNode("http://download.bio2rdf.org/release/5/bioportal/go.nt.gz")
	var formats []string
	for _, q := range quads {
		if q.Subject.Equals(output) && q.Predicate.Equals(rdf.DCFormat) {
			formats = append(formats, q.Object.(*rdf.Literal).Value)
		}
	}
	assert.Equal(t, []string{"application/gzip", "application/n-triples"}, formats)
}

func TestNewBucket(t *testing.T) {
	bkt, err := NewBucket(config.BucketConfig{})
	require.NoError(t, err)
	assert.Nil(t, bkt)

	bkt, err = NewBucket(config.BucketConfig{Backend: config.BucketMemory})
	require.NoError(t, err)
	assert.NotNil(t, bkt)

	bkt, err = NewBucket(config.BucketConfig{Backend: config.BucketFilesystem, Directory: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, bkt.Upload(context.Background(), "go.nq", strings.NewReader("x")))
	ok, err := bkt.Exists(context.Background(), "go.nq")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, bkt.Close())

	_, err = NewBucket(config.BucketConfig{Backend: "gcs"})
	assert.Error(t, err)
}
