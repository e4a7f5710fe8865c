package obo

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aleksaelezovic/obo2rdf/internal/resolver"
	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	bio2rdf = "http://bio2rdf.org/"
	goGraph = "http://bio2rdf.org/go_resource:bio2rdf.dataset.go.R5"
)

type recorder struct {
	lines [][]*rdf.Quad
}

func (r *recorder) Emit(quads []*rdf.Quad) error {
	r.lines = append(r.lines, quads)
	return nil
}

func (r *recorder) all() []*rdf.Quad {
	var out []*rdf.Quad
	for _, l := range r.lines {
		out = append(out, l...)
	}
	return out
}

func newTestTranslator(t *testing.T, opts Options) *Translator {
	t.Helper()
	reg, err := resolver.New(nil, 0)
	require.NoError(t, err)
	if opts.Abbreviation == "" {
		opts.Abbreviation = "go"
	}
	if opts.Release == "" {
		opts.Release = "5"
	}
	return NewTranslator(reg, opts)
}

func translate(t *testing.T, opts Options, input string) []*rdf.Quad {
	t.Helper()
	rec := &recorder{}
	_, err := newTestTranslator(t, opts).Translate(strings.NewReader(input), rec)
	require.NoError(t, err)
	return rec.all()
}

func iri(s string) *rdf.NamedNode {
	return rdf.NewNamedNode(s)
}

func vocab(local string) *rdf.NamedNode {
	return iri(bio2rdf + "obo_vocabulary:" + local)
}

func contains(quads []*rdf.Quad, s, p, o rdf.Term) bool {
	for _, q := range quads {
		if q.Subject.Equals(s) && q.Predicate.Equals(p) && q.Object.Equals(o) {
			return true
		}
	}
	return false
}

func countPredicate(quads []*rdf.Quad, p rdf.Term) int {
	n := 0
	for _, q := range quads {
		if q.Predicate.Equals(p) {
			n++
		}
	}
	return n
}

func TestTranslate_DefaultParent(t *testing.T) {
	quads := translate(t, Options{}, "[Term]\nid: GO:0000002\nname: x\n")

	term := iri(bio2rdf + "go:0000002")
	assert.True(t, contains(quads, term, rdf.RDFSSubClassOf, vocab("Entity")))
	assert.True(t, contains(quads, term, rdf.RDFType, rdf.OWLClass))
	assert.True(t, contains(quads, term, rdf.RDFSLabel, rdf.NewLiteralWithLanguage("x", "en")))
	assert.True(t, contains(quads, term, rdf.DCTitle, rdf.NewLiteralWithLanguage("x", "en")))
	assert.True(t, contains(quads, term, rdf.RDFSIsDefinedBy, iri(bio2rdf+"lsr:go")))

	for _, q := range quads {
		assert.True(t, q.Graph.Equals(iri(goGraph)), "statement outside the dataset graph: %s", q)
	}
}

func TestTranslate_ExplicitParentSuppressesDefault(t *testing.T) {
	quads := translate(t, Options{}, "[Term]\nid: GO:0000002\nname: x\nis_a: GO:0048308\n[Term]\nid: GO:0000003\n")

	term := iri(bio2rdf + "go:0000002")
	assert.True(t, contains(quads, term, rdf.RDFSSubClassOf, iri(bio2rdf+"go:0048308")))
	assert.False(t, contains(quads, term, rdf.RDFSSubClassOf, vocab("Entity")))

	// The next stanza starts from a clean slate
	assert.True(t, contains(quads, iri(bio2rdf+"go:0000003"), rdf.RDFSSubClassOf, vocab("Entity")))
}

func TestTranslate_TypedefDelimiterSkipsDefault(t *testing.T) {
	quads := translate(t, Options{}, "[Term]\nid: GO:1\nname: x\n[Typedef]\nid: part_of\n")
	assert.False(t, contains(quads, iri(bio2rdf+"go:1"), rdf.RDFSSubClassOf, vocab("Entity")))

	// a term still open at end of input is finalized with the default parent
	quads = translate(t, Options{}, "[Typedef]\nid: part_of\n[Term]\nid: GO:2\n")
	assert.True(t, contains(quads, iri(bio2rdf+"go:2"), rdf.RDFSSubClassOf, vocab("Entity")))
}

func TestTranslate_ObsoleteSuppressesDefault(t *testing.T) {
	quads := translate(t, Options{}, "[Term]\nid: GO:0000005\nis_obsolete: true\n")

	term := iri(bio2rdf + "go:0000005")
	assert.True(t, contains(quads, term, rdf.RDFType, rdf.OWLDeprecatedClass))
	assert.True(t, contains(quads, term, rdf.RDFSSubClassOf, rdf.OWLDeprecatedClass))
	assert.False(t, contains(quads, term, rdf.RDFSSubClassOf, vocab("Entity")))
}

func TestTranslate_Idempotent(t *testing.T) {
	input := `format-version: 1.2
ontology: go

[Term]
id: GO:0000002
name: mitochondrial genome maintenance
def: "The maintenance of the structure and integrity of the mitochondrial genome." [GOC:ai]
synonym: "mitochondrial DNA maintenance" EXACT []
intersection_of: GO:0008150
intersection_of: part_of GO:0005739
relationship: part_of GO:0005739 ! mitochondrion
xref: PMID:11529849

[Typedef]
id: part_of
name: part of
is_transitive: true
`
	tr := newTestTranslator(t, Options{})

	first := &recorder{}
	_, err := tr.Translate(strings.NewReader(input), first)
	require.NoError(t, err)

	tr.Reset()
	second := &recorder{}
	_, err = tr.Translate(strings.NewReader(input), second)
	require.NoError(t, err)

	assert.Equal(t, rdf.SerializeQuadsCanonical(first.all()), rdf.SerializeQuadsCanonical(second.all()))
	assert.NotEmpty(t, first.all())
}

func TestTranslate_SynonymPredicates(t *testing.T) {
	quads := translate(t, Options{}, `[Term]
id: CHEBI:23367
synonym: "molecular entity" EXACT IUPAC_NAME [IUPAC:]
synonym: "foo" RELATED [X:1]
`)

	term := iri(bio2rdf + "chebi:23367")
	assert.True(t, contains(quads, term, vocab("IUPAC_NAME"), rdf.NewLiteral("molecular entity")))
	assert.True(t, contains(quads, term, vocab("RELATED_SYNONYM"), rdf.NewLiteral("foo")))
}

func TestTranslate_SynonymExceptionList(t *testing.T) {
	input := "[Term]\nid: MONDO:0008484\nsynonym: \"odd one\" EXACT Related_Synonym []\n"

	quads := translate(t, Options{SynonymCustomLabelExceptions: []string{"mondo:0008484"}}, input)
	term := iri(bio2rdf + "mondo:0008484")
	assert.True(t, contains(quads, term, vocab("SYNONYM"), rdf.NewLiteral("odd one EXACT Related_Synonym")))

	quads = translate(t, Options{}, input)
	assert.True(t, contains(quads, term, vocab("Related_Synonym"), rdf.NewLiteral("odd one")))
}

func TestTranslate_Xrefs(t *testing.T) {
	quads := translate(t, Options{}, `[Term]
id: GO:0000002
xref: PMID:11529849 (marker)
xref: url:http://example.org
xref: Wikipedia:http\://en.wikipedia.org/wiki/Mitochondrion
`)

	term := iri(bio2rdf + "go:0000002")
	assert.True(t, contains(quads, term, vocab("x-pubmed"), iri(bio2rdf+"pubmed:11529849")))
	assert.True(t, contains(quads, term, rdf.RDFSSeeAlso, iri("http://en.wikipedia.org/wiki/Mitochondrion")))
	assert.False(t, contains(quads, term, rdf.RDFSSeeAlso, iri("http://example.org")))
	assert.Equal(t, 0, countPredicate(quads, vocab("x-url")))
}

func TestTranslate_RelationshipByDetail(t *testing.T) {
	input := "[Term]\nid: GO:0000002\nname: x\nrelationship: part_of CARO:0000000\n"
	term := iri(bio2rdf + "go:0000002")
	direct := func(quads []*rdf.Quad) bool {
		return contains(quads, term, vocab("part_of"), iri(bio2rdf+"caro:0000000"))
	}

	tests := []struct {
		detail       Detail
		wantFragment bool
	}{
		{DetailMin, false},
		{DetailMinPlus, true},
		{DetailMax, true},
	}

	for _, tt := range tests {
		t.Run(tt.detail.String(), func(t *testing.T) {
			quads := translate(t, Options{Detail: tt.detail}, input)

			assert.True(t, direct(quads), "direct triple missing")
			assert.Equal(t, tt.wantFragment, contains(quads, term, rdf.RDFSSubClassOf, rdf.NewBlankNode("go_b1")))
			assert.Equal(t, tt.wantFragment, countPredicate(quads, rdf.OWLOnProperty) == 1)
			if tt.wantFragment {
				head, list := rdf.NewBlankNode("go_b1"), rdf.NewBlankNode("go_b2")
				assert.True(t, contains(quads, head, rdf.RDFType, rdf.OWLClass))
				assert.True(t, contains(quads, head, rdf.OWLIntersectionOf, list))
				assert.True(t, contains(quads, list, rdf.OWLOnProperty, vocab("part_of")))
				assert.True(t, contains(quads, list, rdf.OWLSomeValuesFrom, iri(bio2rdf+"caro:0000000")))
			}
		})
	}
}

func TestTranslate_MinKeepsCoreOnly(t *testing.T) {
	quads := translate(t, Options{Detail: DetailMin}, `format-version: 1.2
[Term]
id: GO:0000002
name: x
def: "d" []
synonym: "s" EXACT []
xref: PMID:1
`)

	term := iri(bio2rdf + "go:0000002")
	assert.True(t, contains(quads, term, rdf.RDFSLabel, rdf.NewLiteralWithLanguage("x", "en")))
	assert.True(t, contains(quads, term, rdf.DCDescription, rdf.NewLiteral("d []")))
	assert.Equal(t, 0, countPredicate(quads, vocab("EXACT_SYNONYM")))
	assert.Equal(t, 0, countPredicate(quads, vocab("x-pubmed")))
	assert.Equal(t, 0, countPredicate(quads, vocab("format-version")))
	assert.Equal(t, 1, countPredicate(quads, rdf.RDFType), "only owl:Class typing expected")
}

func TestTranslate_FragmentClosedBeforeNextTag(t *testing.T) {
	rec := &recorder{}
	_, err := newTestTranslator(t, Options{}).Translate(strings.NewReader(`[Term]
id: GO:0000002
intersection_of: GO:0008150
intersection_of: part_of GO:0005739
is_a: GO:0048308
relationship: part_of GO:0005739
`), rec)
	require.NoError(t, err)

	term := iri(bio2rdf + "go:0000002")

	// The is_a line carries the closed intersection fragment ahead of its own statement
	var isALine []*rdf.Quad
	for _, l := range rec.lines {
		if contains(l, term, rdf.RDFSSubClassOf, iri(bio2rdf+"go:0048308")) {
			isALine = l
		}
	}
	require.NotEmpty(t, isALine)
	assert.True(t, isALine[0].Predicate.Equals(rdf.OWLEquivalentClass))
	assert.True(t, isALine[len(isALine)-1].Object.Equals(iri(bio2rdf+"go:0048308")))

	quads := rec.all()
	// One fragment per run: two heads, two lists
	assert.Equal(t, 1, countPredicate(quads, rdf.OWLEquivalentClass))
	assert.Equal(t, 2, countPredicate(quads, rdf.OWLIntersectionOf))
	assert.True(t, contains(quads, term, rdf.RDFSSubClassOf, rdf.NewBlankNode("go_b3")))

	// Direct triples
	assert.True(t, contains(quads, term, rdf.RDFSSubClassOf, iri(bio2rdf+"go:0008150")))
	assert.True(t, contains(quads, term, vocab("part_of"), iri(bio2rdf+"go:0005739")))
}

func TestTranslate_HeaderAndOntology(t *testing.T) {
	quads := translate(t, Options{}, "format-version: 1.2\nremark: see http\\://geneontology.org\n")

	ontology := iri(bio2rdf + "lsr:go")
	assert.True(t, contains(quads, ontology, rdf.RDFType, rdf.OWLOntology))
	assert.True(t, contains(quads, ontology, vocab("format-version"), rdf.NewLiteral("1.2")))
	assert.True(t, contains(quads, ontology, vocab("remark"), rdf.NewLiteral("see http://geneontology.org")))
}

func TestTranslate_Typedef(t *testing.T) {
	quads := translate(t, Options{}, `[Typedef]
id: part_of
name: part of
is_a: OVERLAPS
is_transitive: true
[Typedef]
id: RO:has(part)
is_obsolete: true
`)

	partOf := iri(bio2rdf + "obo:part_of")
	assert.True(t, contains(quads, partOf, rdf.RDFSLabel, rdf.NewLiteralWithLanguage("part of", "en")))
	assert.True(t, contains(quads, partOf, rdf.DCTitle, rdf.NewLiteral("part of")))
	assert.True(t, contains(quads, partOf, rdf.RDFSSubPropOf, vocab("overlaps")))
	assert.True(t, contains(quads, partOf, vocab("is_transitive"), rdf.NewLiteral("true")))
	assert.False(t, contains(quads, partOf, rdf.RDFSSubClassOf, vocab("Entity")))

	hasPart := iri(bio2rdf + "ro:has_part")
	assert.True(t, contains(quads, hasPart, rdf.RDFType, rdf.OWLDeprecatedClass))
}

func TestTranslate_TermTags(t *testing.T) {
	quads := translate(t, Options{}, `[Term]
id: GO:0000002
alt_id: GO:0000001
alt_id: curators
is_a: 0000009
property_value: IAO:0000589 "mito genome" xsd:string
property_value: seeAlso 42 xsd:integer
created_by: "jane\:doe"
[Instance]
id: ignored
name: ignored
`)

	term := iri(bio2rdf + "go:0000002")
	assert.True(t, contains(quads, iri(bio2rdf+"go:0000001"), rdf.RDFSSeeAlso, term))
	assert.Equal(t, 1, countPredicate(quads, rdf.RDFSSeeAlso))
	assert.True(t, contains(quads, term, rdf.RDFSSubClassOf, iri(bio2rdf+"unspecified:0000009")))
	assert.True(t, contains(quads, term, vocab("iao:0000589"), rdf.NewLiteral("mito genome")))
	assert.True(t, contains(quads, term, vocab("seealso"), rdf.NewIntegerLiteral(42)))
	assert.True(t, contains(quads, term, vocab("created_by"), rdf.NewLiteral("jane:doe")))
	assert.Equal(t, 0, countPredicate(quads, rdf.RDFSLabel), "[Instance] stanzas are not translated")
}

func TestTranslate_EmptySubject(t *testing.T) {
	input := "[Term]\nname: orphan\nid: GO:0000002\n"

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	rec := &recorder{}
	stats, err := newTestTranslator(t, Options{Metrics: metrics}).Translate(strings.NewReader(input), rec)
	require.NoError(t, err)

	assert.Equal(t, 0, countPredicate(rec.all(), rdf.RDFSLabel))
	assert.Equal(t, 4, stats.Dropped)
	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.emptySubject))

	quads := translate(t, Options{EmptySubject: EmitEmptySubject}, input)
	assert.True(t, contains(quads, iri(bio2rdf+":"), rdf.RDFSLabel, rdf.NewLiteralWithLanguage("orphan", "en")))
}

func TestTranslate_EmptySubjectRestriction(t *testing.T) {
	input := "[Term]\nrelationship: part_of CARO:0000000\nid: GO:1\nrelationship: part_of GO:2\n"

	rec := &recorder{}
	stats, err := newTestTranslator(t, Options{}).Translate(strings.NewReader(input), rec)
	require.NoError(t, err)

	// fragment header, two clauses and the direct triple
	assert.Equal(t, 6, stats.Dropped)
	assert.Equal(t, 1, countPredicate(rec.all(), rdf.OWLSomeValuesFrom), "only the fragment of GO:1 is written")
	assert.Equal(t, 1, countPredicate(rec.all(), rdf.OWLIntersectionOf))
	for _, q := range rec.all() {
		assert.False(t, q.Object.Equals(iri(bio2rdf+"caro:0000000")), "orphan statement written: %s", q)
	}

	// the orphan allocated no blank nodes
	term := iri(bio2rdf + "go:1")
	assert.True(t, contains(rec.all(), term, rdf.RDFSSubClassOf, rdf.NewBlankNode("go_b1")))
	assert.True(t, contains(rec.all(), term, vocab("part_of"), iri(bio2rdf+"go:2")))
}

func TestTranslate_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	rec := &recorder{}
	_, err := newTestTranslator(t, Options{Metrics: metrics, Detail: DetailMin}).Translate(strings.NewReader(
		"! comment\n[Term]\nid: GO:1\nname: x\ncreated_by: jane\n[Typedef]\nid: part_of\n"), rec)
	require.NoError(t, err)

	assert.Equal(t, float64(7), testutil.ToFloat64(metrics.lines))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.stanzas.WithLabelValues("term")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.stanzas.WithLabelValues("typedef")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.unrecognizedTags))
	// name: 4 core statements; [Typedef] closes the term without a default parent
	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.statements.WithLabelValues("core")))
	// ontology declaration and created_by
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.filtered.WithLabelValues("full")))
}

func TestTranslate_EmitErrorCarriesLine(t *testing.T) {
	boom := errors.New("disk full")
	calls := 0
	emitter := EmitterFunc(func([]*rdf.Quad) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	_, err := newTestTranslator(t, Options{}).Translate(strings.NewReader("[Term]\nid: GO:1\nname: x\n"), emitter)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "line 3")
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "do", DatasetName("DOID"))
	assert.Equal(t, "http://bio2rdf.org/lsr:do", OntologyIRI("doid"))
	assert.Equal(t, "http://bio2rdf.org/chebi_resource:bio2rdf.dataset.chebi.R4", GraphIRI("CHEBI", "4"))

	_, err := ParseEmptySubjectPolicy("explode")
	assert.Error(t, err)
}
