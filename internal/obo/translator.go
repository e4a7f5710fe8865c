// Package obo translates ontologies in the OBO flat-file format into RDF
// statements using Bio2RDF naming.
package obo

import (
	"bufio"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

const (
	unspecifiedNS   = "unspecified"
	typedefNS       = "obo"
	vocabularyNS    = "obo_vocabulary"
	ontologyNS      = "lsr"
	defaultParentID = "Entity"
)

// Resolver maps qualified names to IRIs
type Resolver interface {
	// ParseQName splits ns:id; ns is empty when qname has no namespace
	ParseQName(qname string) (string, string)
	// IRI expands ns:id
	IRI(ns, id string) string
}

// Emitter receives the statements produced by one source line
type Emitter interface {
	Emit(quads []*rdf.Quad) error
}

// EmitterFunc adapts a function to Emitter
type EmitterFunc func(quads []*rdf.Quad) error

func (f EmitterFunc) Emit(quads []*rdf.Quad) error { return f(quads) }

// EmptySubjectPolicy decides what happens to statements about a stanza
// whose id has not been seen yet.
type EmptySubjectPolicy int

const (
	// DropEmptySubject discards them and logs once per stanza
	DropEmptySubject EmptySubjectPolicy = iota
	// EmitEmptySubject keeps them with the resolver's IRI for the empty qname
	EmitEmptySubject
)

// ParseEmptySubjectPolicy parses drop or emit
func ParseEmptySubjectPolicy(s string) (EmptySubjectPolicy, error) {
	switch s {
	case "", "drop":
		return DropEmptySubject, nil
	case "emit":
		return EmitEmptySubject, nil
	default:
		return DropEmptySubject, errors.Errorf("unknown empty subject policy %q (want drop or emit)", s)
	}
}

// Options configure a Translator
type Options struct {
	// Abbreviation names the ontology, e.g. "go"
	Abbreviation string
	// Release is the Bio2RDF release number used in the dataset graph IRI.
	// Without it statements go to the default graph.
	Release string
	Detail  Detail

	EmptySubject EmptySubjectPolicy
	// SynonymCustomLabelExceptions lists term ids whose synonym type labels are ignored
	SynonymCustomLabelExceptions []string
	// BlankPrefix prefixes blank node labels; defaults to "<abbv>_b"
	BlankPrefix string

	Logger  log.Logger
	Metrics *Metrics
}

// DatasetName normalizes an ontology abbreviation
func DatasetName(abbv string) string {
	abbv = strings.ToLower(strings.TrimSpace(abbv))
	if abbv == "doid" {
		return "do"
	}
	return abbv
}

// OntologyIRI is the IRI of the ontology itself
func OntologyIRI(abbv string) string {
	return rdf.Bio2RDFNamespace + ontologyNS + ":" + DatasetName(abbv)
}

// GraphIRI is the IRI of the dataset graph for one release
func GraphIRI(abbv, release string) string {
	name := DatasetName(abbv)
	return rdf.Bio2RDFNamespace + name + "_resource:bio2rdf.dataset." + name + ".R" + release
}

// Translator converts one OBO document at a time. It is not safe for
// concurrent use; run one Translator per file.
type Translator struct {
	opts       Options
	resolver   Resolver
	blanks     *BlankNodeAllocator
	ontology   *rdf.NamedNode
	graph      rdf.Term
	exceptions map[string]bool
	logger     log.Logger
	metrics    *Metrics

	// Per-Translate state
	emitter Emitter
	lineNo  int
	stats   Stats
}

// Stats summarizes one translation
type Stats struct {
	Lines      int
	Stanzas    int
	Statements int
	Filtered   int
	Dropped    int
}

// NewTranslator creates a translator for the ontology named in opts
func NewTranslator(resolver Resolver, opts Options) *Translator {
	opts.Abbreviation = DatasetName(opts.Abbreviation)
	if opts.BlankPrefix == "" {
		opts.BlankPrefix = "b"
		if opts.Abbreviation != "" {
			opts.BlankPrefix = opts.Abbreviation + "_b"
		}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}

	var graph rdf.Term = rdf.NewDefaultGraph()
	if opts.Release != "" {
		graph = rdf.NewNamedNode(GraphIRI(opts.Abbreviation, opts.Release))
	}

	exceptions := make(map[string]bool, len(opts.SynonymCustomLabelExceptions))
	for _, id := range opts.SynonymCustomLabelExceptions {
		exceptions[strings.ToLower(id)] = true
	}

	return &Translator{
		opts:       opts,
		resolver:   resolver,
		blanks:     NewBlankNodeAllocator(opts.BlankPrefix),
		ontology:   rdf.NewNamedNode(OntologyIRI(opts.Abbreviation)),
		graph:      graph,
		exceptions: exceptions,
		logger:     log.With(opts.Logger, "ontology", opts.Abbreviation),
		metrics:    opts.Metrics,
	}
}

// Graph returns the graph every statement is written to
func (t *Translator) Graph() rdf.Term {
	return t.graph
}

// Reset restarts blank node numbering
func (t *Translator) Reset() {
	t.blanks.Reset()
}

// stanza is the context of the block being translated
type stanza struct {
	kind StanzaKind
	// id is the qname of the term or typedef, empty until its id tag
	id      string
	subject *rdf.NamedNode

	deprecated bool
	hasParent  bool
	fragment   *fragment

	warnedEmpty bool
}

// Translate reads an OBO document from r and hands the statements of every
// line to emitter. It fails only when reading or emitting fails.
func (t *Translator) Translate(r io.Reader, emitter Emitter) (Stats, error) {
	t.emitter = emitter
	t.lineNo = 0
	t.stats = Stats{}
	defer func() { t.emitter = nil }()

	st := &stanza{kind: StanzaHeader}

	b := t.newBatch()
	b.add(TierFull, t.ontology, rdf.RDFType, rdf.OWLOntology)
	if err := t.flush(st, b); err != nil {
		return t.stats, err
	}

	reader := bufio.NewReader(r)
	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return t.stats, errors.Wrapf(readErr, "read line %d", t.lineNo+1)
		}
		if len(raw) > 0 {
			t.lineNo++
			t.stats.Lines++
			t.metrics.lines.Inc()

			var err error
			st, err = t.translateLine(st, raw)
			if err != nil {
				return t.stats, err
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	b = t.newBatch()
	t.closeStanza(st, b, true)
	if err := t.flush(st, b); err != nil {
		return t.stats, err
	}

	level.Debug(t.logger).Log("msg", "translation finished", "lines", t.stats.Lines, "stanzas", t.stats.Stanzas,
		"statements", t.stats.Statements, "filtered", t.stats.Filtered, "dropped", t.stats.Dropped)
	return t.stats, nil
}

func (t *Translator) translateLine(st *stanza, raw string) (*stanza, error) {
	l := classifyLine(raw)
	b := t.newBatch()

	switch l.kind {
	case lineSkip:
		return st, nil

	case lineStanza:
		// a [Typedef] delimiter resets the open term without a default parent
		t.closeStanza(st, b, l.stanza != StanzaTypedef)
		if err := t.flush(st, b); err != nil {
			return st, err
		}
		t.stats.Stanzas++
		t.metrics.stanzas.WithLabelValues(l.stanza.String()).Inc()
		return &stanza{kind: l.stanza}, nil

	case lineTagValue:
		if st.fragment != nil {
			if kind, ok := fragmentKindOf(l.tv.tag); !ok || kind != st.fragment.kind {
				t.closeFragment(st, b)
			}
		}
		if l.tv.value != "" {
			t.dispatch(st, l.tv, b)
		}
	}

	return st, t.flush(st, b)
}

func (t *Translator) dispatch(st *stanza, tv tagValue, b *batch) {
	switch st.kind {
	case StanzaHeader:
		t.handleHeader(tv, b)
	case StanzaTerm:
		t.handleTerm(st, tv, b)
	case StanzaTypedef:
		t.handleTypedef(st, tv, b)
	}
}

// closeStanza closes the open fragment and finalizes the stanza. A term
// without is_a or is_obsolete gets the default parent when withParent is set.
func (t *Translator) closeStanza(st *stanza, b *batch, withParent bool) {
	t.closeFragment(st, b)

	if withParent && st.kind == StanzaTerm && st.id != "" && !st.hasParent && !st.deprecated {
		b.add(TierCore, st.subject, rdf.RDFSSubClassOf, t.vocab(defaultParentID))
	}
}

// flush filters b by detail level and hands it to the emitter
func (t *Translator) flush(st *stanza, b *batch) error {
	if b.dropped > 0 {
		t.stats.Dropped += b.dropped
		t.metrics.emptySubject.Add(float64(b.dropped))
		if !st.warnedEmpty {
			st.warnedEmpty = true
			level.Warn(t.logger).Log("msg", "dropping statements about a stanza without id", "line", t.lineNo,
				"stanza", st.kind)
		}
	}

	if len(b.statements) == 0 {
		return nil
	}

	quads := make([]*rdf.Quad, 0, len(b.statements))
	for _, s := range b.statements {
		if !t.opts.Detail.Allows(s.tier) {
			t.stats.Filtered++
			t.metrics.filtered.WithLabelValues(s.tier.String()).Inc()
			continue
		}
		quads = append(quads, s.quad)
		t.metrics.statements.WithLabelValues(s.tier.String()).Inc()
	}
	if len(quads) == 0 {
		return nil
	}

	t.stats.Statements += len(quads)
	if err := t.emitter.Emit(quads); err != nil {
		return errors.Wrapf(err, "emit statements for line %d", t.lineNo)
	}
	return nil
}

func (t *Translator) newBatch() *batch {
	return newBatch(t.graph)
}

// vocab returns obo_vocabulary:<local>
func (t *Translator) vocab(local string) *rdf.NamedNode {
	return rdf.NewNamedNode(t.resolver.IRI(vocabularyNS, local))
}

// qnameNode resolves qname, substituting defaultNS for a missing namespace
func (t *Translator) qnameNode(qname, defaultNS string) *rdf.NamedNode {
	ns, id := t.resolver.ParseQName(qname)
	if strings.TrimSpace(ns) == "" {
		ns = defaultNS
	}
	return rdf.NewNamedNode(t.resolver.IRI(ns, id))
}

// setID records the stanza id and its subject node
func (t *Translator) setID(st *stanza, ns, id string) {
	st.id = ns + ":" + id
	st.subject = rdf.NewNamedNode(t.resolver.IRI(ns, id))
}

// subject returns the node statements about st hang off. It is nil while
// the stanza has no id, unless the policy keeps such statements.
func (t *Translator) subject(st *stanza) *rdf.NamedNode {
	if st.subject != nil {
		return st.subject
	}
	if t.opts.EmptySubject == EmitEmptySubject {
		return rdf.NewNamedNode(t.resolver.IRI("", ""))
	}
	return nil
}
