package obo

import (
	"strings"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// FragmentKind is the tag that opened a restriction fragment
type FragmentKind int

const (
	FragmentIntersection FragmentKind = iota
	FragmentRelationship
)

func fragmentKindOf(tag Tag) (FragmentKind, bool) {
	switch tag {
	case TagIntersectionOf:
		return FragmentIntersection, true
	case TagRelationship:
		return FragmentRelationship, true
	default:
		return 0, false
	}
}

// fragment is an open run of intersection_of or relationship lines:
//
//	tid anchor _:head . _:head rdf:type owl:Class . _:head owl:intersectionOf _:list .
//
// followed by one or two clauses on _:list per line. A fragment opened
// before the stanza has a subject is orphaned: it allocates no blank nodes
// and every statement it would hold is counted as dropped.
type fragment struct {
	kind   FragmentKind
	head   *rdf.BlankNode
	list   *rdf.BlankNode
	buf    *batch
	orphan bool
}

// fragmentHeader is the number of statements opening a fragment
const fragmentHeader = 3

func (t *Translator) openFragment(st *stanza, kind FragmentKind) *fragment {
	f := &fragment{
		kind: kind,
		buf:  newBatch(t.graph),
	}
	if t.subject(st) == nil {
		f.orphan = true
		f.buf.dropped += fragmentHeader
		return f
	}
	f.head = t.blanks.Next()

	anchor := rdf.RDFSSubClassOf
	if kind == FragmentIntersection {
		anchor = rdf.OWLEquivalentClass
	}
	f.buf.add(TierFragment, t.subject(st), anchor, f.head)
	f.buf.add(TierFragment, f.head, rdf.RDFType, rdf.OWLClass)

	f.list = t.blanks.Next()
	f.buf.add(TierFragment, f.head, rdf.OWLIntersectionOf, f.list)
	return f
}

// handleRestriction adds one clause to the stanza's open fragment, opening it
// on the first line of a run, and emits the simplified direct triple.
// Values with other than one or two tokens produce nothing.
func (t *Translator) handleRestriction(st *stanza, kind FragmentKind, value string, b *batch) {
	if st.fragment == nil {
		st.fragment = t.openFragment(st, kind)
	}
	f := st.fragment

	tokens := strings.Fields(value)
	switch len(tokens) {
	case 1:
		class := t.qnameNode(tokens[0], unspecifiedNS)
		f.clause(rdf.RDFSSubClassOf, class)
		b.add(TierDirect, t.subject(st), rdf.RDFSSubClassOf, class)

	case 2:
		_, predID := t.resolver.ParseQName(tokens[0])
		predicate := t.vocab(predID)
		object := t.qnameNode(tokens[1], unspecifiedNS)

		f.clause(rdf.OWLOnProperty, predicate)
		f.clause(rdf.OWLSomeValuesFrom, object)
		b.add(TierDirect, t.subject(st), predicate, object)
	}
}

func (f *fragment) clause(predicate, object rdf.Term) {
	if f.orphan {
		f.buf.dropped++
		return
	}
	f.buf.add(TierFragment, f.list, predicate, object)
}

// closeFragment moves the open fragment into b. Whether it is written is
// decided by the detail filter at flush time.
func (t *Translator) closeFragment(st *stanza, b *batch) {
	if st.fragment == nil {
		return
	}
	b.merge(st.fragment.buf.statements)
	b.dropped += st.fragment.buf.dropped
	st.fragment = nil
}
