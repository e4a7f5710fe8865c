package obo

import (
	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

type statement struct {
	quad *rdf.Quad
	tier Tier
}

// batch collects the statements produced by one source line
type batch struct {
	graph      rdf.Term
	statements []statement
	// dropped counts statements discarded because a term was missing
	dropped int
}

func newBatch(graph rdf.Term) *batch {
	return &batch{graph: graph}
}

// add appends a statement. A nil subject or object stands for the empty
// term id and drops the statement.
func (b *batch) add(tier Tier, subject, predicate, object rdf.Term) {
	if isNil(subject) || isNil(object) {
		b.dropped++
		return
	}
	b.statements = append(b.statements, statement{
		quad: rdf.NewQuad(subject, predicate, object, b.graph),
		tier: tier,
	})
}

// merge appends statements built elsewhere, e.g. a closed fragment
func (b *batch) merge(statements []statement) {
	b.statements = append(b.statements, statements...)
}

func isNil(t rdf.Term) bool {
	if t == nil {
		return true
	}
	if n, ok := t.(*rdf.NamedNode); ok {
		return n == nil
	}
	return false
}
