package obo

import (
	"strconv"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// BlankNodeAllocator issues blank nodes labelled <prefix><ordinal>. Ordinals
// start at 1, strictly increase and are never reused until Reset.
type BlankNodeAllocator struct {
	prefix string
	last   uint64
}

// NewBlankNodeAllocator creates an allocator for one output graph
func NewBlankNodeAllocator(prefix string) *BlankNodeAllocator {
	return &BlankNodeAllocator{prefix: prefix}
}

// Next returns a fresh blank node
func (a *BlankNodeAllocator) Next() *rdf.BlankNode {
	a.last++
	return rdf.NewBlankNode(a.prefix + strconv.FormatUint(a.last, 10))
}

// Issued returns the number of blank nodes handed out since the last reset
func (a *BlankNodeAllocator) Issued() uint64 {
	return a.last
}

// Reset restarts numbering at 1
func (a *BlankNodeAllocator) Reset() {
	a.last = 0
}
