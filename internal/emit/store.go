package emit

import (
	"github.com/pkg/errors"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
	"github.com/aleksaelezovic/obo2rdf/pkg/store"
)

// DefaultStoreBatchSize is the number of statements per store transaction
const DefaultStoreBatchSize = 1000

// StoreEmitter buffers statements and inserts them into a quad store in
// batches. The store may be shared by several emitters; each emitter is used
// by one translation at a time.
type StoreEmitter struct {
	store     *store.TripleStore
	batchSize int
	pending   []*rdf.Quad
	inserted  int64
}

func NewStoreEmitter(s *store.TripleStore, batchSize int) *StoreEmitter {
	if batchSize <= 0 {
		batchSize = DefaultStoreBatchSize
	}
	return &StoreEmitter{
		store:     s,
		batchSize: batchSize,
		pending:   make([]*rdf.Quad, 0, batchSize),
	}
}

// ReplaceGraph removes what an earlier run stored in graph so that a
// reconverted ontology does not accumulate stale statements.
func (e *StoreEmitter) ReplaceGraph(graph rdf.Term) (int64, error) {
	removed, err := e.store.ClearGraph(graph)
	if err != nil {
		return 0, errors.Wrapf(err, "clear graph %s", graph)
	}
	return removed, nil
}

func (e *StoreEmitter) Emit(quads []*rdf.Quad) error {
	e.pending = append(e.pending, quads...)
	if len(e.pending) < e.batchSize {
		return nil
	}
	return e.flush()
}

func (e *StoreEmitter) flush() error {
	if len(e.pending) == 0 {
		return nil
	}
	if err := e.store.InsertQuadsBatch(e.pending); err != nil {
		return errors.Wrapf(err, "insert %d statements", len(e.pending))
	}
	e.inserted += int64(len(e.pending))
	e.pending = e.pending[:0]
	return nil
}

// Inserted returns the number of statements handed to the store. Statements
// already present are counted but not stored twice.
func (e *StoreEmitter) Inserted() int64 {
	return e.inserted
}

// Close flushes the last batch. The store stays open.
func (e *StoreEmitter) Close() error {
	return e.flush()
}
