// Package emit holds the sinks a translation writes its statements to.
package emit

import (
	"io"
	"sync"

	"go.uber.org/multierr"

	"github.com/aleksaelezovic/obo2rdf/internal/obo"
	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// Sink is an emitter that must be closed to flush what it buffers
type Sink interface {
	obo.Emitter
	io.Closer
}

// Collector keeps every statement in memory. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	quads []*rdf.Quad
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Emit(quads []*rdf.Quad) error {
	c.mu.Lock()
	c.quads = append(c.quads, quads...)
	c.mu.Unlock()
	return nil
}

// Quads returns a copy of the collected statements in emission order
func (c *Collector) Quads() []*rdf.Quad {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*rdf.Quad, len(c.quads))
	copy(out, c.quads)
	return out
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.quads)
}

func (c *Collector) Reset() {
	c.mu.Lock()
	c.quads = nil
	c.mu.Unlock()
}

func (c *Collector) Close() error { return nil }

// Tee hands every batch to all of its emitters. A failing emitter does not
// stop the others; their errors are combined.
type Tee struct {
	emitters []obo.Emitter
}

func NewTee(emitters ...obo.Emitter) *Tee {
	return &Tee{emitters: emitters}
}

func (t *Tee) Emit(quads []*rdf.Quad) error {
	var err error
	for _, e := range t.emitters {
		err = multierr.Append(err, e.Emit(quads))
	}
	return err
}

// Close closes every emitter that is an io.Closer
func (t *Tee) Close() error {
	var err error
	for _, e := range t.emitters {
		if c, ok := e.(io.Closer); ok {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}
