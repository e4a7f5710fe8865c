package emit

import (
	"bufio"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// Format is a line-based RDF serialization
type Format string

const (
	// FormatNQuads keeps the dataset graph
	FormatNQuads Format = "nq"
	// FormatNTriples drops it
	FormatNTriples Format = "nt"
)

// ParseFormat parses nq or nt
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatNQuads:
		return FormatNQuads, nil
	case FormatNTriples:
		return FormatNTriples, nil
	default:
		return "", errors.Errorf("unknown output format %q (want nq or nt)", s)
	}
}

// Extension returns the file extension for the format, with .gz appended when compressed
func (f Format) Extension(compressed bool) string {
	ext := "." + string(f)
	if compressed {
		ext += ".gz"
	}
	return ext
}

// NQuadsWriter serializes statements one per line. Close flushes the buffers
// and the gzip stream but leaves the underlying writer open.
type NQuadsWriter struct {
	format Format
	gz     *gzip.Writer
	buf    *bufio.Writer
	line   strings.Builder

	written int64
}

func NewNQuadsWriter(w io.Writer, format Format, compress bool) *NQuadsWriter {
	nw := &NQuadsWriter{format: format}
	if compress {
		nw.gz = gzip.NewWriter(w)
		w = nw.gz
	}
	nw.buf = bufio.NewWriterSize(w, 64*1024)
	return nw
}

func (w *NQuadsWriter) Emit(quads []*rdf.Quad) error {
	w.line.Reset()
	for _, q := range quads {
		if w.format == FormatNTriples {
			rdf.WriteTripleCanonical(&w.line, q.Subject, q.Predicate, q.Object)
		} else {
			rdf.WriteQuadCanonical(&w.line, q)
		}
	}
	if _, err := w.buf.WriteString(w.line.String()); err != nil {
		return errors.Wrap(err, "write statements")
	}
	w.written += int64(len(quads))
	return nil
}

// Written returns the number of statements serialized so far
func (w *NQuadsWriter) Written() int64 {
	return w.written
}

func (w *NQuadsWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		return errors.Wrap(err, "flush output")
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return errors.Wrap(err, "close gzip stream")
		}
	}
	return nil
}
