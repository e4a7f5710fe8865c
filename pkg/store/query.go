package store

import (
	"fmt"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// Pattern represents a quad pattern. A nil position or a Variable matches anything.
type Pattern struct {
	Subject   any // rdf.Term or Variable
	Predicate any // rdf.Term or Variable
	Object    any // rdf.Term or Variable
	Graph     any // rdf.Term or Variable
}

// Variable represents a named wildcard
type Variable struct {
	Name string
}

// NewVariable creates a new variable
func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v *Variable) String() string {
	return "?" + v.Name
}

// QuadIterator iterates over quads matching a pattern
type QuadIterator interface {
	Next() bool
	Quad() (*rdf.Quad, error)
	Close() error
}

// Query executes a pattern match and returns matching quads
func (s *TripleStore) Query(pattern *Pattern) (QuadIterator, error) {
	bound, err := s.encodePattern(pattern)
	if err != nil {
		return nil, err
	}

	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}

	// Select the best index based on bound positions
	table, keyPattern := selectIndex(bound)

	// Build the prefix for scanning
	var prefix []byte
	for _, idx := range keyPattern {
		if bound[idx] == nil {
			// Stop at first unbound position
			break
		}
		prefix = append(prefix, bound[idx][:]...)
	}

	it, err := txn.Scan(table, prefix, nil)
	if err != nil {
		_ = txn.Rollback() // #nosec G104 - rollback error less important than original error
		return nil, err
	}

	return &quadIterator{
		store:      s,
		txn:        txn,
		it:         it,
		bound:      bound,
		keyPattern: keyPattern,
	}, nil
}

// encodePattern encodes the bound positions in S, P, O, G order
func (s *TripleStore) encodePattern(pattern *Pattern) ([4]*EncodedTerm, error) {
	var bound [4]*EncodedTerm
	for i, pos := range []any{pattern.Subject, pattern.Predicate, pattern.Object, pattern.Graph} {
		term, ok := pos.(rdf.Term)
		if !ok || term == nil {
			continue
		}
		encoded, _, err := s.encoder.EncodeTerm(term)
		if err != nil {
			return bound, err
		}
		bound[i] = &encoded
	}
	return bound, nil
}

// selectIndex chooses the index whose leading key is bound.
// KeyPattern maps: key_position -> SPOG_position (S=0, P=1, O=2, G=3)
func selectIndex(bound [4]*EncodedTerm) (Table, []int) {
	switch {
	case bound[0] != nil:
		return TableSPOG, []int{0, 1, 2, 3}
	case bound[1] != nil:
		return TablePOSG, []int{1, 2, 0, 3}
	case bound[2] != nil:
		return TableOSPG, []int{2, 0, 1, 3}
	case bound[3] != nil:
		return TableGSPO, []int{3, 0, 1, 2}
	default:
		return TableSPOG, []int{0, 1, 2, 3}
	}
}

// quadIterator implements QuadIterator
type quadIterator struct {
	store      *TripleStore
	txn        Transaction
	it         Iterator
	bound      [4]*EncodedTerm
	keyPattern []int
	current    [4]EncodedTerm
	closed     bool
}

// Next advances to the next key that matches every bound position,
// including those that did not fit in the scan prefix.
func (qi *quadIterator) Next() bool {
	if qi.closed {
		return false
	}
	for qi.it.Next() {
		key := qi.it.Key()
		if len(key) < len(qi.keyPattern)*EncodedTermSize {
			continue
		}

		// Map back to S, P, O, G positions
		for i, idx := range qi.keyPattern {
			offset := i * EncodedTermSize
			copy(qi.current[idx][:], key[offset:offset+EncodedTermSize])
		}

		if qi.matches() {
			return true
		}
	}
	return false
}

func (qi *quadIterator) matches() bool {
	for i, want := range qi.bound {
		if want != nil && *want != qi.current[i] {
			return false
		}
	}
	return true
}

func (qi *quadIterator) Quad() (*rdf.Quad, error) {
	if qi.closed {
		return nil, fmt.Errorf("iterator closed")
	}

	names := [4]string{"subject", "predicate", "object", "graph"}
	var terms [4]rdf.Term
	for i := range qi.current {
		term, err := qi.store.decodeTerm(qi.txn, qi.current[i])
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", names[i], err)
		}
		terms[i] = term
	}

	return rdf.NewQuad(terms[0], terms[1], terms[2], terms[3]), nil
}

func (qi *quadIterator) Close() error {
	if qi.closed {
		return nil
	}
	qi.closed = true
	_ = qi.it.Close() // #nosec G104 - iterator close error less critical than transaction rollback error
	return qi.txn.Rollback()
}

// decodeTerm decodes an encoded term back to an rdf.Term
func (s *TripleStore) decodeTerm(txn Transaction, encoded EncodedTerm) (rdf.Term, error) {
	termType := rdf.TermType(encoded[0])

	// For terms that need string lookup
	var stringValue *string
	if termType == rdf.TermTypeNamedNode || termType == rdf.TermTypeBlankNode ||
		termType == rdf.TermTypeStringLiteral || termType == rdf.TermTypeLangStringLiteral ||
		termType == rdf.TermTypeTypedLiteral {

		str, err := txn.Get(TableID2Str, encoded[1:])
		if err == nil {
			strVal := string(str)
			stringValue = &strVal
		} else if err != ErrNotFound {
			return nil, err
		}
	}

	return s.decoder.DecodeTerm(encoded, stringValue)
}
