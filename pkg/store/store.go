package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// TripleStore keeps translated statements in four quad indexes
type TripleStore struct {
	storage Storage
	encoder TermEncoder
	decoder TermDecoder

	// Serializes writers: concurrent conversions share id2str entries for
	// common vocabulary IRIs and would otherwise conflict on commit.
	writeMu sync.Mutex
}

// NewTripleStore creates a new triplestore
func NewTripleStore(storage Storage, encoder TermEncoder, decoder TermDecoder) *TripleStore {
	return &TripleStore{
		storage: storage,
		encoder: encoder,
		decoder: decoder,
	}
}

// Close closes the triplestore
func (s *TripleStore) Close() error {
	return s.storage.Close()
}

// InsertQuad inserts a quad into the store
func (s *TripleStore) InsertQuad(quad *rdf.Quad) error {
	return s.InsertQuadsBatch([]*rdf.Quad{quad})
}

// InsertQuadsBatch inserts quads in a single transaction
func (s *TripleStore) InsertQuadsBatch(quads []*rdf.Quad) error {
	if len(quads) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	for _, quad := range quads {
		if err := s.insertQuadInTxn(txn, quad); err != nil {
			return err
		}
	}

	return txn.Commit()
}

type encodedQuad struct {
	s, p, o, g EncodedTerm
}

func (s *TripleStore) encodeQuad(quad *rdf.Quad, strings func(EncodedTerm, *string) error) (encodedQuad, error) {
	var eq encodedQuad
	graph := quad.Graph
	if graph == nil {
		graph = rdf.NewDefaultGraph()
	}

	positions := []struct {
		name string
		term rdf.Term
		dst  *EncodedTerm
	}{
		{"subject", quad.Subject, &eq.s},
		{"predicate", quad.Predicate, &eq.p},
		{"object", quad.Object, &eq.o},
		{"graph", graph, &eq.g},
	}
	for _, pos := range positions {
		enc, str, err := s.encoder.EncodeTerm(pos.term)
		if err != nil {
			return eq, fmt.Errorf("failed to encode %s: %w", pos.name, err)
		}
		if strings != nil {
			if err := strings(enc, str); err != nil {
				return eq, err
			}
		}
		*pos.dst = enc
	}
	return eq, nil
}

// insertQuadInTxn inserts a quad within an existing transaction
func (s *TripleStore) insertQuadInTxn(txn Transaction, quad *rdf.Quad) error {
	eq, err := s.encodeQuad(quad, func(enc EncodedTerm, str *string) error {
		return s.storeString(txn, enc, str)
	})
	if err != nil {
		return err
	}

	// Already present: keep the graph statement count accurate
	if _, err := txn.Get(TableSPOG, s.encoder.EncodeQuadKey(eq.s, eq.p, eq.o, eq.g)); err == nil {
		return nil
	} else if err != ErrNotFound {
		return err
	}

	// Empty value for all index entries
	emptyValue := []byte{}

	if err := txn.Set(TableSPOG, s.encoder.EncodeQuadKey(eq.s, eq.p, eq.o, eq.g), emptyValue); err != nil {
		return err
	}
	if err := txn.Set(TablePOSG, s.encoder.EncodeQuadKey(eq.p, eq.o, eq.s, eq.g), emptyValue); err != nil {
		return err
	}
	if err := txn.Set(TableOSPG, s.encoder.EncodeQuadKey(eq.o, eq.s, eq.p, eq.g), emptyValue); err != nil {
		return err
	}
	if err := txn.Set(TableGSPO, s.encoder.EncodeQuadKey(eq.g, eq.s, eq.p, eq.o), emptyValue); err != nil {
		return err
	}

	return s.adjustGraphCount(txn, eq.g, 1)
}

// storeString stores a string in the id2str table if provided
func (s *TripleStore) storeString(txn Transaction, encoded EncodedTerm, str *string) error {
	if str == nil {
		return nil
	}

	// Use the encoded term (which contains the hash) as the key
	key := encoded[1:]
	value := []byte(*str)

	// Check if already exists to avoid unnecessary writes
	existing, err := txn.Get(TableID2Str, key)
	if err == nil && bytes.Equal(existing, value) {
		return nil
	}
	if err != nil && err != ErrNotFound {
		return err
	}

	return txn.Set(TableID2Str, key, value)
}

func (s *TripleStore) adjustGraphCount(txn Transaction, graph EncodedTerm, delta int64) error {
	var count int64
	value, err := txn.Get(TableGraphs, graph[:])
	switch {
	case err == nil && len(value) == 8:
		count = int64(binary.BigEndian.Uint64(value))
	case err != nil && err != ErrNotFound:
		return err
	}

	count += delta
	if count <= 0 {
		return txn.Delete(TableGraphs, graph[:])
	}
	return txn.Set(TableGraphs, graph[:], encodeCount(count))
}

// DeleteQuadsBatch deletes quads in a single transaction
func (s *TripleStore) DeleteQuadsBatch(quads []*rdf.Quad) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	for _, quad := range quads {
		eq, err := s.encodeQuad(quad, nil)
		if err != nil {
			return err
		}
		if err := s.deleteEncodedInTxn(txn, eq); err != nil {
			return err
		}
	}

	return txn.Commit()
}

// deleteEncodedInTxn removes a quad from every index.
// The id2str table is not garbage collected: strings may be shared with other quads.
func (s *TripleStore) deleteEncodedInTxn(txn Transaction, eq encodedQuad) error {
	if _, err := txn.Get(TableSPOG, s.encoder.EncodeQuadKey(eq.s, eq.p, eq.o, eq.g)); err == ErrNotFound {
		return nil
	} else if err != nil {
		return err
	}

	if err := txn.Delete(TableSPOG, s.encoder.EncodeQuadKey(eq.s, eq.p, eq.o, eq.g)); err != nil {
		return err
	}
	if err := txn.Delete(TablePOSG, s.encoder.EncodeQuadKey(eq.p, eq.o, eq.s, eq.g)); err != nil {
		return err
	}
	if err := txn.Delete(TableOSPG, s.encoder.EncodeQuadKey(eq.o, eq.s, eq.p, eq.g)); err != nil {
		return err
	}
	if err := txn.Delete(TableGSPO, s.encoder.EncodeQuadKey(eq.g, eq.s, eq.p, eq.o)); err != nil {
		return err
	}

	return s.adjustGraphCount(txn, eq.g, -1)
}

// ClearGraph removes every quad of a graph, so that a re-converted ontology
// replaces its previous release instead of accumulating next to it.
func (s *TripleStore) ClearGraph(graph rdf.Term) (int64, error) {
	graphEnc, _, err := s.encoder.EncodeTerm(graph)
	if err != nil {
		return 0, fmt.Errorf("failed to encode graph: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Collect keys first: the iterator must be closed before the deletes
	readTxn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	it, err := readTxn.Scan(TableGSPO, graphEnc[:], nil)
	if err != nil {
		_ = readTxn.Rollback()
		return 0, err
	}
	var victims []encodedQuad
	for it.Next() {
		key := it.Key()
		if len(key) < 4*EncodedTermSize {
			continue
		}
		var eq encodedQuad
		copy(eq.g[:], key[0:EncodedTermSize])
		copy(eq.s[:], key[EncodedTermSize:2*EncodedTermSize])
		copy(eq.p[:], key[2*EncodedTermSize:3*EncodedTermSize])
		copy(eq.o[:], key[3*EncodedTermSize:4*EncodedTermSize])
		victims = append(victims, eq)
	}
	_ = it.Close()
	_ = readTxn.Rollback()

	txn, err := s.storage.Begin(true)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	for _, eq := range victims {
		if err := s.deleteEncodedInTxn(txn, eq); err != nil {
			return 0, err
		}
	}

	if err := txn.Commit(); err != nil {
		return 0, err
	}
	return int64(len(victims)), nil
}

// ContainsQuad checks if a quad exists in the store
func (s *TripleStore) ContainsQuad(quad *rdf.Quad) (bool, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	eq, err := s.encodeQuad(quad, nil)
	if err != nil {
		return false, err
	}

	_, err = txn.Get(TableSPOG, s.encoder.EncodeQuadKey(eq.s, eq.p, eq.o, eq.g))
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Count returns the number of quads in the store
func (s *TripleStore) Count() (int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	// Count entries in SPOG index (primary index for quads)
	it, err := txn.Scan(TableSPOG, nil, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := int64(0)
	for it.Next() {
		count++
	}

	return count, nil
}

// GraphCounts returns the number of quads held by each graph, keyed by graph IRI.
// The default graph is reported under the empty key.
func (s *TripleStore) GraphCounts() (map[string]int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(TableGraphs, nil, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	counts := make(map[string]int64)
	for it.Next() {
		var graphEnc EncodedTerm
		copy(graphEnc[:], it.Key())

		graph, err := s.decodeTerm(txn, graphEnc)
		if err != nil {
			return nil, err
		}
		value, err := it.Value()
		if err != nil {
			return nil, err
		}
		key := ""
		if named, ok := graph.(*rdf.NamedNode); ok {
			key = named.IRI
		}
		if len(value) == 8 {
			counts[key] = int64(binary.BigEndian.Uint64(value))
		}
	}

	return counts, nil
}

func encodeCount(count int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(count)) // #nosec G115 - count is positive here
	return buf
}
