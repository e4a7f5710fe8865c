package encoding

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
	"github.com/aleksaelezovic/obo2rdf/pkg/store"
	"github.com/zeebo/xxh3"
)

const (
	// Maximum size for inline strings (16 bytes of UTF-8)
	MaxInlineStringSize = 16

	// Encoded term size (type byte + 16 bytes for 128-bit hash or inline data)
	EncodedTermSize = store.EncodedTermSize

	// typedLiteralSeparator joins a typed literal's value and datatype IRI in id2str
	typedLiteralSeparator = "^^"
)

// EncodedTerm represents a term encoded as a type byte followed by up to 16 bytes of data
type EncodedTerm = store.EncodedTerm

// TermEncoder handles encoding of RDF terms
type TermEncoder struct {
	// Hash function for strings (xxhash3 128-bit)
}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *TermEncoder) Hash128(s string) [16]byte {
	hash := xxh3.Hash128([]byte(s))
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm encodes an RDF term into a fixed-size byte array
// Returns the encoded term and optionally a string to store in id2str table
func (e *TermEncoder) EncodeTerm(term rdf.Term) (EncodedTerm, *string, error) {
	var encoded EncodedTerm

	switch t := term.(type) {
	case *rdf.NamedNode:
		return e.encodeHashed(rdf.TermTypeNamedNode, t.IRI)
	case *rdf.BlankNode:
		return e.encodeBlankNode(t)
	case *rdf.Literal:
		return e.encodeLiteral(t)
	case *rdf.DefaultGraph:
		encoded[0] = byte(rdf.TermTypeDefaultGraph)
		return encoded, nil, nil
	default:
		return encoded, nil, fmt.Errorf("unknown term type: %T", term)
	}
}

// encodeHashed stores the 128-bit hash of value and hands value back for the id2str table
func (e *TermEncoder) encodeHashed(termType rdf.TermType, value string) (EncodedTerm, *string, error) {
	var encoded EncodedTerm
	encoded[0] = byte(termType)

	hash := e.Hash128(value)
	copy(encoded[1:], hash[:])

	return encoded, &value, nil
}

func (e *TermEncoder) encodeBlankNode(node *rdf.BlankNode) (EncodedTerm, *string, error) {
	// Numeric IDs are stored inline (big endian)
	if num, err := strconv.ParseUint(node.ID, 10, 64); err == nil {
		var encoded EncodedTerm
		encoded[0] = byte(rdf.TermTypeBlankNode)
		binary.BigEndian.PutUint64(encoded[1:9], num)
		return encoded, nil, nil
	}

	return e.encodeHashed(rdf.TermTypeBlankNode, node.ID)
}

func (e *TermEncoder) encodeLiteral(lit *rdf.Literal) (EncodedTerm, *string, error) {
	if lit.Language != "" {
		return e.encodeHashed(rdf.TermTypeLangStringLiteral, lit.Value+"@"+lit.Language)
	}

	if lit.Datatype != nil && lit.Datatype.IRI != rdf.XSDString.IRI {
		return e.encodeHashed(rdf.TermTypeTypedLiteral, lit.Value+typedLiteralSeparator+lit.Datatype.IRI)
	}

	var encoded EncodedTerm
	encoded[0] = byte(rdf.TermTypeStringLiteral)

	if len(lit.Value) <= MaxInlineStringSize {
		// Inline small strings; remaining bytes stay zero
		copy(encoded[1:], lit.Value)
		return encoded, nil, nil
	}

	hash := e.Hash128(lit.Value)
	copy(encoded[1:], hash[:])

	return encoded, &lit.Value, nil
}

// EncodeQuadKey concatenates encoded terms into an index key
// Returns a big-endian byte array for lexicographic sorting
func (e *TermEncoder) EncodeQuadKey(terms ...EncodedTerm) []byte {
	result := make([]byte, 0, len(terms)*EncodedTermSize)
	for _, term := range terms {
		result = append(result, term[:]...)
	}
	return result
}

// GetTermType extracts the type from an encoded term
func GetTermType(encoded EncodedTerm) rdf.TermType {
	return rdf.TermType(encoded[0])
}

// NeedsStringLookup reports whether decoding the term requires the id2str table
func NeedsStringLookup(encoded EncodedTerm) bool {
	switch GetTermType(encoded) {
	case rdf.TermTypeNamedNode, rdf.TermTypeBlankNode, rdf.TermTypeStringLiteral,
		rdf.TermTypeLangStringLiteral, rdf.TermTypeTypedLiteral:
		return true
	}
	return false
}
