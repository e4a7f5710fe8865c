package encoding

import (
	"testing"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	encoder := NewTermEncoder()
	decoder := NewTermDecoder()

	tests := []struct {
		name string
		term rdf.Term
	}{
		{"named node", rdf.NewNamedNode("http://bio2rdf.org/go:0000002")},
		{"blank node", rdf.NewBlankNode("go_b12")},
		{"numeric blank node", rdf.NewBlankNode("42")},
		{"short literal", rdf.NewLiteral("nucleus")},
		{"long literal", rdf.NewLiteral("mitochondrial inner membrane protein complex")},
		{"language literal", rdf.NewLiteralWithLanguage("nucleus", "en")},
		{"typed literal", rdf.NewIntegerLiteral(1234)},
		{"default graph", rdf.NewDefaultGraph()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, str, err := encoder.EncodeTerm(tt.term)
			if err != nil {
				t.Fatalf("unexpected encode error: %v", err)
			}

			decoded, err := decoder.DecodeTerm(encoded, str)
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !decoded.Equals(tt.term) {
				t.Errorf("expected %s, got %s", tt.term, decoded)
			}
		})
	}
}

func TestEncodeTerm_XSDStringIsPlain(t *testing.T) {
	encoder := NewTermEncoder()

	plain, _, err := encoder.EncodeTerm(rdf.NewLiteral("GO:0000002"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	typed, _, err := encoder.EncodeTerm(rdf.NewLiteralWithDatatype("GO:0000002", rdf.XSDString))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plain != typed {
		t.Error("expected xsd:string literal to encode like a plain literal")
	}
}

func TestNeedsStringLookup(t *testing.T) {
	encoder := NewTermEncoder()

	graph, _, _ := encoder.EncodeTerm(rdf.NewDefaultGraph())
	if NeedsStringLookup(graph) {
		t.Error("default graph should not need a string lookup")
	}

	iri, _, _ := encoder.EncodeTerm(rdf.NewNamedNode("http://bio2rdf.org/go:1"))
	if !NeedsStringLookup(iri) {
		t.Error("named node should need a string lookup")
	}
}
