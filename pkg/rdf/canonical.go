package rdf

import (
	"fmt"
	"strings"
)

// SerializeTriplesCanonical serializes triples to canonical N-Triples format (C14N)
// Note: Canonical form specifies representation, NOT ordering. Input order is preserved.
func SerializeTriplesCanonical(triples []*Triple) string {
	if len(triples) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, triple := range triples {
		WriteTripleCanonical(&builder, triple.Subject, triple.Predicate, triple.Object)
	}

	return builder.String()
}

// SerializeQuadsCanonical serializes quads to canonical N-Quads format (C14N)
// Note: Canonical form specifies representation, NOT ordering. Input order is preserved.
func SerializeQuadsCanonical(quads []*Quad) string {
	if len(quads) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, quad := range quads {
		WriteQuadCanonical(&builder, quad)
	}

	return builder.String()
}

// WriteTripleCanonical appends one N-Triples line to builder
func WriteTripleCanonical(builder *strings.Builder, subject, predicate, object Term) {
	builder.WriteString(serializeTermCanonical(subject))
	builder.WriteString(" ")
	builder.WriteString(serializeTermCanonical(predicate))
	builder.WriteString(" ")
	builder.WriteString(serializeTermCanonical(object))
	builder.WriteString(" .\n")
}

// WriteQuadCanonical appends one N-Quads line to builder. The default graph is omitted.
func WriteQuadCanonical(builder *strings.Builder, quad *Quad) {
	builder.WriteString(serializeTermCanonical(quad.Subject))
	builder.WriteString(" ")
	builder.WriteString(serializeTermCanonical(quad.Predicate))
	builder.WriteString(" ")
	builder.WriteString(serializeTermCanonical(quad.Object))

	// Add graph if not default graph
	if quad.Graph != nil {
		if _, isDefault := quad.Graph.(*DefaultGraph); !isDefault {
			builder.WriteString(" ")
			builder.WriteString(serializeTermCanonical(quad.Graph))
		}
	}

	builder.WriteString(" .\n")
}

// serializeTermCanonical serializes a single RDF term in canonical format
func serializeTermCanonical(term Term) string {
	switch t := term.(type) {
	case *NamedNode:
		return fmt.Sprintf("<%s>", escapeIRICanonical(t.IRI))
	case *BlankNode:
		return fmt.Sprintf("_:%s", t.ID)
	case *Literal:
		return serializeLiteralCanonical(t)
	default:
		return ""
	}
}

// serializeLiteralCanonical serializes a literal in canonical format
func serializeLiteralCanonical(lit *Literal) string {
	escaped := escapeStringCanonical(lit.Value)

	if lit.Language != "" {
		// Normalize language tag to lowercase
		return fmt.Sprintf(`"%s"@%s`, escaped, strings.ToLower(lit.Language))
	}

	// Datatype
	if lit.Datatype != nil {
		// Omit xsd:string datatype in canonical format (it's the default)
		if lit.Datatype.IRI != XSDString.IRI {
			return fmt.Sprintf(`"%s"^^<%s>`, escaped, escapeIRICanonical(lit.Datatype.IRI))
		}
	}

	// Plain literal (xsd:string is implicit)
	return fmt.Sprintf(`"%s"`, escaped)
}

// escapeStringCanonical escapes a string value for canonical N-Triples/N-Quads output
// - Special named escapes: \t \b \n \r \f \" \\
// - Unicode: \uXXXX for control characters and noncharacters
func escapeStringCanonical(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\t':
			builder.WriteString(`\t`)
		case '\b':
			builder.WriteString(`\b`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\f':
			builder.WriteString(`\f`)
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		default:
			if r < 0x20 || r == 0x7F || (r >= 0xFFFE && r <= 0xFFFF) {
				builder.WriteString(fmt.Sprintf(`\u%04X`, r))
			} else {
				builder.WriteRune(r)
			}
		}
	}

	return builder.String()
}

// escapeIRICanonical percent-encodes the characters N-Triples forbids inside an IRIREF.
// OBO sources routinely carry raw spaces and braces in xref URLs.
func escapeIRICanonical(iri string) string {
	return SafeIRI(iri)
}
