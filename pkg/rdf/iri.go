package rdf

import (
	"fmt"
	"strings"
)

// SafeIRI percent-encodes characters that may not appear in an N-Triples IRIREF:
// control characters, space, and <>"{}|^`\
// Existing percent escapes are left untouched.
func SafeIRI(iri string) string {
	if !needsEscaping(iri) {
		return iri
	}

	var builder strings.Builder
	builder.Grow(len(iri) + 8)
	for i := 0; i < len(iri); i++ {
		c := iri[i]
		if isForbiddenIRIByte(c) {
			builder.WriteString(fmt.Sprintf("%%%02X", c))
			continue
		}
		builder.WriteByte(c)
	}
	return builder.String()
}

func needsEscaping(iri string) bool {
	for i := 0; i < len(iri); i++ {
		if isForbiddenIRIByte(iri[i]) {
			return true
		}
	}
	return false
}

func isForbiddenIRIByte(c byte) bool {
	if c <= 0x20 || c == 0x7F {
		return true
	}
	switch c {
	case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
		return true
	}
	return false
}
