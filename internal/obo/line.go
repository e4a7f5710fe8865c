package obo

import (
	"strings"
)

type lineKind int

const (
	lineSkip lineKind = iota
	lineStanza
	lineTagValue
)

// line is a classified input line
type line struct {
	kind   lineKind
	stanza StanzaKind
	tv     tagValue
}

// classifyLine trims raw and decides what it is. Blank lines and `!` comments
// are skipped; any bracketed line is a stanza delimiter.
func classifyLine(raw string) line {
	s := strings.TrimSpace(raw)
	if s == "" || s[0] == '!' {
		return line{kind: lineSkip}
	}

	if s[0] == '[' && s[len(s)-1] == ']' {
		kind := StanzaOther
		switch s {
		case "[Term]":
			kind = StanzaTerm
		case "[Typedef]":
			kind = StanzaTypedef
		}
		return line{kind: lineStanza, stanza: kind}
	}

	// OBO generator defect: `synonym "..."` without the colon
	if strings.HasPrefix(s, "synonym ") {
		s = "synonym: " + s[len("synonym "):]
	}

	s = stripDecorations(s)

	tag, value, ok := strings.Cut(s, ": ")
	if !ok {
		tag = strings.TrimSuffix(s, ":")
		value = ""
	}
	tag = strings.TrimSpace(tag)

	return line{
		kind: lineTagValue,
		tv: tagValue{
			tag:   ParseTag(tag),
			raw:   tag,
			value: strings.TrimSpace(value),
		},
	}
}

// stripDecorations removes a trailing ` !comment` that is outside double
// quotes, then a trailing `{...}` qualifier block preceded by whitespace.
func stripDecorations(s string) string {
	if i := commentStart(s); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, " \t")

	if strings.HasSuffix(s, "}") {
		if i := qualifierStart(s); i > 0 {
			s = strings.TrimRight(s[:i], " \t")
		}
	}
	return s
}

// commentStart returns the index of the first unquoted " !", or -1
func commentStart(s string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			inQuote = !inQuote
		case ' ', '\t':
			if !inQuote && i+1 < len(s) && s[i+1] == '!' {
				return i
			}
		}
	}
	return -1
}

// qualifierStart returns the index of the `{` opening the block that ends s,
// or -1 when that brace is escaped, quoted, or glued to the preceding token.
func qualifierStart(s string) int {
	inQuote := false
	open := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			inQuote = !inQuote
		case '{':
			if !inQuote && open < 0 {
				open = i
			}
		case '}':
			if !inQuote && i != len(s)-1 {
				open = -1
			}
		}
	}
	if open <= 0 || (s[open-1] != ' ' && s[open-1] != '\t') {
		return -1
	}
	return open
}
