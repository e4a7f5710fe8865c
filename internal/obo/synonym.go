package obo

import (
	"strings"
)

// SynonymScope is the OBO synonym scope
type SynonymScope int

const (
	ScopeUnspecified SynonymScope = iota
	ScopeExact
	ScopeBroad
	ScopeRelated
	ScopeNarrow
	// ScopeCustom marks a synonym type label following the scope keyword
	ScopeCustom
)

// scopeKeywords in priority order
var scopeKeywords = []struct {
	keyword string
	scope   SynonymScope
}{
	{"EXACT", ScopeExact},
	{"BROAD", ScopeBroad},
	{"RELATED", ScopeRelated},
	{"NARROW", ScopeNarrow},
}

func (s SynonymScope) String() string {
	for _, k := range scopeKeywords {
		if k.scope == s {
			return k.keyword
		}
	}
	if s == ScopeCustom {
		return "CUSTOM"
	}
	return "UNSPECIFIED"
}

// Synonym is a parsed synonym value
type Synonym struct {
	Text  string
	Scope SynonymScope
	Label string
}

// Predicate returns the obo_vocabulary local name for the synonym
func (s Synonym) Predicate() string {
	switch s.Scope {
	case ScopeCustom:
		return s.Label
	case ScopeUnspecified:
		return "SYNONYM"
	default:
		return s.Scope.String() + "_SYNONYM"
	}
}

// ParseSynonym parses `"text" SCOPE [label] [xrefs]`. Scope keywords are only
// searched for between the quoted text and the xref list; the rightmost
// occurrence of the first keyword found in priority order wins. With
// ignoreLabels set, a keyword followed by a custom label is passed over and
// the search continues. Without a usable keyword the text runs up to the
// last bracket.
func ParseSynonym(value string, ignoreLabels bool) Synonym {
	text, searchFrom := synonymText(value)

	// The xref list never carries the scope
	searchTo := len(text)
	if bracket := strings.LastIndex(text, "["); bracket >= searchFrom {
		searchTo = bracket
	}
	region := text[searchFrom:searchTo]

	for _, k := range scopeKeywords {
		pos := strings.LastIndex(region, k.keyword)
		if pos < 0 {
			continue
		}
		pos += searchFrom
		end := pos + len(k.keyword)

		bracket := strings.LastIndex(text, "[")
		if bracket < end {
			bracket = len(text)
		}

		syn := Synonym{
			Text:  strings.TrimSpace(text[:pos]),
			Scope: k.scope,
		}
		if label := strings.TrimSpace(text[end:bracket]); label != "" {
			if ignoreLabels {
				continue
			}
			syn.Scope = ScopeCustom
			syn.Label = label
		}
		return syn
	}

	cut := len(text)
	if bracket := strings.LastIndex(text, "["); bracket >= 0 {
		cut = bracket
	}
	return Synonym{Text: strings.TrimSpace(text[:cut]), Scope: ScopeUnspecified}
}

// synonymText returns the cleaned synonym text and the offset where the
// unquoted suffix begins. The quoted group spans from the first to the last
// double quote.
func synonymText(value string) (string, int) {
	first := strings.IndexByte(value, '"')
	last := strings.LastIndexByte(value, '"')
	if first < 0 || first == last {
		return strings.ReplaceAll(value, `"`, ""), 0
	}

	quoted := cleanSynonym(value[first+1 : last])
	suffix := cleanSynonym(value[last+1:])
	return quoted + suffix, len(quoted)
}

func cleanSynonym(s string) string {
	return strings.NewReplacer(`\`, "", `"`, "").Replace(s)
}
