package obo

import (
	"strings"

	"github.com/grafana/regexp"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// provenance matches `{source="..."}` qualifier blocks
var provenance = regexp.MustCompile(`\{.*\}`)

// idValidationNS carries a regular expression rather than an identifier
const idValidationNS = "id-validation-regexp"

var skippedXrefNamespaces = map[string]bool{
	"xx":                  true,
	"url":                 true,
	"search-url":          true,
	"xref; umls_cui":      true,
	"xref;umls_cui":       true,
	"id-validation-regex": true,
	"regexp":              true,
}

var xrefIDEscaper = strings.NewReplacer(
	" ", "%20",
	",", "%2C",
	"#", "%23",
	"<", "%3C",
	">", "%3E",
)

// Xref is a normalized cross-reference
type Xref struct {
	Namespace string
	ID        string
	// URL is set for xrefs that point at a web page
	URL     string
	IsURL   bool
	Comment string
	// Literal marks ids that are emitted as strings instead of IRIs
	Literal bool
	Skip    bool
}

// ParseXref normalizes an xref value. Skip is set when no statement should
// be emitted.
func ParseXref(value string) Xref {
	value = strings.TrimSpace(value)

	if strings.HasPrefix(value, "http") {
		url := strings.TrimSpace(provenance.ReplaceAllString(value, ""))
		url = strings.NewReplacer(" ", "+", `"wiki"`, "", `\`, "").Replace(url)
		return Xref{URL: rdf.SafeIRI(url), IsURL: true, Skip: url == ""}
	}

	rawNS, id, ok := strings.Cut(value, ":")
	if !ok {
		return Xref{Skip: true}
	}

	ns := strings.ToLower(rawNS)
	if skippedXrefNamespaces[ns] {
		return Xref{Namespace: ns, Skip: true}
	}
	ns = strings.NewReplacer(" ", "", `\`, "").Replace(ns)
	if skippedXrefNamespaces[ns] {
		return Xref{Namespace: ns, Skip: true}
	}

	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "http") {
		url := provenance.ReplaceAllString(id, "")
		url = strings.NewReplacer(`http\:`, "http:", `https\:`, "https:").Replace(url)
		url = strings.TrimSpace(url)
		return Xref{URL: rdf.SafeIRI(url), IsURL: true, Skip: url == ""}
	}

	x := Xref{Namespace: ns}

	// Trailing `"comment"`
	if pos := strings.LastIndex(id, ` "`); pos >= 0 {
		x.Comment = strings.TrimSuffix(id[pos+2:], `"`)
		id = id[:pos]
	}
	id = stripSlashes(id)
	id = strings.TrimSpace(provenance.ReplaceAllString(id, ""))

	switch ns {
	case "pmid":
		x.Namespace = "pubmed"
		id = firstToken(id)
	case "icd9cm":
		id = firstToken(id)
	case "submitter":
		x.Namespace = "chebi.submitter"
	case "wikipedia", "mesh":
		id = strings.ReplaceAll(id, " ", "+")
	case idValidationNS:
		x.ID = id
		x.Literal = true
		x.Skip = id == ""
		return x
	}

	x.ID = xrefIDEscaper.Replace(id)
	x.Skip = x.Namespace == "" || x.ID == ""
	return x
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// stripSlashes removes backslash escapes; `\\` becomes `\`
func stripSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			if i >= len(s) {
				break
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
