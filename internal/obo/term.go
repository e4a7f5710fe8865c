package obo

import (
	"strings"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

const labelLanguage = "en"

func (t *Translator) handleTerm(st *stanza, tv tagValue, b *batch) {
	tid := t.subject(st)
	value := tv.value

	switch tv.tag {
	case TagID:
		ns, id := t.resolver.ParseQName(value)
		if strings.TrimSpace(ns) == "" {
			ns = unspecifiedNS
		}
		t.setID(st, ns, id)

	case TagName:
		label := strings.ReplaceAll(stripSlashes(value), `"`, "")
		b.add(TierCore, tid, rdf.RDFType, rdf.OWLClass)
		b.add(TierCore, tid, rdf.RDFSLabel, rdf.NewLiteralWithLanguage(label, labelLanguage))
		b.add(TierCore, tid, rdf.DCTitle, rdf.NewLiteralWithLanguage(label, labelLanguage))
		b.add(TierCore, tid, rdf.RDFSIsDefinedBy, t.ontology)

	case TagDef:
		def := strings.NewReplacer(`"`, "", `\`, "").Replace(value)
		b.add(TierCore, tid, rdf.DCDescription, rdf.NewLiteral(def))

	case TagIsObsolete:
		if value != "true" {
			t.catchAll(tid, tv, b)
			return
		}
		b.add(TierCore, tid, rdf.RDFType, rdf.OWLDeprecatedClass)
		b.add(TierCore, tid, rdf.RDFSSubClassOf, rdf.OWLDeprecatedClass)
		st.deprecated = true

	case TagIsA:
		parent := t.qnameNode(provenance.ReplaceAllString(value, ""), unspecifiedNS)
		b.add(TierCore, tid, rdf.RDFSSubClassOf, parent)
		st.hasParent = true

	case TagAltID:
		ns, id := t.resolver.ParseQName(value)
		if id == "curators" {
			return
		}
		if strings.TrimSpace(ns) == "" {
			ns = unspecifiedNS
		}
		b.add(TierFull, rdf.NewNamedNode(t.resolver.IRI(ns, id)), rdf.RDFSSeeAlso, tid)

	case TagXref:
		t.handleXref(tid, value, b)

	case TagSynonym:
		syn := ParseSynonym(value, t.exceptions[strings.ToLower(st.id)])
		if syn.Text != "" {
			b.add(TierFull, tid, t.vocab(syn.Predicate()), rdf.NewLiteral(syn.Text))
		}

	case TagPropertyValue:
		t.handlePropertyValue(tid, value, b)

	case TagIntersectionOf, TagRelationship:
		kind, _ := fragmentKindOf(tv.tag)
		t.handleRestriction(st, kind, value, b)

	case TagUnrecognized:
		t.metrics.unrecognizedTags.Inc()
		t.catchAll(tid, tv, b)
	}
}

// catchAll writes tid obo_vocabulary:<tag> "value"
func (t *Translator) catchAll(tid *rdf.NamedNode, tv tagValue, b *batch) {
	value := strings.ReplaceAll(stripSlashes(tv.value), `"`, "")
	b.add(TierFull, tid, t.vocab(tv.raw), rdf.NewLiteral(value))
}

func (t *Translator) handleXref(tid *rdf.NamedNode, value string, b *batch) {
	x := ParseXref(value)
	switch {
	case x.Skip:
	case x.IsURL:
		b.add(TierFull, tid, rdf.RDFSSeeAlso, rdf.NewNamedNode(x.URL))
	case x.Literal:
		b.add(TierFull, tid, t.vocab(x.Namespace), rdf.NewLiteral(x.ID))
	default:
		b.add(TierFull, tid, t.vocab("x-"+x.Namespace), rdf.NewNamedNode(t.resolver.IRI(x.Namespace, x.ID)))
	}
}

// handlePropertyValue handles `key value [xsd:type]` and `key "quoted value" [xsd:type]`
func (t *Translator) handlePropertyValue(tid *rdf.NamedNode, value string, b *batch) {
	key, rest, ok := strings.Cut(value, " ")
	if !ok {
		return
	}
	rest = strings.TrimSpace(rest)

	var literal, datatype string
	if strings.HasPrefix(rest, `"`) {
		end := closingQuote(rest)
		if end < 0 {
			literal = strings.ReplaceAll(rest, `"`, "")
		} else {
			literal = stripSlashes(rest[1:end])
			datatype = strings.TrimSpace(rest[end+1:])
		}
	} else {
		literal, datatype, _ = strings.Cut(rest, " ")
		datatype = strings.TrimSpace(datatype)
	}
	if literal == "" {
		return
	}

	object := rdf.NewLiteral(literal)
	if local, ok := strings.CutPrefix(datatype, "xsd:"); ok && local != "" && local != "string" {
		object = rdf.NewLiteralWithDatatype(literal, rdf.NewNamedNode(rdf.XSDNamespace+local))
	}
	b.add(TierFull, tid, t.vocab(strings.ToLower(key)), object)
}

// closingQuote returns the index of the unescaped quote closing the one at s[0]
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
