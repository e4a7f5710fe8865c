package obo

import (
	"strings"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

var typedefIDCleaner = strings.NewReplacer("(", "_", ")", "")

func (t *Translator) handleTypedef(st *stanza, tv tagValue, b *batch) {
	tid := t.subject(st)
	value := tv.value

	switch tv.tag {
	case TagID:
		ns, id, ok := strings.Cut(value, ":")
		if ok {
			ns = strings.ToLower(strings.TrimSpace(ns))
		} else {
			ns, id = typedefNS, value
		}
		if ns == "" {
			ns = typedefNS
		}
		t.setID(st, ns, typedefIDCleaner.Replace(strings.TrimSpace(id)))

	case TagName:
		name := stripSlashes(value)
		b.add(TierFull, tid, rdf.RDFSLabel, rdf.NewLiteralWithLanguage(name, labelLanguage))
		b.add(TierFull, tid, rdf.DCTitle, rdf.NewLiteral(name))

	case TagIsA:
		parent := strings.ToLower(strings.TrimSpace(value))
		b.add(TierFull, tid, rdf.RDFSSubPropOf, t.vocab(parent))

	case TagIsObsolete:
		if value != "true" {
			t.catchAll(tid, tv, b)
			return
		}
		b.add(TierFull, tid, rdf.RDFType, rdf.OWLDeprecatedClass)
		st.deprecated = true

	default:
		tv.raw = strings.TrimPrefix(tv.raw, "!")
		t.catchAll(tid, tv, b)
	}
}
