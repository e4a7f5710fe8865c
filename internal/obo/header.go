package obo

import (
	"strings"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// handleHeader describes the ontology itself: ouri obo_vocabulary:<tag> "value"
func (t *Translator) handleHeader(tv tagValue, b *batch) {
	value := strings.ReplaceAll(tv.value, `\:`, ":")
	b.add(TierFull, t.ontology, t.vocab(tv.raw), rdf.NewLiteral(value))
}
