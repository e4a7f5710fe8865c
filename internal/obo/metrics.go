package obo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the translator counters. A single instance is shared by every
// translator of a run.
type Metrics struct {
	lines            prometheus.Counter
	stanzas          *prometheus.CounterVec
	statements       *prometheus.CounterVec
	filtered         *prometheus.CounterVec
	emptySubject     prometheus.Counter
	unrecognizedTags prometheus.Counter
}

// NewMetrics registers the translator counters with reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		lines: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "obo2rdf_lines_total",
			Help: "Total number of OBO source lines read.",
		}),
		stanzas: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "obo2rdf_stanzas_total",
			Help: "Total number of stanzas seen, by kind.",
		}, []string{"kind"}),
		statements: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "obo2rdf_statements_total",
			Help: "Total number of statements emitted, by tier.",
		}, []string{"tier"}),
		filtered: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "obo2rdf_statements_filtered_total",
			Help: "Total number of statements suppressed by the detail level, by tier.",
		}, []string{"tier"}),
		emptySubject: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "obo2rdf_empty_subject_statements_total",
			Help: "Total number of statements dropped because the stanza had no id yet.",
		}),
		unrecognizedTags: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "obo2rdf_unrecognized_tags_total",
			Help: "Total number of term tags handled by the catch-all rule.",
		}),
	}
}
