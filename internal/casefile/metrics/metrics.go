package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the case lifecycle module.
// Tracks case creation, transitions, verification activity, and command
// durations.
type Metrics struct {
	CasesCreated        *prometheus.CounterVec
	TransitionsApplied  *prometheus.CounterVec
	TransitionsRejected *prometheus.CounterVec
	DocumentsReviewed   *prometheus.CounterVec
	CommandDuration     *prometheus.HistogramVec
}

// New creates a new Metrics instance with all case lifecycle metrics registered.
func New() *Metrics {
	return &Metrics{
		CasesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sahaya_cases_created_total",
			Help: "Total number of cases created, by category",
		}, []string{"category"}),
		TransitionsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sahaya_case_transitions_total",
			Help: "Total number of status transitions applied, by category",
		}, []string{"category"}),
		TransitionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sahaya_case_transitions_rejected_total",
			Help: "Total number of status transitions rejected by the vocabulary, by category",
		}, []string{"category"}),
		DocumentsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sahaya_verification_documents_reviewed_total",
			Help: "Total number of document review decisions, by decision",
		}, []string{"decision"}),
		CommandDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sahaya_case_command_duration_seconds",
			Help:    "Duration of case lifecycle commands",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"command"}),
	}
}

// IncrementCaseCreated records a successful case creation.
func (m *Metrics) IncrementCaseCreated(category string) {
	m.CasesCreated.WithLabelValues(category).Inc()
}

// IncrementTransitionApplied records a committed status transition.
func (m *Metrics) IncrementTransitionApplied(category string) {
	m.TransitionsApplied.WithLabelValues(category).Inc()
}

// IncrementTransitionRejected records a transition the vocabulary refused.
func (m *Metrics) IncrementTransitionRejected(category string) {
	m.TransitionsRejected.WithLabelValues(category).Inc()
}

// IncrementDocumentReviewed records one review decision ("approved" or "rejected").
func (m *Metrics) IncrementDocumentReviewed(decision string) {
	m.DocumentsReviewed.WithLabelValues(decision).Inc()
}

// ObserveCommand records the duration of a lifecycle command.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCommand(command string, start time.Time) {
	m.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}
