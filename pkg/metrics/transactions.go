package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransactionMetrics records commit/abort outcomes of the coordinated
// purchase and top-up flows.
type TransactionMetrics struct {
	duration *prometheus.HistogramVec
	commits  *prometheus.CounterVec
	aborts   *prometheus.CounterVec
}

// NewTransactionMetrics registers the transaction metrics on the provided
// registerer.
func NewTransactionMetrics(reg prometheus.Registerer) *TransactionMetrics {
	if reg == nil {
		return &TransactionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transaction_duration_seconds",
		Help:    "Duration of coordinated transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"flow"})
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transaction_commits_total",
		Help: "Committed transactions.",
	}, []string{"flow"})
	aborts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transaction_aborts_total",
		Help: "Aborted transactions by reason.",
	}, []string{"flow", "reason"})
	reg.MustRegister(duration, commits, aborts)
	return &TransactionMetrics{
		duration: duration,
		commits:  commits,
		aborts:   aborts,
	}
}

// ObserveDuration records how long the named flow took, committed or not.
func (t *TransactionMetrics) ObserveDuration(flow string, duration time.Duration) {
	if t == nil || t.duration == nil {
		return
	}
	t.duration.WithLabelValues(normalizeLabel(flow)).Observe(duration.Seconds())
}

// IncCommit increments the commit counter for the named flow.
func (t *TransactionMetrics) IncCommit(flow string) {
	if t == nil || t.commits == nil {
		return
	}
	t.commits.WithLabelValues(normalizeLabel(flow)).Inc()
}

// IncAbort increments the abort counter for the named flow and reason.
func (t *TransactionMetrics) IncAbort(flow, reason string) {
	if t == nil || t.aborts == nil {
		return
	}
	t.aborts.WithLabelValues(normalizeLabel(flow), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
