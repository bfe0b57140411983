// Package metrics exposes Prometheus instrumentation for the checkmark flows.
// Metrics are package-level so every call site shares one registration.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkmark_sessions_created_total",
		Help: "Verification sessions successfully created",
	})

	createRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkmark_session_create_rejections_total",
		Help: "Session creation attempts rejected, by reason",
	}, []string{"reason"})

	assignments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkmark_assignments_total",
		Help: "Checkmarks assigned on the ledger",
	})

	assignmentRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkmark_assignment_rejections_total",
		Help: "Assignment attempts rejected before the ledger execute, by reason",
	}, []string{"reason"})

	webhookOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkmark_webhook_outcomes_total",
		Help: "Webhook deliveries by outcome",
	}, []string{"outcome"})

	providerPollSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkmark_provider_poll_duration_seconds",
		Help:    "Latency of verification provider state polls",
		Buckets: prometheus.DefBuckets,
	})
)

func IncSessionsCreated()              { sessionsCreated.Inc() }
func IncCreateRejected(reason string)  { createRejections.WithLabelValues(reason).Inc() }
func IncAssignments()                  { assignments.Inc() }
func IncAssignRejected(reason string)  { assignmentRejections.WithLabelValues(reason).Inc() }
func IncWebhookOutcome(outcome string) { webhookOutcomes.WithLabelValues(outcome).Inc() }

// ObserveProviderPoll records one provider poll duration.
func ObserveProviderPoll(start time.Time) {
	providerPollSeconds.Observe(time.Since(start).Seconds())
}
