package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// intentsProcessed counts dispatch intents finalized by the scheduler.
	// Labels:
	// - status: "completed" or "failed"
	intentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendanotify",
			Subsystem: "scheduler",
			Name:      "intents_processed_total",
			Help:      "Number of dispatch intents finalized, by terminal status",
		},
		[]string{"status"},
	)

	// messagesSent counts individual send attempts.
	// Labels:
	// - status: "sent" or "failed"
	messagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendanotify",
			Subsystem: "channel",
			Name:      "messages_total",
			Help:      "Number of per-recipient send attempts, by outcome",
		},
		[]string{"status"},
	)

	// remindersDispatched counts reminder dispatch invocations.
	// Labels:
	// - type:    reminder rule type ("confirmation", ...)
	// - outcome: "sent", "failed", "skipped"
	remindersDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendanotify",
			Subsystem: "reminder",
			Name:      "dispatched_total",
			Help:      "Number of reminder dispatch invocations, by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// tickDuration tracks how long one due-intent scan takes.
	tickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "agendanotify",
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Duration of one scheduler tick",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// ticksSkipped counts ticks skipped because the previous one was
	// still running.
	ticksSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agendanotify",
			Subsystem: "scheduler",
			Name:      "ticks_skipped_total",
			Help:      "Number of scheduler ticks skipped due to overlap",
		},
	)

	// providerRequestDuration tracks the latency of provider send calls.
	providerRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "agendanotify",
			Subsystem: "channel",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of send calls to the messaging provider",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// IncIntentProcessed records one finalized intent
func IncIntentProcessed(status string) {
	intentsProcessed.WithLabelValues(status).Inc()
}

// IncMessage records one per-recipient send attempt
func IncMessage(status string) {
	messagesSent.WithLabelValues(status).Inc()
}

// IncReminder records one reminder dispatch invocation
func IncReminder(ruleType, outcome string) {
	remindersDispatched.WithLabelValues(ruleType, outcome).Inc()
}

// ObserveTick records the duration of one scheduler tick
func ObserveTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// IncTickSkipped records one skipped tick
func IncTickSkipped() {
	ticksSkipped.Inc()
}

// ObserveProviderRequest records the duration of one provider send call
func ObserveProviderRequest(d time.Duration) {
	providerRequestDuration.Observe(d.Seconds())
}
