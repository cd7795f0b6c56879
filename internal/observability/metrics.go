package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	promotionCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "campusclub",
		Subsystem: "leadership",
		Name:      "promotions_total",
		Help:      "Number of committed leader promotions.",
	})
	enrollmentCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusclub",
		Subsystem: "enrollment",
		Name:      "attempts_total",
		Help:      "Enrollment attempts by outcome.",
	}, []string{"result"})
	withdrawalCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "campusclub",
		Subsystem: "enrollment",
		Name:      "withdrawals_total",
		Help:      "Number of committed withdrawals.",
	})
	mirrorPublishCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "campusclub",
		Subsystem: "mirror",
		Name:      "published_total",
		Help:      "Points ledger entries mirrored to the external sink.",
	})
	mirrorDropCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "campusclub",
		Subsystem: "mirror",
		Name:      "dropped_total",
		Help:      "Points ledger entries dropped after a failed mirror publish.",
	})
	busyRetryCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "campusclub",
		Subsystem: "engine",
		Name:      "busy_retries_total",
		Help:      "Engine transactions that failed on row lock contention.",
	})
)

func init() {
	prometheus.MustRegister(
		promotionCounter,
		enrollmentCounter,
		withdrawalCounter,
		mirrorPublishCounter,
		mirrorDropCounter,
		busyRetryCounter,
	)
}

// RecordPromotion counts a committed leader promotion.
func RecordPromotion() {
	promotionCounter.Inc()
}

// RecordEnrollment counts an enrollment attempt by outcome
// ("admitted", "capacity_exceeded", "failed").
func RecordEnrollment(result string) {
	enrollmentCounter.WithLabelValues(result).Inc()
}

// RecordWithdrawal counts a committed withdrawal.
func RecordWithdrawal() {
	withdrawalCounter.Inc()
}

// RecordMirrorPublish counts a successful mirror publish.
func RecordMirrorPublish() {
	mirrorPublishCounter.Inc()
}

// RecordMirrorDrop counts a dropped mirror event.
func RecordMirrorDrop() {
	mirrorDropCounter.Inc()
}

// RecordBusyRetry counts a transaction retried after lock contention.
func RecordBusyRetry() {
	busyRetryCounter.Inc()
}
