package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// SubmittedTotal counts accepted complaint submissions.
	SubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "littertrack",
		Subsystem: "service",
		Name:      "complaints_submitted_total",
		Help:      "Total number of complaints accepted by the submit endpoint.",
	})

	// RejectedTotal counts rejected submissions by reason.
	RejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "littertrack",
		Subsystem: "service",
		Name:      "complaints_rejected_total",
		Help:      "Total number of rejected complaint submissions, labeled by reason.",
	}, []string{"reason"})

	// StatusUpdatesTotal counts status transitions by target status.
	StatusUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "littertrack",
		Subsystem: "service",
		Name:      "complaint_status_updates_total",
		Help:      "Total number of complaint status updates, labeled by new status.",
	}, []string{"status"})

	// DeletedTotal counts complaint deletions.
	DeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "littertrack",
		Subsystem: "service",
		Name:      "complaints_deleted_total",
		Help:      "Total number of complaints deleted from the dashboard.",
	})

	// WebsocketClients is the current number of connected dashboard clients.
	WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "littertrack",
		Subsystem: "service",
		Name:      "websocket_clients",
		Help:      "Current number of connected dashboard websocket clients.",
	})

	// SubmitDurationSeconds is end-to-end submit handling time.
	SubmitDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "littertrack",
		Subsystem: "service",
		Name:      "submit_duration_seconds",
		Help:      "End-to-end time to validate, normalize and store a submission.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			SubmittedTotal,
			RejectedTotal,
			StatusUpdatesTotal,
			DeletedTotal,
			WebsocketClients,
			SubmitDurationSeconds,
		)
	})
}
