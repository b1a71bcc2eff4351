package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for verification sessions.
type Metrics struct {
	// Sessions started by type
	SessionsStarted *prometheus.CounterVec

	// Sessions reaching a terminal status
	SessionsClosed *prometheus.CounterVec

	// Attempts by outcome ("success" or "failure")
	Attempts *prometheus.CounterVec
}

// New creates a new Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bioclock_verification_sessions_started_total",
			Help: "Verification sessions started by type",
		}, []string{"type"}),

		SessionsClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bioclock_verification_sessions_closed_total",
			Help: "Verification sessions reaching a terminal status",
		}, []string{"status"}),

		Attempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bioclock_verification_attempts_total",
			Help: "Verification attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementStarted(sessionType string) {
	if m != nil {
		m.SessionsStarted.WithLabelValues(sessionType).Inc()
	}
}

func (m *Metrics) IncrementClosed(status string) {
	if m != nil {
		m.SessionsClosed.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementAttempt(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.Attempts.WithLabelValues(outcome).Inc()
}
