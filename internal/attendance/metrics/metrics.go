package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for attendance marking.
type Metrics struct {
	// Outcomes by event type and result ("recorded" or an error code)
	MarkOutcome *prometheus.CounterVec

	// Recorded events by verification method
	EventsByMethod *prometheus.CounterVec

	// Late check-ins
	LateCheckIns prometheus.Counter

	// Full Mark latency including store and publish
	MarkLatency prometheus.Histogram

	// Publish failures (the event itself stays recorded)
	PublishFailures prometheus.Counter
}

// New creates a new Metrics instance with all attendance metrics registered.
func New() *Metrics {
	return &Metrics{
		MarkOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bioclock_attendance_mark_total",
			Help: "Attendance mark attempts by event type and outcome",
		}, []string{"type", "outcome"}),

		EventsByMethod: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bioclock_attendance_events_total",
			Help: "Recorded attendance events by verification method",
		}, []string{"method"}),

		LateCheckIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bioclock_attendance_late_checkins_total",
			Help: "Check-ins recorded after work start",
		}),

		MarkLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bioclock_attendance_mark_duration_seconds",
			Help:    "Duration of attendance marking including persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bioclock_attendance_publish_failures_total",
			Help: "Attendance events that could not be published",
		}),
	}
}

// IncrementOutcome records a mark outcome.
func (m *Metrics) IncrementOutcome(eventType, outcome string) {
	if m != nil {
		m.MarkOutcome.WithLabelValues(eventType, outcome).Inc()
	}
}

// IncrementRecorded records a stored event.
func (m *Metrics) IncrementRecorded(method string, late bool) {
	if m == nil {
		return
	}
	m.EventsByMethod.WithLabelValues(method).Inc()
	if late {
		m.LateCheckIns.Inc()
	}
}

// ObserveMarkLatency records the total Mark duration.
func (m *Metrics) ObserveMarkLatency(d time.Duration) {
	if m != nil {
		m.MarkLatency.Observe(d.Seconds())
	}
}

// IncrementPublishFailure records a failed publish.
func (m *Metrics) IncrementPublishFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}
