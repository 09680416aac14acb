package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters for the booking flow.
type SchedulingMetrics struct {
	bookingsTotal *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic360",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal)
	return m
}

// ObserveBooking records a booking attempt outcome
// (booked, conflict, invalid, error).
func (m *SchedulingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

// NotificationMetrics exposes counters for the notification pipeline.
type NotificationMetrics struct {
	enqueuedTotal  prometheus.Counter
	attemptsTotal  *prometheus.CounterVec
	deliveredTotal prometheus.Counter
	droppedTotal   prometheus.Counter
}

func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	m := &NotificationMetrics{
		enqueuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic360",
			Subsystem: "notifications",
			Name:      "enqueued_total",
			Help:      "Total notification jobs admitted to the queue",
		}),
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic360",
			Subsystem: "notifications",
			Name:      "send_attempts_total",
			Help:      "Total email send attempts by outcome",
		}, []string{"outcome"}),
		deliveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic360",
			Subsystem: "notifications",
			Name:      "delivered_total",
			Help:      "Total confirmation emails delivered",
		}),
		droppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic360",
			Subsystem: "notifications",
			Name:      "dropped_total",
			Help:      "Total jobs dropped after exhausting retries",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.enqueuedTotal, m.attemptsTotal, m.deliveredTotal, m.droppedTotal)
	return m
}

func (m *NotificationMetrics) ObserveEnqueued() {
	if m == nil {
		return
	}
	m.enqueuedTotal.Inc()
}

// ObserveAttempt records one send attempt (success or failure).
func (m *NotificationMetrics) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *NotificationMetrics) ObserveDelivered() {
	if m == nil {
		return
	}
	m.deliveredTotal.Inc()
}

func (m *NotificationMetrics) ObserveDropped() {
	if m == nil {
		return
	}
	m.droppedTotal.Inc()
}
