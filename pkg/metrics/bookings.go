package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics tracks lifecycle transitions and payment intake.
type BookingMetrics struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	payments    *prometheus.CounterVec
	anomalies   prometheus.Counter
}

// NewBookingMetrics registers booking lifecycle metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transitions_total",
		Help: "Booking status transitions applied, by target status.",
	}, []string{"to_status"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transition_rejections_total",
		Help: "Transition attempts rejected, by error code.",
	}, []string{"code"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_payments_total",
		Help: "Payments recorded against bookings, by method.",
	}, []string{"method"})
	anomalies := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_payment_anomalies_total",
		Help: "Payments recorded against bookings with a zero total.",
	})
	reg.MustRegister(transitions, rejections, payments, anomalies)
	return &BookingMetrics{
		transitions: transitions,
		rejections:  rejections,
		payments:    payments,
		anomalies:   anomalies,
	}
}

// IncTransition counts a successful transition into the given status.
func (b *BookingMetrics) IncTransition(toStatus string) {
	if b == nil || b.transitions == nil {
		return
	}
	b.transitions.WithLabelValues(normalizeLabel(toStatus)).Inc()
}

// IncRejection counts a rejected transition attempt by error code.
func (b *BookingMetrics) IncRejection(code string) {
	if b == nil || b.rejections == nil {
		return
	}
	b.rejections.WithLabelValues(normalizeLabel(code)).Inc()
}

// IncPayment counts a recorded payment by method.
func (b *BookingMetrics) IncPayment(method string) {
	if b == nil || b.payments == nil {
		return
	}
	b.payments.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncPaymentAnomaly counts a payment applied to a booking with no total price.
func (b *BookingMetrics) IncPaymentAnomaly() {
	if b == nil || b.anomalies == nil {
		return
	}
	b.anomalies.Inc()
}
