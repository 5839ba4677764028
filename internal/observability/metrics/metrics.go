package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters/histograms for the inbound message flow.
type WebhookMetrics struct {
	inboundTotal   *prometheus.CounterVec
	bookingsTotal  prometheus.Counter
	webhookLatency *prometheus.HistogramVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendabot",
			Subsystem: "webhook",
			Name:      "inbound_total",
			Help:      "Total inbound WhatsApp messages, by dialogue state reached and outcome",
		}, []string{"state", "status"}),
		bookingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agendabot",
			Subsystem: "booking",
			Name:      "total",
			Help:      "Total appointments booked through the dialogue",
		}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agendabot",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of inbound webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.bookingsTotal, m.webhookLatency)
	return m
}

func (m *WebhookMetrics) ObserveInbound(state, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(state, status).Inc()
}

func (m *WebhookMetrics) ObserveBooking() {
	if m == nil {
		return
	}
	m.bookingsTotal.Inc()
}

func (m *WebhookMetrics) ObserveLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(status).Observe(seconds)
}
