package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters/histograms for webhook and messaging flows.
type BotMetrics struct {
	inboundTotal    *prometheus.CounterVec
	outboundTotal   *prometheus.CounterVec
	reminderTotal   *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mawid",
			Subsystem: "whatsapp",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp webhook messages",
		}, []string{"type", "status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mawid",
			Subsystem: "whatsapp",
			Name:      "outbound_total",
			Help:      "Total outbound WhatsApp sends",
		}, []string{"status"}),
		reminderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mawid",
			Subsystem: "reminders",
			Name:      "processed_total",
			Help:      "Total reminder tasks processed",
		}, []string{"kind", "outcome"}),
		dispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mawid",
			Subsystem: "conversation",
			Name:      "dispatch_latency_seconds",
			Help:      "Latency of conversation engine dispatch per inbound message",
			Buckets:   prometheus.DefBuckets,
		}, []string{"state"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.reminderTotal, m.dispatchLatency)
	return m
}

func (m *BotMetrics) ObserveInbound(msgType, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(msgType, status).Inc()
}

func (m *BotMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *BotMetrics) ObserveReminder(kind, outcome string) {
	if m == nil {
		return
	}
	m.reminderTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *BotMetrics) ObserveDispatchLatency(state string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchLatency.WithLabelValues(state).Observe(seconds)
}
