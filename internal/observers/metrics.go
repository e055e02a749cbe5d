package observers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lapulapu"

// Tool call outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeUnknown  = "unknown_tool"
	OutcomeRejected = "invalid_payload"
)

// Metrics holds the server's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	toolCalls         *prometheus.CounterVec
	webhookEvents     *prometheus.CounterVec
	webCallRejections *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations from the voice agent by tool and outcome.",
		}, []string{"tool", "outcome"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Call lifecycle webhooks received, by classification.",
		}, []string{"event"}),
		webCallRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "web_call_rejections_total",
			Help:      "Web call creations refused, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.toolCalls, m.webhookEvents, m.webCallRejections)
	return m
}

func (m *Metrics) ToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

func (m *Metrics) WebhookEvent(event string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) WebCallRejected(reason string) {
	if m == nil {
		return
	}
	m.webCallRejections.WithLabelValues(reason).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
