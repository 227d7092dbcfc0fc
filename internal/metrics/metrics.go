// metrics — Prometheus-коллекторы storyweb.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Upstream — метрики исходящих вызовов к API историй.
type Upstream struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewUpstream создаёт коллекторы и регистрирует их в reg.
// reg == nil — коллекторы создаются, но не регистрируются (удобно в тестах).
func NewUpstream(reg prometheus.Registerer) *Upstream {
	m := &Upstream{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storyweb",
			Name:      "upstream_requests_total",
			Help:      "Outbound API requests by method and HTTP status code.",
		}, []string{"method", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storyweb",
			Name:      "upstream_request_duration_seconds",
			Help:      "Outbound API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration)
	}

	return m
}
