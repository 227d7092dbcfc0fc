package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pribylovaa/hack-or-snooze/internal/metrics"
)

// WithMetrics считает исходящие вызовы и их длительность.
// Транспортная ошибка учитывается с code="error". m == nil — no-op.
func WithMetrics(m *metrics.Upstream) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if m == nil {
			return next
		}

		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			m.Duration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())

			code := "error"
			if err == nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			m.Requests.WithLabelValues(r.Method, code).Inc()

			return resp, err
		})
	}
}
