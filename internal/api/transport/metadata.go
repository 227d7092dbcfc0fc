package transport

import (
	"net/http"
)

// WithMetadata добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если есть в контексте и ещё не выставлен),
//   - User-Agent (если передан параметром).
//
// Исходный *http.Request не модифицируется (контракт RoundTripper).
func WithMetadata(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			rid := requestID(r)
			setRID := rid != "" && r.Header.Get("X-Request-Id") == ""

			if !setRID && userAgent == "" {
				return next.RoundTrip(r)
			}

			r = r.Clone(r.Context())
			if setRID {
				r.Header.Set("X-Request-Id", rid)
			}
			if userAgent != "" {
				r.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(r)
		})
	}
}
