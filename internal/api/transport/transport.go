// transport — набор http.RoundTripper-декораторов для исходящих вызовов к API.
//
// Рекомендуемый порядок: metadata -> timeout -> metrics -> logging (см. Chain).
package transport

import (
	"net/http"
)

// CtxKey — тип ключей контекста пакета transport.
type CtxKey string

// CtxRequestID — ключ контекста с X-Request-Id входящего запроса.
const CtxRequestID CtxKey = "request_id"

// Middleware оборачивает RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc — адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain применяет мидлвары к base в порядке перечисления: первый — самый внешний.
// base == nil — используется http.DefaultTransport.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}

	return base
}

// requestID достаёт request id из контекста запроса.
func requestID(r *http.Request) string {
	if v, ok := r.Context().Value(CtxRequestID).(string); ok {
		return v
	}

	return ""
}
