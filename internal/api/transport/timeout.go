package transport

import (
	"context"
	"io"
	"net/http"
	"time"
)

// WithTimeout навешивает таймаут d на исходящий вызов, если у контекста ещё нет дедлайна.
// Существующий дедлайн не переопределяется.
//
// Контракт:
//  1. d <= 0 — не модифицирует контекст;
//  2. у ctx уже есть deadline — оставляет как есть;
//  3. иначе — оборачивает ctx через context.WithTimeout(ctx, d); cancel() вызывается
//     при закрытии тела ответа (или сразу, если вызов завершился ошибкой).
func WithTimeout(d time.Duration) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if d <= 0 {
			return next
		}

		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if _, ok := r.Context().Deadline(); ok {
				return next.RoundTrip(r)
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)

			resp, err := next.RoundTrip(r.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}

			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

// cancelOnClose освобождает контекст вызова вместе с телом ответа.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
