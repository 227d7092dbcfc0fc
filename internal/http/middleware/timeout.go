package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/hack-or-snooze/pkg/log"
)

// Timeout ограничивает время обработки страницы или действия: deadline ставится,
// только если у запроса его ещё нет. d <= 0 — no-op.
//
// Если обработчик вернулся уже после истечения deadline, пишется Warn
// request_deadline_exceeded: обычно это значит, что апстрим ответил слишком поздно.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, has := r.Context().Deadline(); has {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logctx.From(ctx).Warn("request_deadline_exceeded",
					slog.String("path", r.URL.Path),
					slog.Duration("limit", d),
				)
			}
		})
	}
}
