package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	apierrors "github.com/pribylovaa/hack-or-snooze/internal/errors"
	logctx "github.com/pribylovaa/hack-or-snooze/pkg/log"
)

var errPanic = errors.New("panic")

// Recover превращает panic обработчика страницы в страницу ошибки 500 (code=internal).
// Причина и стек уходят только в журнал. http.ErrAbortHandler пробрасывается дальше:
// им net/http обрывает соединение.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				switch {
				case rec == nil:
					return
				case rec == http.ErrAbortHandler:
					panic(rec)
				}

				logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelError, "panic",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("reason", rec),
					slog.String("stack", string(debug.Stack())),
				)
				apierrors.WriteError(w, r, errPanic)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
