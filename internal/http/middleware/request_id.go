package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/hack-or-snooze/internal/api/transport"
)

const (
	headerRequestID = "X-Request-Id"
	// maxRequestIDLen — входящий id длиннее считается мусором и заменяется.
	maxRequestIDLen = 128
)

// RequestID гарантирует, что у запроса есть корреляционный id.
//
// Входящий X-Request-Id принимается, если он короткий и состоит из печатных ASCII-символов
// (id выводится на странице ошибки и уходит в апстрим), иначе выдаётся новый uuid.
// Итоговый id попадает в заголовки запроса и ответа и в контекст под transport.CtxRequestID,
// откуда его берёт transport.WithMetadata для исходящих вызовов.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if !validRequestID(id) {
				id = uuid.NewString()
				r.Header.Set(headerRequestID, id)
			}
			w.Header().Set(headerRequestID, id)

			ctx := context.WithValue(r.Context(), transport.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}

	for i := 0; i < len(id); i++ {
		if c := id[i]; c < 0x21 || c > 0x7e {
			return false
		}
	}

	return true
}
