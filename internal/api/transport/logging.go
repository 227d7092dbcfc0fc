package transport

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/hack-or-snooze/pkg/log"
	"github.com/pribylovaa/hack-or-snooze/pkg/redact"
)

// WithLogging — логирование исходящих вызовов.
// Поведение:
//   - берёт X-Request-Id из заголовка/контекста (или генерирует uuid и добавляет);
//   - пишет одну финальную запись уровня Info: msg="upstream", method, path, status, dur;
//   - при транспортной ошибке — уровень Warn и поле err.
//
// Безопасность: тела запросов не логируются; token в query заменяется заглушкой.
func WithLogging(base *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			rid := r.Header.Get("X-Request-Id")
			if rid == "" {
				rid = requestID(r)
			}
			if rid == "" {
				rid = uuid.NewString()
				r = r.Clone(r.Context())
				r.Header.Set("X-Request-Id", rid)
			}

			// Логгер из контекста входящего запроса уже несёт request_id.
			l := base
			if l == nil {
				l = log.From(r.Context())
			}
			if base != nil || requestID(r) == "" {
				l = l.With(slog.String("request_id", rid))
			}

			l = l.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			if q := safeQuery(r.URL.Query()); q != "" {
				l = l.With(slog.String("query", q))
			}

			resp, err := next.RoundTrip(r)
			if err != nil {
				l.Warn("upstream",
					slog.String("err", err.Error()),
					slog.Duration("dur", time.Since(start)),
				)
				return nil, err
			}

			l.Info("upstream",
				slog.Int("status", resp.StatusCode),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}

// safeQuery кодирует query, заменяя значение token заглушкой.
func safeQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}

	if _, ok := q["token"]; ok {
		q.Set("token", redact.Token())
	}

	return q.Encode()
}
