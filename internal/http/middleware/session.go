package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/hack-or-snooze/internal/models"
	"github.com/pribylovaa/hack-or-snooze/internal/session"
	logctx "github.com/pribylovaa/hack-or-snooze/pkg/log"
	"github.com/pribylovaa/hack-or-snooze/pkg/redact"
)

// Session находит сессию браузера и кладёт её в контекст (session.Into).
//
// Порядок:
//  1. валидная cookie и сессия в хранилище — используем её; cookie перевыпускается,
//     когда прошла половина её срока;
//  2. валидная cookie, сессии нет (рестарт/вытеснение) — восстанавливаем пользователя
//     через models.LoginViaStoredCredentials под тем же sid;
//  3. cookie нет или она невалидна — новая анонимная сессия и новая cookie.
//
// Если API отверг сохранённый токен, сессия становится анонимной, cookie перевыпускается
// без учётных данных. При сбое API (сеть/5xx) запрос обслуживается анонимно,
// а cookie сохраняется: восстановление повторится на следующем запросе.
func Session(m *session.Manager, users models.UsersAPI) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			lg := logctx.From(ctx)

			claims, err := m.Read(r)
			if err != nil && !errors.Is(err, session.ErrNoCookie) {
				lg.Debug("session_cookie_invalid", slog.String("err", err.Error()))
			}

			if err != nil {
				sess, serr := m.Start(w, nil, nil)
				if serr != nil {
					lg.Error("session_start_failed", slog.String("err", serr.Error()))
					sess = session.New(nil)
				}
				next.ServeHTTP(w, r.WithContext(withSession(ctx, sess)))
				return
			}

			if sess, ok := m.Store.Get(claims.SessionID); ok {
				refresh(lg, m, w, sess, claims)
				next.ServeHTTP(w, r.WithContext(withSession(ctx, sess)))
				return
			}

			sess := &session.Session{ID: claims.SessionID}

			if claims.Token == "" {
				m.Store.Put(sess)
				next.ServeHTTP(w, r.WithContext(withSession(ctx, sess)))
				return
			}

			user, err := models.LoginViaStoredCredentials(ctx, users, claims.Token, claims.Username)
			switch {
			case err != nil:
				lg.Warn("session_resume_failed",
					slog.String("username", redact.Username(claims.Username)),
					slog.String("err", err.Error()),
				)
			case user == nil:
				lg.Info("session_resume_rejected", slog.String("username", redact.Username(claims.Username)))
				m.Store.Put(sess)
				if werr := m.Write(w, sess); werr != nil {
					m.Clear(w)
				}
			default:
				lg.Info("session_resumed", slog.String("username", redact.Username(user.Username)))
				sess.SetUser(user)
				m.Store.Put(sess)
				refresh(lg, m, w, sess, claims)
			}

			next.ServeHTTP(w, r.WithContext(withSession(ctx, sess)))
		})
	}
}

// refresh продлевает cookie активной сессии; ошибка кодека не прерывает запрос.
func refresh(lg *slog.Logger, m *session.Manager, w http.ResponseWriter, s *session.Session, claims session.Claims) {
	ok, err := m.Refresh(w, s, claims)
	switch {
	case err != nil:
		lg.Warn("session_cookie_refresh_failed", slog.String("err", err.Error()))
	case ok:
		lg.Debug("session_cookie_refreshed")
	}
}

// withSession кладёт сессию в контекст и добавляет логгеру короткий префикс sid.
func withSession(ctx context.Context, s *session.Session) context.Context {
	sid := s.ID
	if len(sid) > 8 {
		sid = sid[:8]
	}

	return logctx.With(session.Into(ctx, s), slog.String("session", sid))
}
