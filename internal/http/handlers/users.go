package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/pribylovaa/hack-or-snooze/internal/errors"
	"github.com/pribylovaa/hack-or-snooze/internal/http/views"
	"github.com/pribylovaa/hack-or-snooze/internal/models"
	logctx "github.com/pribylovaa/hack-or-snooze/pkg/log"
	"github.com/pribylovaa/hack-or-snooze/pkg/redact"
)

// LoginPage — формы входа и регистрации. Вошедшего пользователя отправляет на ленту.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if currentSession(r).User() != nil {
		seeOther(w, r, "/")
		return
	}

	h.render(w, r, http.StatusOK, "login", views.Page{Title: "login"})
}

// Login — вход по username/password. Ошибка показывается на странице входа.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.WriteError(w, r, errBadForm)
		return
	}

	username := r.PostForm.Get("username")
	lg := logctx.From(r.Context()).With(slog.String("username", redact.Username(username)))

	user, err := models.Login(r.Context(), h.API, username, r.PostForm.Get("password"))
	if err != nil {
		lg.Info("login_failed", slog.String("err", err.Error()))
		h.authFailed(w, r, err, username)
		return
	}

	if !h.startUserSession(w, r, user) {
		return
	}

	lg.Info("user_login")
	seeOther(w, r, "/")
}

// Signup — регистрация и сразу вход.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.WriteError(w, r, errBadForm)
		return
	}

	username := r.PostForm.Get("username")
	lg := logctx.From(r.Context()).With(slog.String("username", redact.Username(username)))

	user, err := models.Signup(r.Context(), h.API, username, r.PostForm.Get("password"), r.PostForm.Get("name"))
	if err != nil {
		lg.Info("signup_failed", slog.String("err", err.Error()))
		h.authFailed(w, r, err, "")
		return
	}

	if !h.startUserSession(w, r, user) {
		return
	}

	lg.Info("user_signup")
	seeOther(w, r, "/")
}

// Logout — сессия и сохранённые учётные данные сбрасываются, браузер получает новую анонимную сессию.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	if _, err := h.Sessions.Start(w, sess, nil); err != nil {
		h.Sessions.Clear(w)
	}

	if u := sess.User(); u != nil {
		logctx.From(r.Context()).Info("user_logout", slog.String("username", redact.Username(u.Username)))
	}

	seeOther(w, r, "/")
}

// startUserSession выдаёт новую сессию под пользователя (новый sid при каждом входе).
func (h *Handlers) startUserSession(w http.ResponseWriter, r *http.Request, user *models.User) bool {
	if _, err := h.Sessions.Start(w, currentSession(r), user); err != nil {
		logctx.From(r.Context()).Error("session_start_failed", slog.String("err", err.Error()))
		apierrors.WriteError(w, r, err)
		return false
	}

	return true
}

func (h *Handlers) authFailed(w http.ResponseWriter, r *http.Request, err error, username string) {
	status, resp := apierrors.ToHTTP(err)

	h.render(w, r, status, "login", views.Page{
		Title:    "login",
		Error:    resp.Error.Message,
		Username: username,
	})
}
