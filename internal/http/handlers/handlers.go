package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pribylovaa/hack-or-snooze/internal/api"
	apierrors "github.com/pribylovaa/hack-or-snooze/internal/errors"
	"github.com/pribylovaa/hack-or-snooze/internal/http/views"
	"github.com/pribylovaa/hack-or-snooze/internal/models"
	"github.com/pribylovaa/hack-or-snooze/internal/session"
	logctx "github.com/pribylovaa/hack-or-snooze/pkg/log"
)

// Handlers агрегирует зависимости: API, сессии, шаблоны.
type Handlers struct {
	API      models.API
	Sessions *session.Manager
	Views    *views.Renderer
}

// New собирает обработчики страниц и действий.
func New(a models.API, sm *session.Manager, v *views.Renderer) *Handlers {
	return &Handlers{API: a, Sessions: sm, Views: v}
}

// defaultActionTimeout ограничивает общий вызов, если у запроса нет deadline.
const defaultActionTimeout = 15 * time.Second

// actionContext — контекст вызова внутри sess.Do. Он разделяется дублями запроса,
// поэтому не отменяется вместе с запросом-инициатором, но сохраняет его deadline и значения.
func actionContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())

	if dl, ok := r.Context().Deadline(); ok {
		return context.WithDeadline(ctx, dl)
	}

	return context.WithTimeout(ctx, defaultActionTimeout)
}

// errBadForm — тело формы не разобрано.
var errBadForm = fmt.Errorf("%w: malformed form", api.ErrValidation)

// currentSession — сессия из контекста; без Session-мидлвара — одноразовая анонимная.
func currentSession(r *http.Request) *session.Session {
	if s := session.From(r.Context()); s != nil {
		return s
	}

	return session.New(nil)
}

// render рисует страницу; ошибка шаблона -> 500.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, p views.Page) {
	if err := h.Views.Render(w, status, name, p); err != nil {
		logctx.From(r.Context()).Error("render_failed",
			slog.String("template", name),
			slog.String("err", err.Error()),
		)
		apierrors.WriteError(w, r, err)
	}
}

// seeOther — редирект после POST.
func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// safeReturn принимает только локальный путь; иначе fallback.
func safeReturn(v, fallback string) string {
	if !strings.HasPrefix(v, "/") || strings.HasPrefix(v, "//") || strings.HasPrefix(v, "/\\") {
		return fallback
	}

	return v
}

// feedOf — текущая лента сессии или пустая, если страница ленты ещё не загружалась.
func (h *Handlers) feedOf(s *session.Session) *models.StoryList {
	if feed := s.Feed(); feed != nil {
		return feed
	}

	return models.NewStoryList(h.API, nil)
}
