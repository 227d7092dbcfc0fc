package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/hack-or-snooze/internal/http/handlers"
	"github.com/pribylovaa/hack-or-snooze/internal/http/middleware"
	"github.com/pribylovaa/hack-or-snooze/internal/http/views"
	"github.com/pribylovaa/hack-or-snooze/internal/models"
	"github.com/pribylovaa/hack-or-snooze/internal/session"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	Sessions *session.Manager
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(a models.API, v *views.Renderer, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(),          // до логирования: id попадает в attrs
		middleware.Logging(opts.Logger), // request-scoped логгер в контексте
		middleware.Session(opts.Sessions, a),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	h := handlers.New(a, opts.Sessions, v)
	registerRoutes(root, h)

	return root
}

// registerRoutes — единая точка регистрации всех страниц и действий.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// pages
	r.Get("/", h.Feed)
	r.Get("/favorites", h.Favorites)
	r.Get("/my-stories", h.MyStories)
	r.Get("/feed.rss", h.RSS)

	// users
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Post("/signup", h.Signup)
	r.Post("/logout", h.Logout)

	// stories
	r.Post("/stories", h.SubmitStory)
	r.Post("/stories/{id}/delete", h.DeleteStory)
	r.Post("/stories/{id}/favorite", h.ToggleFavorite)
}
