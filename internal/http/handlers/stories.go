package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/hack-or-snooze/internal/errors"
	"github.com/pribylovaa/hack-or-snooze/internal/http/views"
	"github.com/pribylovaa/hack-or-snooze/internal/models"
	"github.com/pribylovaa/hack-or-snooze/internal/session"
	logctx "github.com/pribylovaa/hack-or-snooze/pkg/log"
	"github.com/pribylovaa/hack-or-snooze/pkg/redact"
)

// Feed — главная страница: свежая лента с сервера, сохраняется в сессии.
func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	list, err := models.GetStories(r.Context(), h.API)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	sess.SetFeed(list)

	user := sess.User()
	h.render(w, r, http.StatusOK, "stories", views.Page{
		User:       user,
		Section:    views.SectionAll,
		ShowSubmit: true,
		Stories:    views.Items(list.Stories(), user, false, "/"),
	})
}

// Favorites — избранное вошедшего пользователя.
func (h *Handlers) Favorites(w http.ResponseWriter, r *http.Request) {
	user := currentSession(r).User()
	if user == nil {
		seeOther(w, r, "/login")
		return
	}

	h.render(w, r, http.StatusOK, "stories", views.Page{
		Title:   "favorites",
		User:    user,
		Section: views.SectionFavorites,
		Stories: views.Items(user.Favorites(), user, false, "/favorites"),
		Empty:   views.EmptyFavorites,
	})
}

// MyStories — собственные истории с кнопкой удаления.
func (h *Handlers) MyStories(w http.ResponseWriter, r *http.Request) {
	user := currentSession(r).User()
	if user == nil {
		seeOther(w, r, "/login")
		return
	}

	h.render(w, r, http.StatusOK, "stories", views.Page{
		Title:   "my stories",
		User:    user,
		Section: views.SectionOwn,
		Stories: views.Items(user.OwnStories(), user, true, "/my-stories"),
		Empty:   views.EmptyOwnStories,
	})
}

// SubmitStory публикует историю из формы и возвращает на ленту.
func (h *Handlers) SubmitStory(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	user := sess.User()
	if user == nil {
		seeOther(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		apierrors.WriteError(w, r, errBadForm)
		return
	}

	in := models.StoryInput{
		Title:  r.PostForm.Get("title"),
		Author: r.PostForm.Get("author"),
		URL:    r.PostForm.Get("url"),
	}

	feed := h.feedOf(sess)
	key := "submit:" + in.Title + "\x00" + in.Author + "\x00" + in.URL

	_, err := sess.Do(key, func() error {
		ctx, cancel := actionContext(r)
		defer cancel()

		story, err := feed.AddStory(ctx, user, in)
		if err != nil {
			return err
		}

		logctx.From(r.Context()).Info("story_added",
			slog.String("story_id", story.StoryID),
			slog.String("username", redact.Username(user.Username)),
		)
		return nil
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	seeOther(w, r, "/")
}

// DeleteStory удаляет собственную историю и возвращает на «my stories».
func (h *Handlers) DeleteStory(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	user := sess.User()
	if user == nil {
		seeOther(w, r, "/login")
		return
	}

	id := chi.URLParam(r, "id")
	feed := h.feedOf(sess)

	_, err := sess.Do("delete:"+id, func() error {
		ctx, cancel := actionContext(r)
		defer cancel()

		if err := feed.DeleteStory(ctx, user, id); err != nil {
			return err
		}

		logctx.From(r.Context()).Info("story_deleted",
			slog.String("story_id", id),
			slog.String("username", redact.Username(user.Username)),
		)
		return nil
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	seeOther(w, r, "/my-stories")
}

// ToggleFavorite переключает избранное для истории {id} и возвращает на исходную страницу.
// История ищется в ленте сессии, затем в избранном и собственных историях.
func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	user := sess.User()
	if user == nil {
		seeOther(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		apierrors.WriteError(w, r, errBadForm)
		return
	}

	id := chi.URLParam(r, "id")

	story := findStory(sess, user, id)
	if story == nil {
		apierrors.WriteError(w, r, models.ErrNoStory)
		return
	}

	_, err := sess.Do("favorite:"+id, func() error {
		ctx, cancel := actionContext(r)
		defer cancel()

		if user.IsFavorite(story) {
			return user.RemoveFavorite(ctx, story)
		}
		return user.AddFavorite(ctx, story)
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	logctx.From(r.Context()).Debug("favorite_toggled",
		slog.String("story_id", id),
		slog.Bool("favorite", user.IsFavorite(story)),
	)

	seeOther(w, r, safeReturn(r.PostForm.Get("return"), "/"))
}

func findStory(sess *session.Session, user *models.User, id string) *models.Story {
	if feed := sess.Feed(); feed != nil {
		if s, ok := feed.Find(id); ok {
			return s
		}
	}

	for _, group := range [][]*models.Story{user.Favorites(), user.OwnStories()} {
		for _, s := range group {
			if s.StoryID == id {
				return s
			}
		}
	}

	return nil
}
