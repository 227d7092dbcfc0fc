// views — рендеринг страниц storyweb (html/template, шаблоны встроены в бинарь).
//
// Каждая страница перестраивается из состояния сессии целиком.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/pribylovaa/hack-or-snooze/internal/models"
)

//go:embed templates/*.html
var files embed.FS

// Сообщения пустых списков.
const (
	EmptyOwnStories = "Current User has no stories added yet."
	EmptyFavorites  = "User has no favorites added yet."
)

// Секции страницы историй (id элемента section).
const (
	SectionAll       = "all-stories-list"
	SectionFavorites = "favorited-stories"
	SectionOwn       = "my-stories"
)

// Page — данные страницы.
type Page struct {
	Title   string
	User    *models.User
	Error   string
	Section string
	Stories []StoryItem
	Empty   string

	ShowSubmit bool
	Username   string
}

// StoryItem — одна история в разметке списка.
type StoryItem struct {
	Story    *models.Story
	HostName string

	ShowDelete bool
	ShowStar   bool
	Favorite   bool
	Return     string
}

// Items строит элементы списка. Звезда показывается только вошедшему
// пользователю (fas — в избранном, far — нет), корзина — только при showDelete.
func Items(stories []*models.Story, user *models.User, showDelete bool, back string) []StoryItem {
	out := make([]StoryItem, 0, len(stories))
	for _, s := range stories {
		out = append(out, StoryItem{
			Story:      s,
			HostName:   s.HostName(),
			ShowDelete: showDelete,
			ShowStar:   user != nil,
			Favorite:   user != nil && user.IsFavorite(s),
			Return:     back,
		})
	}

	return out
}

// Renderer исполняет встроенные шаблоны.
type Renderer struct {
	t *template.Template
}

// New разбирает встроенные шаблоны.
func New() (*Renderer, error) {
	const op = "http/views/New"

	t, err := template.ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Renderer{t: t}, nil
}

// Render пишет страницу name со статусом status.
// Шаблон исполняется в буфер целиком до записи заголовков.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) error {
	const op = "http/views/Render"

	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, p); err != nil {
		return fmt.Errorf("%s: %s: %w", op, name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
