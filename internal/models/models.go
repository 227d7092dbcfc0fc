// models — клиентская доменная модель: Story, StoryList, User.
//
// Модель синхронизируется с удалённым API по правилам:
//   - запись в локальные коллекции происходит только после ответа сервера
//     (исключение — избранное: оптимистичное обновление с откатом при ошибке);
//   - удалённые вызовы никогда не выполняются под мьютексом;
//   - ошибки API возвращаются вызывающему как есть (api.Err*), UI-решений
//     модель не принимает.
package models

import (
	"context"
	"errors"

	"github.com/pribylovaa/hack-or-snooze/internal/api"
)

// PageSize — фиксированный размер ленты.
const PageSize = 30

var (
	// ErrNoUser — операция требует вошедшего пользователя.
	ErrNoUser = errors.New("no signed-in user")
	// ErrNoStory — передана пустая история или неизвестный storyId.
	ErrNoStory = errors.New("story not found")
)

// StoriesAPI — операции API над лентой.
type StoriesAPI interface {
	ListStories(ctx context.Context, limit int) ([]api.StoryRecord, error)
	CreateStory(ctx context.Context, token string, in api.NewStory) (api.StoryRecord, error)
	DeleteStory(ctx context.Context, token, storyID string) error
}

// UsersAPI — операции API над пользователем и его избранным.
type UsersAPI interface {
	Signup(ctx context.Context, username, password, name string) (api.UserRecord, string, error)
	Login(ctx context.Context, username, password string) (api.UserRecord, string, error)
	UserByName(ctx context.Context, token, username string) (api.UserRecord, error)
	AddFavorite(ctx context.Context, token, username, storyID string) error
	RemoveFavorite(ctx context.Context, token, username, storyID string) error
}

// API — полный контракт удалённого API, реализуется *api.Client.
//
//go:generate mockgen -destination=../../mocks/api_mock.go -package=mocks github.com/pribylovaa/hack-or-snooze/internal/models API
type API interface {
	StoriesAPI
	UsersAPI
}

var _ API = (*api.Client)(nil)

// indexOf — позиция истории с данным storyId или -1.
func indexOf(stories []*Story, storyID string) int {
	for i, s := range stories {
		if s.StoryID == storyID {
			return i
		}
	}

	return -1
}

// without возвращает новый срез без историй с данным storyId.
func without(stories []*Story, storyID string) []*Story {
	out := make([]*Story, 0, len(stories))
	for _, s := range stories {
		if s.StoryID != storyID {
			out = append(out, s)
		}
	}

	return out
}

// prepend возвращает новый срез со story в начале; прежняя копия с тем же id удаляется.
func prepend(stories []*Story, story *Story) []*Story {
	rest := without(stories, story.StoryID)

	out := make([]*Story, 0, len(rest)+1)
	out = append(out, story)
	return append(out, rest...)
}

// fromRecords строит упорядоченное множество историй: повторные storyId отбрасываются.
func fromRecords(recs []api.StoryRecord) []*Story {
	out := make([]*Story, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))

	for _, r := range recs {
		if _, dup := seen[r.StoryID]; dup {
			continue
		}
		seen[r.StoryID] = struct{}{}
		out = append(out, NewStory(r))
	}

	return out
}

func snapshot(stories []*Story) []*Story {
	return append([]*Story(nil), stories...)
}
