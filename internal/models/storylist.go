package models

import (
	"context"
	"fmt"
	"sync"

	"github.com/pribylovaa/hack-or-snooze/internal/api"
)

// StoryInput — поля новой истории из формы.
type StoryInput struct {
	Title  string
	Author string
	URL    string
}

// StoryList — упорядоченная лента (сначала новые), storyId уникален.
type StoryList struct {
	api StoriesAPI

	mu      sync.RWMutex
	stories []*Story
}

// NewStoryList оборачивает готовый набор историй; повторные storyId отбрасываются.
func NewStoryList(a StoriesAPI, stories []*Story) *StoryList {
	list := make([]*Story, 0, len(stories))
	for _, s := range stories {
		if s != nil && indexOf(list, s.StoryID) < 0 {
			list = append(list, s)
		}
	}

	return &StoryList{api: a, stories: list}
}

// GetStories запрашивает до PageSize свежих историй (без авторизации)
// и возвращает новую ленту в порядке сервера. Ошибки API не интерпретируются.
func GetStories(ctx context.Context, a StoriesAPI) (*StoryList, error) {
	const op = "models/storylist/GetStories"

	recs, err := a.ListStories(ctx, PageSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &StoryList{api: a, stories: fromRecords(recs)}, nil
}

// Stories возвращает снимок ленты.
func (l *StoryList) Stories() []*Story {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return snapshot(l.stories)
}

// Len — число историй в ленте.
func (l *StoryList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.stories)
}

// Find ищет историю по storyId.
func (l *StoryList) Find(storyID string) (*Story, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := indexOf(l.stories, storyID); i >= 0 {
		return l.stories[i], true
	}

	return nil, false
}

// AddStory публикует историю от имени user. После ответа сервера каноническая
// история ставится в начало ленты и в начало user.OwnStories.
// При ошибке (api.ErrUnauthorized, api.ErrValidation, ...) ничего не меняется.
func (l *StoryList) AddStory(ctx context.Context, user *User, in StoryInput) (*Story, error) {
	const op = "models/storylist/AddStory"

	if user == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoUser)
	}

	rec, err := l.api.CreateStory(ctx, user.LoginToken, api.NewStory{
		Title:  in.Title,
		Author: in.Author,
		URL:    in.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	story := NewStory(rec)

	l.mu.Lock()
	l.stories = prepend(l.stories, story)
	l.mu.Unlock()

	user.prependOwn(story)

	return story, nil
}

// DeleteStory удаляет историю на сервере и, только после подтверждения,
// убирает её из ленты, из user.OwnStories и из user.Favorites — три независимых фильтра.
func (l *StoryList) DeleteStory(ctx context.Context, user *User, storyID string) error {
	const op = "models/storylist/DeleteStory"

	if user == nil {
		return fmt.Errorf("%s: %w", op, ErrNoUser)
	}

	if err := l.api.DeleteStory(ctx, user.LoginToken, storyID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	l.mu.Lock()
	l.stories = without(l.stories, storyID)
	l.mu.Unlock()

	user.dropStory(storyID)

	return nil
}
