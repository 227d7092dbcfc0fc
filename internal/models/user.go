package models

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pribylovaa/hack-or-snooze/internal/api"
)

// User — вошедший пользователь: профиль, токен и две коллекции историй.
// Коллекции — упорядоченные множества по storyId; доступ к ним только через методы.
type User struct {
	Username   string
	Name       string
	CreatedAt  time.Time
	LoginToken string

	api UsersAPI

	mu         sync.RWMutex
	favorites  []*Story
	ownStories []*Story
}

// NewUser строит пользователя из профиля API и токена.
func NewUser(rec api.UserRecord, token string, a UsersAPI) *User {
	return &User{
		Username:   rec.Username,
		Name:       rec.Name,
		CreatedAt:  rec.CreatedAt,
		LoginToken: token,
		api:        a,
		favorites:  fromRecords(rec.Favorites),
		ownStories: fromRecords(rec.Stories),
	}
}

// Signup регистрирует пользователя. Занятый username -> api.ErrConflict.
func Signup(ctx context.Context, a UsersAPI, username, password, name string) (*User, error) {
	const op = "models/user/Signup"

	rec, token, err := a.Signup(ctx, username, password, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewUser(rec, token, a), nil
}

// Login выполняет вход. Неверная пара -> api.ErrInvalidCredentials.
func Login(ctx context.Context, a UsersAPI, username, password string) (*User, error) {
	const op = "models/user/Login"

	rec, token, err := a.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewUser(rec, token, a), nil
}

// LoginViaStoredCredentials восстанавливает сессию по сохранённым token и username.
//
// Результат:
//   - (*User, nil) — токен принят;
//   - (nil, nil)   — API отверг токен или пользователя нет: «сессии нет», это не ошибка;
//   - (nil, err)   — сбой вызова (сеть/5xx), вызывающий решает сам, как его трактовать.
func LoginViaStoredCredentials(ctx context.Context, a UsersAPI, token, username string) (*User, error) {
	const op = "models/user/LoginViaStoredCredentials"

	if token == "" || username == "" {
		return nil, nil
	}

	rec, err := a.UserByName(ctx, token, username)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewUser(rec, token, a), nil
}

// Favorites возвращает снимок избранного.
func (u *User) Favorites() []*Story {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return snapshot(u.favorites)
}

// OwnStories возвращает снимок собственных историй.
func (u *User) OwnStories() []*Story {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return snapshot(u.ownStories)
}

// IsFavorite — true, если история с тем же storyId есть в избранном.
func (u *User) IsFavorite(story *Story) bool {
	if story == nil {
		return false
	}

	u.mu.RLock()
	defer u.mu.RUnlock()

	return indexOf(u.favorites, story.StoryID) >= 0
}

// IsOwn — true, если история с тем же storyId есть среди собственных.
func (u *User) IsOwn(story *Story) bool {
	if story == nil {
		return false
	}

	u.mu.RLock()
	defer u.mu.RUnlock()

	return indexOf(u.ownStories, story.StoryID) >= 0
}

// AddFavorite добавляет историю в избранное.
//
// Обновление оптимистичное: история попадает в локальное избранное до ответа API,
// при ошибке вызова добавление откатывается. Повторное добавление — no-op.
func (u *User) AddFavorite(ctx context.Context, story *Story) error {
	const op = "models/user/AddFavorite"

	if story == nil {
		return fmt.Errorf("%s: %w", op, ErrNoStory)
	}

	u.mu.Lock()
	if indexOf(u.favorites, story.StoryID) >= 0 {
		u.mu.Unlock()
		return nil
	}
	u.favorites = append(snapshot(u.favorites), story)
	u.mu.Unlock()

	if err := u.api.AddFavorite(ctx, u.LoginToken, u.Username, story.StoryID); err != nil {
		u.mu.Lock()
		u.favorites = without(u.favorites, story.StoryID)
		u.mu.Unlock()

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RemoveFavorite убирает историю из избранного.
// Обновление оптимистичное; при ошибке вызова история возвращается на прежнюю позицию.
func (u *User) RemoveFavorite(ctx context.Context, story *Story) error {
	const op = "models/user/RemoveFavorite"

	if story == nil {
		return fmt.Errorf("%s: %w", op, ErrNoStory)
	}

	u.mu.Lock()
	idx := indexOf(u.favorites, story.StoryID)
	var removed *Story
	if idx >= 0 {
		removed = u.favorites[idx]
		u.favorites = without(u.favorites, story.StoryID)
	}
	u.mu.Unlock()

	if err := u.api.RemoveFavorite(ctx, u.LoginToken, u.Username, story.StoryID); err != nil {
		if removed != nil {
			u.mu.Lock()
			u.favorites = insertAt(u.favorites, idx, removed)
			u.mu.Unlock()
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// prependOwn и dropStory вызываются StoryList после подтверждения сервером.
func (u *User) prependOwn(story *Story) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.ownStories = prepend(u.ownStories, story)
}

func (u *User) dropStory(storyID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.ownStories = without(u.ownStories, storyID)
	u.favorites = without(u.favorites, storyID)
}

// insertAt вставляет story на позицию idx (с ограничением по длине), если её ещё нет.
func insertAt(stories []*Story, idx int, story *Story) []*Story {
	if indexOf(stories, story.StoryID) >= 0 {
		return stories
	}

	if idx > len(stories) {
		idx = len(stories)
	}

	out := make([]*Story, 0, len(stories)+1)
	out = append(out, stories[:idx]...)
	out = append(out, story)
	return append(out, stories[idx:]...)
}
