// session — состояние одной браузерной сессии: вошедший пользователь,
// текущая лента и гейт повторных мутаций.
//
// Сессия передаётся обработчикам через context.Context (Into/From), глобального
// «текущего пользователя» нет.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/hack-or-snooze/internal/models"
)

type ctxKey struct{}

// Session — состояние одного браузера. Безопасна для конкурентного использования.
type Session struct {
	ID string

	mu   sync.RWMutex
	user *models.User
	feed *models.StoryList

	inflight singleflight.Group
}

// New создаёт сессию со свежим идентификатором; user может быть nil (аноним).
func New(user *models.User) *Session {
	return &Session{ID: uuid.NewString(), user: user}
}

// User — вошедший пользователь или nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.user
}

// SetUser заменяет пользователя (nil — выход).
func (s *Session) SetUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = u
}

// Feed — лента, загруженная последней, или nil.
func (s *Session) Feed() *models.StoryList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.feed
}

// SetFeed заменяет текущую ленту.
func (s *Session) SetFeed(l *models.StoryList) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feed = l
}

// Do выполняет fn не более одного раза для одновременных вызовов с одинаковым key.
// Опоздавшие вызовы ждут и получают тот же результат; shared сообщает, что результат общий.
func (s *Session) Do(key string, fn func() error) (shared bool, err error) {
	_, err, shared = s.inflight.Do(key, func() (any, error) {
		return nil, fn()
	})

	return shared, err
}

// Into кладёт сессию в контекст.
func Into(ctx context.Context, s *Session) context.Context {
	if s == nil {
		return ctx
	}

	return context.WithValue(ctx, ctxKey{}, s)
}

// From достаёт сессию из контекста; nil, если её нет.
func From(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}

	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
