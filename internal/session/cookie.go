package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pribylovaa/hack-or-snooze/internal/models"
)

// ErrNoCookie — запрос пришёл без cookie сессии.
var ErrNoCookie = errors.New("no session cookie")

// Manager связывает кодек, хранилище и параметры cookie.
type Manager struct {
	Codec      *Codec
	Store      *Store
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Read достаёт и проверяет cookie сессии.
// Нет cookie -> ErrNoCookie, подделка/истечение -> ErrInvalidCookie.
func (m *Manager) Read(r *http.Request) (Claims, error) {
	const op = "session/cookie/Read"

	c, err := r.Cookie(m.CookieName)
	if err != nil || c.Value == "" {
		return Claims{}, fmt.Errorf("%s: %w", op, ErrNoCookie)
	}

	claims, err := m.Codec.Decode(c.Value)
	if err != nil {
		return Claims{}, fmt.Errorf("%s: %w", op, err)
	}

	return claims, nil
}

// Write выставляет cookie для сессии s. Если в сессии есть пользователь,
// cookie несёт его username и токен — по ним сессия восстанавливается после рестарта.
func (m *Manager) Write(w http.ResponseWriter, s *Session) error {
	const op = "session/cookie/Write"

	var username, token string
	if u := s.User(); u != nil {
		username, token = u.Username, u.LoginToken
	}

	value, err := m.Codec.Encode(s.ID, username, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	http.SetCookie(w, m.cookie(value, int(m.TTL/time.Second)))
	return nil
}

// Refresh перевыпускает cookie живой сессии, когда срок по claims подходит к концу:
// хранилище продлевает сессию при каждом обращении, и cookie должна продлеваться вместе с ней.
// Возвращает true, если cookie записана.
func (m *Manager) Refresh(w http.ResponseWriter, s *Session, claims Claims) (bool, error) {
	if !m.Codec.NeedsRefresh(claims) {
		return false, nil
	}

	if err := m.Write(w, s); err != nil {
		return false, err
	}

	return true, nil
}

// Clear удаляет cookie на стороне браузера.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1))
}

// Start создаёт сессию для user, кладёт её в хранилище и выставляет cookie.
// Предыдущая сессия prev (если есть) удаляется: идентификатор меняется при каждом входе и выходе.
func (m *Manager) Start(w http.ResponseWriter, prev *Session, user *models.User) (*Session, error) {
	if prev != nil {
		m.Store.Delete(prev.ID)
	}

	s := New(user)
	m.Store.Put(s)

	if err := m.Write(w, s); err != nil {
		m.Store.Delete(s.ID)
		return nil, err
	}

	return s, nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
