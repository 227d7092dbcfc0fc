package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "storyweb"

var (
	// ErrInvalidCookie — cookie подделана, повреждена или истекла. Сессия считается анонимной.
	ErrInvalidCookie = errors.New("invalid session cookie")
	// ErrEmptySecret — не задан ключ подписи cookie.
	ErrEmptySecret = errors.New("empty session secret")
)

// Claims — содержимое cookie сессии. Username/Token пусты у анонимной сессии.
type Claims struct {
	SessionID string `json:"sid"`
	Username  string `json:"username,omitempty"`
	Token     string `json:"token,omitempty"`
	jwt.RegisteredClaims
}

// Codec подписывает и проверяет cookie сессии (HS256).
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option настраивает Codec и Store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock подменяет источник времени (сроки cookie и сессий).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// NewCodec создаёт кодек. ttl <= 0 — cookie без срока действия.
func NewCodec(secret string, ttl time.Duration, opts ...Option) (*Codec, error) {
	const op = "session/codec/NewCodec"

	if secret == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	return &Codec{secret: []byte(secret), ttl: ttl, now: buildOptions(opts).now}, nil
}

// NeedsRefresh — true, если до истечения cookie осталось не больше половины ttl.
// Cookie без срока (ttl <= 0) не перевыпускается.
func (c *Codec) NeedsRefresh(claims Claims) bool {
	if c.ttl <= 0 || claims.ExpiresAt == nil {
		return false
	}

	return claims.ExpiresAt.Time.Sub(c.now()) <= c.ttl/2
}

// Encode подписывает cookie для сессии sid и сохранённых учётных данных.
func (c *Codec) Encode(sid, username, token string) (string, error) {
	const op = "session/codec/Encode"

	now := c.now().UTC()

	claims := Claims{
		SessionID: sid,
		Username:  username,
		Token:     token,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   issuer,
			Subject:  sid,
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Decode проверяет подпись и срок cookie. Любая проблема -> ErrInvalidCookie.
func (c *Codec) Decode(raw string) (Claims, error) {
	const op = "session/codec/Decode"

	var claims Claims

	token, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(c.now),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%s: %w: %v", op, ErrInvalidCookie, err)
	}

	if !token.Valid || claims.SessionID == "" {
		return Claims{}, fmt.Errorf("%s: %w", op, ErrInvalidCookie)
	}

	return claims, nil
}
