package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork — транспортный сбой: соединение, DNS, таймаут, нечитаемый ответ.
	// HTTP-слой: 502 (или 504 при истёкшем дедлайне).
	ErrNetwork = errors.New("network error")

	// ErrServer — не-2xx ответ, не попавший ни в одну из категорий ниже. HTTP-слой: 502.
	ErrServer = errors.New("server error")

	// ErrUnauthorized — 401 на операции с токеном (токен некорректен или истёк). HTTP-слой: 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials — 401 или 404 на логине: неверный пароль или неизвестный username. HTTP-слой: 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict — 409: username уже занят (signup). HTTP-слой: 409.
	ErrConflict = errors.New("conflict")

	// ErrValidation — прочие 4xx на операциях записи: сервер отверг поля. HTTP-слой: 400.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound — 404: история или пользователь не найдены. HTTP-слой: 404.
	ErrNotFound = errors.New("not found")
)

// Error — структурированная ошибка вызова API.
// Kind — одна из sentinel-ошибок пакета, доступна через errors.Is.
type Error struct {
	Op      string
	Status  int
	Message string
	Kind    error
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return e.Op + ": " + msg
}

// Is сравнивает с Kind; причина доступна через Unwrap.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// opKind — класс операции, от которого зависит трактовка статуса.
type opKind int

const (
	opRead opKind = iota
	opWrite
	opLogin
	opSignup
)

// classify — чистая функция (класс операции, статус) -> sentinel.
func classify(kind opKind, status int) error {
	switch {
	case status == http.StatusUnauthorized && kind == opLogin:
		return ErrInvalidCredentials
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusNotFound && kind == opLogin:
		// Неизвестный username при входе — та же ошибка учётных данных, что и неверный пароль.
		return ErrInvalidCredentials
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status >= 400 && status < 500 && kind != opRead:
		return ErrValidation
	default:
		return ErrServer
	}
}
