// errors стандартизирует ответы об ошибках HTTP-слоя storyweb.
// На вход принимает ошибку модели или API-клиента (api.Err*, models.Err*,
// context.*), а на выход даёт:
//   - корректный HTTP-статус;
//   - короткий стабильный код и безопасное сообщение, пригодное для показа на странице.
//
// Источник истинности по классификации: пакет internal/api.
package errors

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/pribylovaa/hack-or-snooze/internal/api"
	"github.com/pribylovaa/hack-or-snooze/internal/models"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// Сообщения пользователю для ошибок входа и регистрации.
const (
	MsgAlreadyRegistered  = "User has already been registered."
	MsgInvalidCredentials = "Users credentials invalid."
)

// APIError — безопасное описание ошибки для страницы.
type APIError struct {
	Code      string
	Message   string
	RequestID string
}

// ErrorResponse — корневой объект ответа.
type ErrorResponse struct {
	Status int
	Error  APIError
}

// ToHTTP конвертирует ошибку в HTTP-статус и безопасный ответ.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500/internal;
//   - контекст: Canceled -> 499, DeadlineExceeded -> 504;
//   - api.Err* и models.Err* маппятся через baseFromKind();
//   - прочее -> 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := baseFromKind(err)

	return status, ErrorResponse{
		Status: status,
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// baseFromKind — таблица error kind -> HTTP/код/сообщение:
//   - ErrValidation -> 400
//   - ErrInvalidCredentials -> 401 (неверная пара username/password)
//   - ErrUnauthorized, models.ErrNoUser -> 401
//   - ErrNotFound, models.ErrNoStory -> 404
//   - ErrConflict -> 409 (username занят)
//   - ErrNetwork, ErrServer -> 502 (апстрим недоступен или ответил 5xx)
//   - context.Canceled -> 499
//   - context.DeadlineExceeded -> 504
func baseFromKind(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case errors.Is(err, api.ErrValidation):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, api.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", MsgInvalidCredentials
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, models.ErrNoUser):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case errors.Is(err, api.ErrNotFound), errors.Is(err, models.ErrNoStory):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, api.ErrConflict):
		return http.StatusConflict, "already_exists", MsgAlreadyRegistered
	case errors.Is(err, api.ErrNetwork), errors.Is(err, api.ErrServer):
		return http.StatusBadGateway, "unavailable", "story service unavailable"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

var page = template.Must(template.New("error").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Status}} {{.Error.Code}}</title></head>
<body>
<main>
<p class="error" data-code="{{.Error.Code}}">{{.Error.Message}}</p>
{{- if .Error.RequestID}}
<p class="request-id">request id: <code>{{.Error.RequestID}}</code></p>
{{- end}}
<p><a href="/">Back to stories</a></p>
</main>
</body>
</html>
`))

// WriteError — хелпер для HTTP-хендлеров.
// Пишет статус и минимальную HTML-страницу, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = page.Execute(w, resp)
}
