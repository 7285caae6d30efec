// apierrors стандартизирует ответы об ошибках HTTP-слоя.
// На вход — ошибка доменного слоя (сентинелы пакетов service/credstore),
// на выход — корректный HTTP-статус и краткое безопасное message без
// утечки деталей.
//
// Маппинг ошибок ротации намеренно даёт три различимых 4xx:
// невалидный refresh -> 401, несовпадение пары -> 403, проигрыш гонки -> 409.
package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-token-service/internal/credstore"
	"github.com/pribylovaa/go-token-service/internal/service"
)

// APIError — единый формат для клиента.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal, чтобы не
//     замаскировать баг ответом "200 OK";
//   - известные сентинелы маппятся по таблице ниже;
//   - прочее -> 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := base(err)

	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id, чтобы клиент мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteInvalidArgument — хелпер для ошибок разбора входного JSON.
func WriteInvalidArgument(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, errInvalidArgument)
}

// WriteInternal — нейтральный 500 (используется Recover-мидлваром).
func WriteInternal(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, errors.New("internal"))
}

var errInvalidArgument = errors.New("invalid argument")

// base — таблица маппинга доменных ошибок на HTTP/код/сообщение:
//   - битый вход -> 400
//   - неверные логин/пароль, невалидный refresh -> 401
//   - несовпадение предъявленной пары -> 403 (деталь не раскрывается)
//   - занятое имя, проигрыш гонки ротации -> 409
//   - недоступность хранилища -> 503
//   - дедлайн запроса -> 504
//   - прочее -> 500/internal
func base(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case errors.Is(err, errInvalidArgument),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrEmptyPassword):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefresh):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case errors.Is(err, service.ErrTokenMismatch):
		return http.StatusForbidden, "forbidden", "forbidden"
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, "already_exists", "already exists"
	case errors.Is(err, service.ErrConcurrentRotation):
		return http.StatusConflict, "conflict", "concurrent rotation"
	case errors.Is(err, credstore.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable", "service unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
