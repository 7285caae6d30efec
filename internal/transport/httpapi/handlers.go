// httpapi содержит REST-эндпоинты token-сервиса. Здесь выполняется только
// разбор входа и маппинг данных/ошибок доменного слоя (service) в HTTP.
// Вся валидация и бизнес-логика находятся в пакете service.
//
// Принципы:
//   - Контекст запроса прокидывается в сервис без потерь;
//   - Ошибки сервиса транслируются в статусы через пакет apierrors;
//   - Validate при невалидном/просроченном токене НЕ возвращает ошибку,
//     а отдаёт {"valid": false} (контракт эндпоинта);
//   - Для 5xx наружу не утекают детали внутренних ошибок; подробности
//     попадают в логи через мидлвары.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/go-token-service/internal/service"
	"github.com/pribylovaa/go-token-service/internal/transport/httpapi/apierrors"
)

// Handlers агрегирует зависимости эндпоинтов.
type Handlers struct {
	service *service.Service
}

func NewHandlers(s *service.Service) *Handlers {
	return &Handlers{service: s}
}

// Register регистрирует пользователя и возвращает пару учётных данных.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteInvalidArgument(w, r)
		return
	}

	pair, err := h.service.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, credentialsResponse{
		Token:    pair.AccessToken,
		RefToken: pair.RefreshToken,
		Username: pair.Username,
	})
}

// Login аутентифицирует пользователя и возвращает новую пару.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteInvalidArgument(w, r)
		return
	}

	pair, err := h.service.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, credentialsResponse{
		Token:    pair.AccessToken,
		RefToken: pair.RefreshToken,
		Username: pair.Username,
	})
}

// Refresh ротирует пару: инвалидирует предъявленную и выпускает новую.
// Каждая ошибка ротации уходит своим 4xx (401/403/409, см. apierrors).
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteInvalidArgument(w, r)
		return
	}

	pair, err := h.service.Rotate(r.Context(), in.Token, in.RefToken, in.Username)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, credentialsResponse{
		Token:    pair.AccessToken,
		RefToken: pair.RefreshToken,
		Username: pair.Username,
	})
}

// Validate проверяет access-токен.
// Контракт: невалидный токен — не ошибка, а {"valid": false}.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	var in validateRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteInvalidArgument(w, r)
		return
	}

	res, err := h.service.Verify(r.Context(), in.Token)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Valid:    res.Valid,
		Username: res.Username,
	})
}

// Revoke отзывает пару по refresh-токену (logout).
func (h *Handlers) Revoke(w http.ResponseWriter, r *http.Request) {
	var in revokeRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteInvalidArgument(w, r)
		return
	}

	if err := h.service.Revoke(r.Context(), in.RefToken); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, revokeResponse{Ok: true})
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
