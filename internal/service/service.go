// service содержит бизнес-логику token-сервиса: регистрацию/аутентификацию
// пользователей и жизненный цикл пары учётных данных — выпуск, проверку,
// атомарную ротацию и отзыв.
//
// Основные аспекты:
//   - Экземпляр Service не хранит состояние между вызовами (никакого
//     внутрипроцессного кэша токенов): единственный источник истины —
//     переданное хранилище credstore.Store, поэтому Service безопасен для
//     конкурентного использования и горизонтального масштабирования.
//   - Ошибки возвращаются наружу и далее маппятся транспортом на
//     HTTP-статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/go-token-service/internal/config"
	"github.com/pribylovaa/go-token-service/internal/credstore"
	"github.com/pribylovaa/go-token-service/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Транспорт: 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsernameTaken — имя пользователя уже занято.
	// Транспорт: 409.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidUsername — имя пользователя не проходит политику валидации.
	// Транспорт: 400.
	ErrInvalidUsername = errors.New("invalid username format")

	// ErrWeakPassword — пароль не удовлетворяет политикам сложности.
	// Транспорт: 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой.
	// Транспорт: 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrInvalidRefresh — refresh-токен отсутствует в хранилище или просрочен.
	// Сессия мертва, клиент обязан аутентифицироваться заново. Транспорт: 401.
	ErrInvalidRefresh = errors.New("invalid refresh token")

	// ErrTokenMismatch — предъявленные access-токен/имя пользователя не
	// совпадают с записью предъявленного refresh-токена. Возможный replay
	// или подделка; наружу деталь несоответствия не раскрывается.
	// Транспорт: 403.
	ErrTokenMismatch = errors.New("token mismatch")

	// ErrConcurrentRotation — проигрыш гонки конкурентной ротации: пару уже
	// ротировал другой вызов. Повтор с теми же учётными данными запрещён.
	// Транспорт: 409.
	ErrConcurrentRotation = errors.New("concurrent rotation")
)

// Service описывает бизнес-логику token-сервиса.
type Service struct {
	users storage.UserStorage
	creds credstore.Store
	cfg   config.AuthConfig
}

// New создаёт новый экземпляр Service.
func New(users storage.UserStorage, creds credstore.Store, cfg config.AuthConfig) *Service {
	return &Service{
		users: users,
		creds: creds,
		cfg:   cfg,
	}
}
