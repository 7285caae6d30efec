// storage задаёт контракт хранилища пользователей — внешнего коллаборатора,
// к которому сервис обращается только при регистрации и логине. В путях
// проверки и ротации токенов обращений к нему нет.
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-token-service/internal/models"
)

var (
	// ErrNotFound — пользователь не найден.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByUsername находит пользователя по имени.
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	Close()
}
