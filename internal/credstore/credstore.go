// credstore задаёт контракт внешнего key-value хранилища учётных данных
// с потайм-аутным истечением ключей (TTL) и атомарными примитивами.
//
// Хранилище — единственный источник истины о действующих токенах и
// единственный разделяемый мутируемый ресурс сервиса: вся координация
// конкурентных ротаций выполняется через CompareAndDelete, без
// внутрипроцессных блокировок. Сервисный слой сам конструирует ключи
// (префиксы по типу токена) и выбирает TTL равным остатку времени до
// истечения соответствующего токена.
package credstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound — ключ отсутствует: никогда не записывался либо истёк по TTL.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable — хранилище недоступно или не ответило в срок.
	// Фатальна для текущего запроса; наверх уходит как серверная ошибка,
	// без повторов со stale-данными.
	ErrUnavailable = errors.New("store unavailable")
)

// Store — контракт хранилища учётных данных.
//
// Все операции работают в едином плоском пространстве ключей и являются
// единственными блокирующими точками сервиса; контекст обязан нести
// дедлайн запроса.
type Store interface {
	// Put сохраняет значение по ключу с заданным TTL,
	// перезаписывая существующее значение.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get возвращает значение по ключу; ErrNotFound, если ключа нет
	// или TTL истёк.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete удаляет ключ; повторное удаление — не ошибка.
	Delete(ctx context.Context, key string) error
	// CompareAndDelete атомарно удаляет ключ, только если текущее значение
	// байт-в-байт совпадает с ожидаемым. Возвращает, произошло ли удаление.
	CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error)
	// Close освобождает ресурсы клиента.
	Close() error
}
