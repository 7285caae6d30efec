// redisstore — реализация credstore.Store поверх Redis.
//
// CompareAndDelete выполняется Lua-скриптом: GET, сравнение и DEL в одном
// атомарном шаге на стороне сервера. Это ровно тот примитив, которым
// разрешаются гонки конкурентных ротаций: значение успевает прочитать и
// удалить ровно один вызывающий.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-token-service/internal/credstore"
)

const compareAndDeleteScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var compareAndDeleteLua = redis.NewScript(compareAndDeleteScript)

// Store — клиент Redis, реализующий credstore.Store.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "ts:".
func New(redisURL, prefix string) (*Store, error) {
	const op = "credstore.redisstore.New"

	if prefix == "" {
		prefix = "ts:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w: %w", op, credstore.ErrUnavailable, err)
	}

	return &Store{rdb: rdb, prefix: prefix}, nil
}

// NewWithClient оборачивает готовый клиент (используется в тестах с miniredis).
func NewWithClient(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "ts:"
	}

	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(k string) string { return s.prefix + k }

// Put сохраняет значение с TTL через SET EX.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const op = "credstore.redisstore.Put"

	if err := s.rdb.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, credstore.ErrUnavailable, err)
	}

	return nil
}

// Get возвращает значение или credstore.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "credstore.redisstore.Get"

	v, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, credstore.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w: %w", op, credstore.ErrUnavailable, err)
	}

	return v, nil
}

// Delete удаляет ключ; идемпотентна.
func (s *Store) Delete(ctx context.Context, key string) error {
	const op = "credstore.redisstore.Delete"

	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, credstore.ErrUnavailable, err)
	}

	return nil
}

// CompareAndDelete атомарно удаляет ключ при совпадении значения.
func (s *Store) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	const op = "credstore.redisstore.CompareAndDelete"

	res, err := compareAndDeleteLua.Run(ctx, s.rdb, []string{s.key(key)}, expected).Int64()
	if err != nil {
		return false, fmt.Errorf("%s: %w: %w", op, credstore.ErrUnavailable, err)
	}

	return res == 1, nil
}

// Close закрывает клиент Redis.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Проверка на соответствие интерфейсу Store.
var _ credstore.Store = (*Store)(nil)
