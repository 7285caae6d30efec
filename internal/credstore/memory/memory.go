// memory — внутрипроцессная реализация credstore.Store: мьютекс поверх map
// с ленивой проверкой истечения. Используется в unit-тестах сервисного слоя
// и в окружении local, где поднимать Redis избыточно.
package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/pribylovaa/go-token-service/internal/credstore"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store — потокобезопасное in-memory хранилище с TTL.
type Store struct {
	mu sync.Mutex
	m  map[string]entry

	// now подменяется в тестах для симуляции хода часов.
	now func() time.Time
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		m:   make(map[string]entry),
		now: time.Now,
	}
}

// SetClock подменяет источник времени (для тестов).
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Put сохраняет значение с TTL; существующее значение перезаписывается.
// Неположительный TTL означает, что запись истекла сразу.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)

	s.m[key] = entry{
		value:     v,
		expiresAt: s.now().Add(ttl),
	}

	return nil
}

// Get возвращает значение или credstore.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.m, key)
		return nil, credstore.ErrNotFound
	}

	v := make([]byte, len(e.value))
	copy(v, e.value)

	return v, nil
}

// Delete удаляет ключ; идемпотентна.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, key)

	return nil
}

// CompareAndDelete удаляет ключ, только если текущее значение совпадает
// с ожидаемым; истёкший ключ считается отсутствующим.
func (s *Store) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.m, key)
		return false, nil
	}

	if !bytes.Equal(e.value, expected) {
		return false, nil
	}

	delete(s.m, key)

	return true, nil
}

// Close — no-op, для симметрии с клиентскими реализациями.
func (s *Store) Close() error { return nil }

// Проверка на соответствие интерфейсу Store.
var _ credstore.Store = (*Store)(nil)
