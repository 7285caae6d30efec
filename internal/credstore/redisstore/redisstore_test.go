package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-token-service/internal/credstore"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewWithClient(rdb, "test:"), mr
}

func TestPutGet_RoundTrip(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "k", []byte("v1"), time.Minute))

	got, err := st.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	// Ключи изолируются префиксом.
	require.True(t, mr.Exists("test:k"))

	require.NoError(t, st.Put(ctx, "k", []byte("v2"), time.Minute))

	got, err = st.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)
}

func TestGet_Absent_NotFound(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.Get(context.Background(), "missing")
	require.Error(t, err)
	require.ErrorIs(t, err, credstore.ErrNotFound)
}

func TestTTL_Expiry(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "k", []byte("v"), time.Minute))

	mr.FastForward(59 * time.Second)
	_, err := st.Get(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	_, err = st.Get(ctx, "k")
	require.ErrorIs(t, err, credstore.ErrNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, st.Delete(ctx, "k"))
	require.NoError(t, st.Delete(ctx, "k"))

	_, err := st.Get(ctx, "k")
	require.ErrorIs(t, err, credstore.ErrNotFound)
}

func TestCompareAndDelete(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("match deletes", func(t *testing.T) {
		require.NoError(t, st.Put(ctx, "a", []byte("v"), time.Minute))

		ok, err := st.CompareAndDelete(ctx, "a", []byte("v"))
		require.NoError(t, err)
		require.True(t, ok)

		_, err = st.Get(ctx, "a")
		require.ErrorIs(t, err, credstore.ErrNotFound)
	})

	t.Run("mismatch keeps value", func(t *testing.T) {
		require.NoError(t, st.Put(ctx, "b", []byte("v"), time.Minute))

		ok, err := st.CompareAndDelete(ctx, "b", []byte("other"))
		require.NoError(t, err)
		require.False(t, ok)

		got, err := st.Get(ctx, "b")
		require.NoError(t, err)
		require.Equal(t, []byte("v"), got)
	})

	t.Run("absent key", func(t *testing.T) {
		ok, err := st.CompareAndDelete(ctx, "missing", []byte("v"))
		require.NoError(t, err)
		require.False(t, ok)
	})

	// Значение перезаписано после чтения: старое ожидание проигрывает.
	t.Run("stale expected", func(t *testing.T) {
		require.NoError(t, st.Put(ctx, "c", []byte("old"), time.Minute))
		require.NoError(t, st.Put(ctx, "c", []byte("new"), time.Minute))

		ok, err := st.CompareAndDelete(ctx, "c", []byte("old"))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("second attempt loses", func(t *testing.T) {
		require.NoError(t, st.Put(ctx, "d", []byte("v"), time.Minute))

		ok, err := st.CompareAndDelete(ctx, "d", []byte("v"))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = st.CompareAndDelete(ctx, "d", []byte("v"))
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestUnavailable_Surfaced(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "k", []byte("v"), time.Minute))

	mr.Close()

	err := st.Put(ctx, "k", []byte("v"), time.Minute)
	require.Error(t, err)
	require.ErrorIs(t, err, credstore.ErrUnavailable)

	_, err = st.Get(ctx, "k")
	require.Error(t, err)
	require.ErrorIs(t, err, credstore.ErrUnavailable)

	_, err = st.CompareAndDelete(ctx, "k", []byte("v"))
	require.Error(t, err)
	require.ErrorIs(t, err, credstore.ErrUnavailable)
}

func TestNew_BadURL(t *testing.T) {
	_, err := New("not-a-url", "")
	require.Error(t, err)
}
