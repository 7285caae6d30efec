package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-token-service/internal/credstore"
)

func TestPutGet_RoundTrip(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "k", []byte("v1"), time.Minute))

	got, err := st.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	// Перезапись заменяет значение целиком.
	require.NoError(t, st.Put(ctx, "k", []byte("v2"), time.Minute))

	got, err = st.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)
}

func TestGet_Absent_NotFound(t *testing.T) {
	t.Parallel()

	st := New()

	_, err := st.Get(context.Background(), "missing")
	require.Error(t, err)
	require.ErrorIs(t, err, credstore.ErrNotFound)
}

// Возвращаемое значение — копия: мутация у вызывающего не портит хранилище.
func TestGet_ReturnsCopy(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "k", []byte("value"), time.Minute))

	got, err := st.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := st.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), again)
}

func TestTTL_Expiry(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()

	cur := time.Now()
	st.SetClock(func() time.Time { return cur })

	require.NoError(t, st.Put(ctx, "k", []byte("v"), time.Minute))

	cur = cur.Add(59 * time.Second)
	_, err := st.Get(ctx, "k")
	require.NoError(t, err)

	// TTL фиксируется при записи; чтение его не продлевает.
	cur = cur.Add(2 * time.Second)
	_, err = st.Get(ctx, "k")
	require.ErrorIs(t, err, credstore.ErrNotFound)
}

func TestPut_NonPositiveTTL_ExpiresImmediately(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "k", []byte("v"), 0))

	_, err := st.Get(ctx, "k")
	require.ErrorIs(t, err, credstore.ErrNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, st.Delete(ctx, "k"))
	require.NoError(t, st.Delete(ctx, "k"))

	_, err := st.Get(ctx, "k")
	require.ErrorIs(t, err, credstore.ErrNotFound)
}

func TestCompareAndDelete(t *testing.T) {
	t.Parallel()

	st := New()
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

	t.Run("second attempt loses", func(t *testing.T) {
		require.NoError(t, st.Put(ctx, "c", []byte("v"), time.Minute))

		ok, err := st.CompareAndDelete(ctx, "c", []byte("v"))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = st.CompareAndDelete(ctx, "c", []byte("v"))
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestCompareAndDelete_Expired_Loses(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()

	cur := time.Now()
	st.SetClock(func() time.Time { return cur })

	require.NoError(t, st.Put(ctx, "k", []byte("v"), time.Minute))
	cur = cur.Add(2 * time.Minute)

	ok, err := st.CompareAndDelete(ctx, "k", []byte("v"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	st := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, st.Put(ctx, "k", []byte("v"), time.Minute))

	_, err := st.Get(ctx, "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, credstore.ErrNotFound)

	require.Error(t, st.Delete(ctx, "k"))

	_, err = st.CompareAndDelete(ctx, "k", []byte("v"))
	require.Error(t, err)
}
