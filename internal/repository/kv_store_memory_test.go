package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *MemoryKVStore {
	t.Helper()
	s := NewMemoryKVStore(0, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func TestMemoryKVStoreSetGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)

	exists, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, s.Delete(ctx, "k"))
	val, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, val)
}

func TestMemoryKVStoreMissingKeyIsAbsent(t *testing.T) {
	s := newTestStore(t)

	val, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, val)

	exists, err := s.Exists(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestMemoryKVStoreTTLExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 30*time.Millisecond))

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)

	time.Sleep(50 * time.Millisecond)

	val, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, val, "expired entry must read as absent")

	exists, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestMemoryKVStoreSetWithoutTTLNeverExpires(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	time.Sleep(30 * time.Millisecond)

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)
}

func TestMemoryKVStoreIncrBy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, expiresAt, err := s.IncrBy(ctx, "counter", 1, time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.False(t, expiresAt.IsZero())

	// Second increment keeps the original expiry.
	count, expiresAt2, err := s.IncrBy(ctx, "counter", 1, time.Hour)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
	require.Equal(t, expiresAt, expiresAt2)
}

func TestMemoryKVStoreIncrByExpiredCounterRestarts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.IncrBy(ctx, "counter", 1, 20*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	count, _, err := s.IncrBy(ctx, "counter", 1, time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "expired counter must restart from zero")
}

func TestMemoryKVStoreIncrByConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _, err := s.IncrBy(ctx, "counter", 1, time.Minute)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	count, _, err := s.IncrBy(ctx, "counter", 0, time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(workers), count, "concurrent increments must not lose updates")
}

func TestMemoryKVStoreSweepPurgesExpired(t *testing.T) {
	s := NewMemoryKVStore(0, zap.NewNop())
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	require.NoError(t, s.Set(ctx, "long", []byte("v"), time.Hour))
	time.Sleep(20 * time.Millisecond)

	s.sweep(time.Now())

	s.mu.Lock()
	_, shortOK := s.entries["short"]
	_, longOK := s.entries["long"]
	s.mu.Unlock()
	require.False(t, shortOK, "sweep must remove expired rows")
	require.True(t, longOK)
}
