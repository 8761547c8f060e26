package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBigCache(t *testing.T) (*BigCacheRegistry, *testClock) {
	t.Helper()
	clock := newTestClock()
	r, err := NewBigCacheRegistry(context.Background(), 1024, WithBigCacheClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, clock
}

func TestBigCacheRegistry_Lifecycle(t *testing.T) {
	r, _ := newTestBigCache(t)
	ctx := context.Background()

	pending, err := r.IsPending(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, pending)

	require.NoError(t, r.Register(ctx, "token-a", time.Minute))

	pending, err = r.IsPending(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, pending)

	claimed, err := r.Retire(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = r.Retire(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, claimed)

	pending, err = r.IsPending(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestBigCacheRegistry_ExpiredBeforeSweep(t *testing.T) {
	r, clock := newTestBigCache(t)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "token-a", time.Minute))
	clock.Advance(time.Minute)

	pending, err := r.IsPending(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, pending)

	claimed, err := r.Retire(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestBigCacheRegistry_NonPositiveTTL(t *testing.T) {
	r, _ := newTestBigCache(t)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "token-a", 0))

	pending, err := r.IsPending(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestBigCacheRegistry_SweepAndLen(t *testing.T) {
	r, clock := newTestBigCache(t)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "short-1", 30*time.Second))
	require.NoError(t, r.Register(ctx, "short-2", 30*time.Second))
	require.NoError(t, r.Register(ctx, "long", 5*time.Minute))

	n, err := r.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	clock.Advance(time.Minute)

	n, err = r.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	removed, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	pending, err := r.IsPending(ctx, "long")
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestBigCacheRegistry_ConcurrentRetire(t *testing.T) {
	r, _ := newTestBigCache(t)
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		raw := "token-" + time.Duration(round).String()
		require.NoError(t, r.Register(ctx, raw, time.Minute))

		var wins int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				claimed, err := r.Retire(ctx, raw)
				assert.NoError(t, err)
				if claimed {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), wins, "round %d", round)
	}
}

func TestBigCacheRegistry_RestoreAfterRetire(t *testing.T) {
	r, clock := newTestBigCache(t)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "token-a", time.Minute))
	claimed, err := r.Retire(ctx, "token-a")
	require.NoError(t, err)
	require.True(t, claimed)

	// 残り時間で再登録すると再び取得できる
	require.NoError(t, r.Register(ctx, "token-a", 20*time.Second))
	pending, err := r.IsPending(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, pending)

	clock.Advance(20 * time.Second)
	pending, err = r.IsPending(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, pending)
}
