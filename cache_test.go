package bucketfront_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sagarc03/bucketfront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	c := bucketfront.NewCache[string, int](time.Minute, 10)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v, "set replaces existing entry")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, time.Minute, c.TTL())
}

func TestCache_Expiry(t *testing.T) {
	c := bucketfront.NewCache[string, string](20*time.Millisecond, 10)
	c.Set("k", "v")

	_, ok := c.Get("k")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 5*time.Millisecond, "expired entries are never returned")
}

func TestCache_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c := bucketfront.NewCache[string, int](time.Minute, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestCache_GetOrCompute(t *testing.T) {
	c := bucketfront.NewCache[string, int](time.Minute, 10)

	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls, "hit does not recompute")
}

func TestCache_GetOrComputeErrorNotCached(t *testing.T) {
	c := bucketfront.NewCache[string, int](time.Minute, 10)
	boom := errors.New("boom")

	_, err := c.GetOrCompute("k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	_, ok := c.Get("k")
	assert.False(t, ok)

	v, err := c.GetOrCompute("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCache_Stats(t *testing.T) {
	c := bucketfront.NewCache[string, int](time.Minute, 10)

	c.Set("a", 1)
	_, _ = c.Get("a")
	_, _ = c.Get("b")

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, uint64(1), stats.Insertions)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestCache_Concurrent(t *testing.T) {
	c := bucketfront.NewCache[string, int](time.Minute, 64)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", (i*j)%100)
				c.Set(key, j)
				_, _ = c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}

func TestCache_RunStopsOnCancel(t *testing.T) {
	c := bucketfront.NewCache[string, int](10*time.Millisecond, 10)
	c.Set("a", 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
