package failmem

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced manually by tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMarkAndExpire(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))

	assert.False(t, s.IsDisabled("baidu-proxy", "tab-a"))

	s.MarkDisabled("baidu-proxy", "tab-a")
	assert.True(t, s.IsDisabled("baidu-proxy", "tab-a"))
	assert.False(t, s.IsDisabled("baidu-proxy", "tab-b"), "scopes are independent")
	assert.False(t, s.IsDisabled("mymemory", "tab-a"), "providers are independent")

	clock.Advance(3 * time.Hour)
	assert.True(t, s.IsDisabled("baidu-proxy", "tab-a"), "exactly TTL old still blocks")

	clock.Advance(time.Second)
	assert.False(t, s.IsDisabled("baidu-proxy", "tab-a"))
	assert.Equal(t, 0, s.Len(), "expired entry is removed by the read")
}

func TestMarkRefreshesTimestamp(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now), WithTTL(time.Hour))

	s.MarkDisabled("baidu-proxy", "")
	clock.Advance(50 * time.Minute)
	s.MarkDisabled("baidu-proxy", "")
	clock.Advance(50 * time.Minute)

	assert.True(t, s.IsDisabled("baidu-proxy", ""))
	assert.Equal(t, 1, s.Len(), "one entry per pair")
}

func TestMarkSweepsExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))

	s.MarkDisabled("baidu-proxy", "tab-a")
	s.MarkDisabled("baidu-proxy", "tab-b")
	require.Equal(t, 2, s.Len())

	clock.Advance(4 * time.Hour)
	assert.Equal(t, 2, s.Len(), "no sweep without a write")

	s.MarkDisabled("google", "tab-c")
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.IsDisabled("google", "tab-c"))
}

func TestForgetScope(t *testing.T) {
	s := New()
	s.MarkDisabled("baidu-proxy", "tab-a")
	s.MarkDisabled("google", "tab-a")
	s.MarkDisabled("baidu-proxy", "tab-b")

	assert.Equal(t, 2, s.ForgetScope("tab-a"))
	assert.False(t, s.IsDisabled("baidu-proxy", "tab-a"))
	assert.True(t, s.IsDisabled("baidu-proxy", "tab-b"))
	assert.Equal(t, 0, s.ForgetScope("tab-a"))
}

func TestMaxEntriesEvictsOldest(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now), WithMaxEntries(2))

	s.MarkDisabled("baidu-proxy", "tab-1")
	clock.Advance(time.Minute)
	s.MarkDisabled("baidu-proxy", "tab-2")
	clock.Advance(time.Minute)
	s.MarkDisabled("baidu-proxy", "tab-3")

	assert.Equal(t, 2, s.Len())
	assert.False(t, s.IsDisabled("baidu-proxy", "tab-1"))
	assert.True(t, s.IsDisabled("baidu-proxy", "tab-2"))
	assert.True(t, s.IsDisabled("baidu-proxy", "tab-3"))

	// Refreshing an existing pair at the bound does not evict.
	s.MarkDisabled("baidu-proxy", "tab-2")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.IsDisabled("baidu-proxy", "tab-3"))
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	s := New(WithTTL(0), WithMaxEntries(-1), WithClock(nil))
	assert.Equal(t, DefaultTTL, s.TTL())
	assert.Equal(t, DefaultMaxEntries, s.maxEntries)
	assert.NotNil(t, s.now)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scope := fmt.Sprintf("tab-%d", i%4)
			for j := 0; j < 100; j++ {
				s.MarkDisabled("baidu-proxy", scope)
				_ = s.IsDisabled("baidu-proxy", scope)
				if j%10 == 0 {
					s.ForgetScope(scope)
				}
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, s.Len(), 4)
}
