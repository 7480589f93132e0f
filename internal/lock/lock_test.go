package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLLocker_SerializesSameURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts func(t *testing.T) []Option
	}{
		{
			name: "in-process only",
			opts: func(*testing.T) []Option { return nil },
		},
		{
			name: "with file locks",
			opts: func(t *testing.T) []Option {
				return []Option{WithDir(t.TempDir()), WithRetryDelay(5 * time.Millisecond)}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := New(tt.opts(t)...)
			var inside, maxInside atomic.Int32
			var wg sync.WaitGroup
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock, err := l.Lock(context.Background(), "https://a.example/jsonapi/webforms/x")
					if !assert.NoError(t, err) {
						return
					}
					n := inside.Add(1)
					for {
						m := maxInside.Load()
						if n <= m || maxInside.CompareAndSwap(m, n) {
							break
						}
					}
					time.Sleep(2 * time.Millisecond)
					inside.Add(-1)
					unlock()
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(1), maxInside.Load())
			l.mu.Lock()
			assert.Empty(t, l.entries)
			l.mu.Unlock()
		})
	}
}

func TestURLLocker_DifferentURLsDoNotContend(t *testing.T) {
	t.Parallel()

	l := New()
	unlockA, err := l.Lock(context.Background(), "https://a.example/1")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "https://a.example/2")
	require.NoError(t, err)
	unlockB()
}

func TestURLLocker_ContextCancelled(t *testing.T) {
	t.Parallel()

	l := New()
	unlock, err := l.Lock(context.Background(), "https://a.example/1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "https://a.example/1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second release is a no-op

	unlock, err = l.Lock(context.Background(), "https://a.example/1")
	require.NoError(t, err)
	unlock()
}

func TestURLLocker_Path(t *testing.T) {
	t.Parallel()

	assert.Empty(t, New().Path("https://a.example/1"))

	dir := t.TempDir()
	l := New(WithDir(dir))
	p1 := l.Path("https://a.example/1")
	p2 := l.Path("https://a.example/2")
	assert.NotEqual(t, p1, p2)
	assert.Equal(t, p1, l.Path("https://a.example/1"))
	assert.Contains(t, p1, dir)
	assert.True(t, len(p1) > len(dir)+64)
}
