// Package lock serializes imports of the same source URL. Imports of
// different URLs never contend.
package lock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// DefaultRetryDelay is the polling delay used while waiting for a file lock
const DefaultRetryDelay = 100 * time.Millisecond

// URLLocker hands out per-URL locks
type URLLocker struct {
	mu      sync.Mutex
	entries map[string]*entry

	dir        string
	retryDelay time.Duration
}

type entry struct {
	ch   chan struct{}
	refs int
}

// Option configures a URLLocker
type Option func(*URLLocker)

// WithDir enables cross-process locking using flock files in dir
func WithDir(dir string) Option {
	return func(l *URLLocker) {
		l.dir = dir
	}
}

// WithRetryDelay sets how often a contended file lock is retried
func WithRetryDelay(d time.Duration) Option {
	return func(l *URLLocker) {
		if d > 0 {
			l.retryDelay = d
		}
	}
}

// New creates a URLLocker. Without WithDir the lock is process-local.
func New(opts ...Option) *URLLocker {
	l := &URLLocker{
		entries:    make(map[string]*entry),
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock blocks until the lock for url is held or ctx is done. The returned
// function releases it and is safe to call once.
func (l *URLLocker) Lock(ctx context.Context, url string) (func(), error) {
	e := l.acquireEntry(url)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseEntry(url, e)
		return nil, fmt.Errorf("waiting for lock on %s: %w", url, ctx.Err())
	}

	var fl *flock.Flock
	if l.dir != "" {
		var err error
		fl, err = l.lockFile(ctx, url)
		if err != nil {
			<-e.ch
			l.releaseEntry(url, e)
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if fl != nil {
				if err := fl.Unlock(); err != nil {
					slog.Warn("Failed to release file lock", "source_url", url, "path", fl.Path(), "error", err)
				}
			}
			<-e.ch
			l.releaseEntry(url, e)
		})
	}, nil
}

// Path returns the lock file used for url, or "" when file locking is off
func (l *URLLocker) Path(url string) string {
	if l.dir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(l.dir, hex.EncodeToString(sum[:])+".lock")
}

func (l *URLLocker) lockFile(ctx context.Context, url string) (*flock.Flock, error) {
	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory %s: %w", l.dir, err)
	}
	fl := flock.New(l.Path(url))
	locked, err := fl.TryLockContext(ctx, l.retryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire file lock for %s: %w", url, err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to acquire file lock for %s", url)
	}
	return fl, nil
}

func (l *URLLocker) acquireEntry(url string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[url]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[url] = e
	}
	e.refs++
	return e
}

func (l *URLLocker) releaseEntry(url string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, url)
	}
}
