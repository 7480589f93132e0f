// Package catalogcache lists the forms advertised by remote catalog
// endpoints, caching the aggregate listing for a configurable TTL.
package catalogcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"

	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/httpclient"
	"github.com/stacklok/formsync-server/internal/telemetry"
)

// DefaultConcurrency bounds parallel source fetches
const DefaultConcurrency = 4

// ErrNotFound is returned by GetOne when no listed entry has the URL
var ErrNotFound = errors.New("catalog entry not found")

// Cache aggregates remote catalog listings
type Cache struct {
	client      httpclient.Client
	backend     Backend
	clock       clock.PassiveClock
	concurrency int
	metrics     *telemetry.CatalogMetrics

	group singleflight.Group
}

// Option configures a Cache
type Option func(*Cache)

// WithBackend sets the storage backend (default in-memory)
func WithBackend(b Backend) Option {
	return func(c *Cache) {
		c.backend = b
	}
}

// WithClock sets the clock used for expiry
func WithClock(clk clock.PassiveClock) Option {
	return func(c *Cache) {
		c.clock = clk
	}
}

// WithConcurrency sets the number of sources fetched in parallel
func WithConcurrency(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithMetrics sets the metrics recorder; nil disables metrics
func WithMetrics(m *telemetry.CatalogMetrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New creates a Cache fetching with client
func New(client httpclient.Client, opts ...Option) *Cache {
	c := &Cache{
		client:      client,
		backend:     NewMemoryBackend(),
		clock:       clock.RealClock{},
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAvailable returns the entries advertised by sources. With ttl <= 0
// every call fetches live and the backend is never touched; otherwise a
// listing is reused until it expires. Failing sources contribute no entries.
func (c *Cache) ListAvailable(ctx context.Context, sources []string, ttl time.Duration) ([]catalog.Entry, error) {
	sources = dedupe(sources)
	if ttl <= 0 {
		c.metrics.RecordLookup(ctx, "bypass")
		entries := c.FetchAll(ctx, sources)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return entries, nil
	}

	key := CacheKey(sources, ttl)
	if entries, ok := c.lookup(ctx, key); ok {
		c.metrics.RecordLookup(ctx, "hit")
		return entries, nil
	}
	c.metrics.RecordLookup(ctx, "miss")

	v, err, _ := c.group.Do(key, func() (any, error) {
		if entries, ok := c.lookup(ctx, key); ok {
			return entries, nil
		}
		entries := c.FetchAll(ctx, sources)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		expiresAt := c.clock.Now().Add(ttl)
		if err := c.backend.Set(ctx, key, entries, expiresAt); err != nil {
			slog.WarnContext(ctx, "Failed to store catalog listing", "cache_key", key, "error", err)
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Entry), nil
}

// GetOne returns the first listed entry whose self link equals url. Entries
// without a self link never match.
func (c *Cache) GetOne(ctx context.Context, sources []string, ttl time.Duration, url string) (*catalog.Entry, error) {
	if url == "" {
		return nil, ErrNotFound
	}
	entries, err := c.ListAvailable(ctx, sources, ttl)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].SourceURL == url {
			entry := entries[i]
			return &entry, nil
		}
	}
	return nil, ErrNotFound
}

// FetchAll fetches every source and concatenates their entries in source
// order. A source that cannot be fetched or parsed is logged and skipped.
func (c *Cache) FetchAll(ctx context.Context, sources []string) []catalog.Entry {
	results := make([][]catalog.Entry, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = c.fetchSource(gctx, src)
			return nil
		})
	}
	_ = g.Wait()

	var entries []catalog.Entry
	for _, r := range results {
		entries = append(entries, r...)
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	c.metrics.RecordEntries(ctx, int64(len(entries)))
	return entries
}

func (c *Cache) fetchSource(ctx context.Context, src string) []catalog.Entry {
	start := c.clock.Now()
	body, err := c.client.Get(ctx, src)
	if err != nil {
		c.metrics.RecordFetch(ctx, c.clock.Since(start), false)
		slog.WarnContext(ctx, "Failed to fetch catalog source", "source_url", src, "error", err)
		return nil
	}
	entries, err := catalog.DecodeList(body)
	c.metrics.RecordFetch(ctx, c.clock.Since(start), err == nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to parse catalog source", "source_url", src, "error", err)
		return nil
	}
	slog.DebugContext(ctx, "Fetched catalog source", "source_url", src, "entries", len(entries))
	return entries
}

func (c *Cache) lookup(ctx context.Context, key string) ([]catalog.Entry, bool) {
	entries, ok, err := c.backend.Get(ctx, key, c.clock.Now())
	if err != nil {
		slog.WarnContext(ctx, "Failed to read catalog cache", "cache_key", key, "error", err)
		return nil, false
	}
	return entries, ok
}

// CacheKey derives the cache key for a source list and TTL. Duplicate
// sources are ignored; order is significant.
func CacheKey(sources []string, ttl time.Duration) string {
	h := sha256.New()
	for _, src := range dedupe(sources) {
		h.Write([]byte(src))
		h.Write([]byte{0})
	}
	h.Write([]byte("ttl=" + strconv.FormatInt(int64(ttl/time.Second), 10)))
	return hex.EncodeToString(h.Sum(nil))
}

func dedupe(sources []string) []string {
	seen := make(map[string]struct{}, len(sources))
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}
