package refresh

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/provenance"
)

const (
	// DefaultInterval is how often the coordinator looks for due forms
	DefaultInterval = 5 * time.Minute

	// DefaultJitter is the maximum random offset applied to each polling interval
	DefaultJitter = 30 * time.Second

	// DefaultConcurrency bounds the number of simultaneous re-imports
	DefaultConcurrency = 2
)

// Service is what the coordinator needs from the form sync service
type Service interface {
	ListImported(ctx context.Context) ([]*provenance.Record, error)
	GetForm(ctx context.Context, id string) (*forms.Form, error)
	Import(ctx context.Context, url string) (*importer.Result, error)
}

// Coordinator runs periodic refreshes in the background
type Coordinator interface {
	// Start runs refresh passes until ctx is cancelled or Stop is called
	Start(ctx context.Context) error

	// Stop cancels a running Start and waits for it to return
	Stop() error

	// RunOnce performs a single refresh pass
	RunOnce(ctx context.Context) (Summary, error)
}

// Summary counts the outcome of one refresh pass
type Summary struct {
	Checked   int
	Refreshed int
	Failed    int
}

// Job is a form due for re-import
type Job struct {
	FormID    string
	SourceURL string
}

type coordinator struct {
	svc         Service
	clock       clock.PassiveClock
	interval    time.Duration
	jitter      time.Duration
	concurrency int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ Coordinator = (*coordinator)(nil)

// Option configures the coordinator
type Option func(*coordinator)

// WithClock sets the clock used to decide which forms are due
func WithClock(clk clock.PassiveClock) Option {
	return func(c *coordinator) { c.clock = clk }
}

// WithInterval sets the polling interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(c *coordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithJitter sets the maximum random offset of each polling interval
func WithJitter(d time.Duration) Option {
	return func(c *coordinator) {
		if d >= 0 {
			c.jitter = d
		}
	}
}

// WithConcurrency bounds simultaneous re-imports
func WithConcurrency(n int) Option {
	return func(c *coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates a coordinator refreshing forms through svc
func New(svc Service, opts ...Option) Coordinator {
	c := &coordinator{
		svc:         svc,
		clock:       clock.RealClock{},
		interval:    DefaultInterval,
		jitter:      DefaultJitter,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nextInterval spreads the polling of several instances sharing one database
func (c *coordinator) nextInterval() time.Duration {
	if c.jitter <= 0 {
		return c.interval
	}
	//nolint:gosec // G404: jitter does not need cryptographic randomness
	offset := time.Duration(rand.Int64N(int64(2*c.jitter))) - c.jitter
	if d := c.interval + offset; d > 0 {
		return d
	}
	return c.interval
}

func (c *coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return errors.New("refresh coordinator already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	defer func() {
		cancel()
		close(done)
		slog.Info("Refresh coordinator stopped")
	}()

	slog.InfoContext(ctx, "Starting refresh coordinator", "interval", c.interval, "jitter", c.jitter)

	timer := time.NewTimer(c.nextInterval())
	defer timer.Stop()

	c.runLogged(ctx)
	for {
		select {
		case <-timer.C:
			c.runLogged(ctx)
			timer.Reset(c.nextInterval())
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *coordinator) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (c *coordinator) runLogged(ctx context.Context) {
	summary, err := c.RunOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.ErrorContext(ctx, "Refresh pass failed", "error", err)
		}
		return
	}
	if summary.Refreshed > 0 || summary.Failed > 0 {
		slog.InfoContext(ctx, "Refresh pass complete",
			"checked", summary.Checked,
			"refreshed", summary.Refreshed,
			"failed", summary.Failed)
	}
}

// RunOnce re-imports every due form. Individual import failures are logged
// and counted; only failing to list the candidates is an error.
func (c *coordinator) RunOnce(ctx context.Context) (Summary, error) {
	records, err := c.svc.ListImported(ctx)
	if err != nil {
		return Summary{}, err
	}

	jobs, err := c.due(ctx, records)
	if err != nil {
		return Summary{}, err
	}

	var refreshed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			if _, err := c.svc.Import(gctx, job.SourceURL); err != nil {
				failed.Add(1)
				slog.ErrorContext(gctx, "Scheduled re-import failed",
					"form_id", job.FormID,
					"source_url", job.SourceURL,
					"error", err)
				return nil
			}
			refreshed.Add(1)
			slog.DebugContext(gctx, "Re-imported form", "form_id", job.FormID, "source_url", job.SourceURL)
			return nil
		})
	}
	_ = g.Wait()

	return Summary{
		Checked:   len(records),
		Refreshed: int(refreshed.Load()),
		Failed:    int(failed.Load()),
	}, ctx.Err()
}

// due selects the records whose form's update interval has elapsed. Records
// whose form is gone are skipped; the deletion hook will remove them.
func (c *coordinator) due(ctx context.Context, records []*provenance.Record) ([]Job, error) {
	now := c.clock.Now()
	seen := map[string]bool{}
	var jobs []Job
	for _, rec := range records {
		f, err := c.svc.GetForm(ctx, rec.LocalFormID)
		if errors.Is(err, forms.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !Due(f.Sync, rec.UpdatedAt, now) || seen[rec.SourceURL] {
			continue
		}
		// one import per URL per pass; the import resolves which local form it updates
		seen[rec.SourceURL] = true
		jobs = append(jobs, Job{FormID: rec.LocalFormID, SourceURL: rec.SourceURL})
	}
	return jobs, nil
}

// Due reports whether a form last refreshed at lastUpdated should be re-imported at now
func Due(sync forms.SyncSettings, lastUpdated, now time.Time) bool {
	if sync.UpdateInterval <= forms.IntervalManual {
		return false
	}
	return !now.Before(lastUpdated.Add(time.Duration(sync.UpdateInterval) * time.Second))
}
