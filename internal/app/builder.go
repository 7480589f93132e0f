package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"k8s.io/utils/clock"

	"github.com/stacklok/formsync-server/internal/allocator"
	"github.com/stacklok/formsync-server/internal/api"
	"github.com/stacklok/formsync-server/internal/app/storage"
	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/catalogcache"
	"github.com/stacklok/formsync-server/internal/config"
	"github.com/stacklok/formsync-server/internal/httpclient"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/lock"
	"github.com/stacklok/formsync-server/internal/refresh"
	"github.com/stacklok/formsync-server/internal/service"
	"github.com/stacklok/formsync-server/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 30 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 45 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// FormSyncAppOptions is a function that configures the form sync app builder
type FormSyncAppOptions func(*formSyncAppConfig) error

// formSyncAppConfig collects builder inputs. Component overrides exist
// primarily for testing; production uses the defaults derived from config.
type formSyncAppConfig struct {
	config *config.Config

	// Optional component overrides
	storageFactory storage.Factory
	httpClient     httpclient.Client
	cacheBackend   catalogcache.Backend
	clock          clock.PassiveClock
	telemetry      *telemetry.Telemetry

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...FormSyncAppOptions) (*formSyncAppConfig, error) {
	cfg := &formSyncAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
		clock:          clock.RealClock{},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return cfg, nil
}

// NewFormSyncApp wires storage, the catalog cache, the importer, the service,
// the refresh coordinator and the HTTP server from the configuration
func NewFormSyncApp(
	ctx context.Context,
	opts ...FormSyncAppOptions,
) (*FormSyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			cleanup()
		}
	}()

	if cfg.telemetry == nil {
		cfg.telemetry, err = telemetry.New(ctx, cfg.config.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		tel := cfg.telemetry
		cleanups = append(cleanups, func() { _ = tel.Shutdown(context.Background()) })
	}

	if cfg.storageFactory == nil {
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config, cfg.clock)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}
	cleanups = append(cleanups, cfg.storageFactory.Cleanup)

	if cfg.cacheBackend == nil {
		backend, closeBackend, err := buildCacheBackend(cfg.config)
		if err != nil {
			return nil, fmt.Errorf("failed to create catalog cache backend: %w", err)
		}
		cfg.cacheBackend = backend
		cleanups = append(cleanups, closeBackend)
	}

	svc, err := buildServiceComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build service components: %w", err)
	}

	coord := buildRefreshCoordinator(cfg, svc)

	httpServer, err := buildHTTPServer(ctx, cfg, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	// From here on the app owns cleanup
	cleanupNeeded = false
	var once sync.Once
	cancelFunc := func() {
		once.Do(func() {
			cancel()
			cleanup()
		})
	}

	return &FormSyncApp{
		config: cfg.config,
		components: &AppComponents{
			FormSyncService:    svc,
			RefreshCoordinator: coord,
			Storage:            cfg.storageFactory,
			Telemetry:          cfg.telemetry,
		},
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) FormSyncAppOptions {
	return func(cfg *formSyncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) FormSyncAppOptions {
	return func(cfg *formSyncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, ok := strings.Cut(addr, ":")
		if !ok || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) FormSyncAppOptions {
	return func(cfg *formSyncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) FormSyncAppOptions {
	return func(cfg *formSyncAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithHTTPClient allows injecting the client used for remote fetches (for testing)
func WithHTTPClient(c httpclient.Client) FormSyncAppOptions {
	return func(cfg *formSyncAppConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithCacheBackend allows injecting the catalog cache backend (for testing)
func WithCacheBackend(b catalogcache.Backend) FormSyncAppOptions {
	return func(cfg *formSyncAppConfig) error {
		cfg.cacheBackend = b
		return nil
	}
}

// WithClock sets the clock shared by storage, the cache, imports and refresh
func WithClock(clk clock.PassiveClock) FormSyncAppOptions {
	return func(cfg *formSyncAppConfig) error {
		if clk == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		cfg.clock = clk
		return nil
	}
}

// WithTelemetry sets already initialized telemetry. The caller keeps
// ownership and shuts it down.
func WithTelemetry(t *telemetry.Telemetry) FormSyncAppOptions {
	return func(cfg *formSyncAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// buildCacheBackend returns the configured listing cache backend and its closer
func buildCacheBackend(cfg *config.Config) (catalogcache.Backend, func(), error) {
	switch cfg.Cache.GetBackend() {
	case config.CacheBackendSQLite:
		path, err := cfg.Cache.GetPath()
		if err != nil {
			return nil, nil, err
		}
		backend, err := catalogcache.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Catalog cache persisted in SQLite", "path", path)
		return backend, func() {
			if err := backend.Close(); err != nil {
				slog.Error("Failed to close catalog cache", "error", err)
			}
		}, nil
	default:
		return catalogcache.NewMemoryBackend(), func() {}, nil
	}
}

// buildServiceComponents builds the catalog cache, the importer and the service
func buildServiceComponents(
	_ context.Context,
	b *formSyncAppConfig,
) (service.FormSyncService, error) {
	slog.Info("Initializing service components")

	if b.httpClient == nil {
		b.httpClient = httpclient.NewDefaultClient(b.config.Fetch.GetTimeout())
	}

	meterProvider := b.telemetry.MeterProvider()

	catalogMetrics, err := telemetry.NewCatalogMetrics(meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog metrics: %w", err)
	}
	cache := catalogcache.New(b.httpClient,
		catalogcache.WithBackend(b.cacheBackend),
		catalogcache.WithClock(b.clock),
		catalogcache.WithConcurrency(b.config.Fetch.GetConcurrency()),
		catalogcache.WithMetrics(catalogMetrics),
	)

	importMetrics, err := telemetry.NewImportMetrics(meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create import metrics: %w", err)
	}
	im := importer.New(b.httpClient, b.storageFactory.UnitOfWork(),
		importer.WithClock(b.clock),
		importer.WithAllocatorOptions(allocator.WithClaimUnmanaged(b.config.Import.ClaimUnmanagedIDs)),
		importer.WithTracer(b.telemetry.Tracer(importer.TracerName)),
		importer.WithMetrics(importMetrics),
	)

	var lockOpts []lock.Option
	if b.config.Import.LockDir != "" {
		lockOpts = append(lockOpts, lock.WithDir(b.config.Import.LockDir))
	}

	svc, err := service.New(
		service.WithFormStorage(b.storageFactory.FormStorage()),
		service.WithProvenanceStore(b.storageFactory.ProvenanceStore()),
		service.WithSettingsStore(b.storageFactory.SettingsStore()),
		service.WithAvailableLister(cache),
		service.WithImporter(im),
		service.WithLocker(lock.New(lockOpts...)),
		service.WithClock(b.clock),
		service.WithReadinessCheck(b.storageFactory.Ready),
		service.WithTracer(b.telemetry.Tracer(service.TracerName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create form sync service: %w", err)
	}

	slog.Info("Service components initialized successfully")
	return svc, nil
}

// buildRefreshCoordinator returns nil when periodic refresh is disabled
func buildRefreshCoordinator(b *formSyncAppConfig, svc service.FormSyncService) refresh.Coordinator {
	if !b.config.Refresh.Enabled {
		slog.Info("Periodic refresh disabled")
		return nil
	}
	slog.Info("Periodic refresh enabled", "interval", b.config.Refresh.GetInterval())
	return refresh.New(svc,
		refresh.WithClock(b.clock),
		refresh.WithInterval(b.config.Refresh.GetInterval()),
	)
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *formSyncAppConfig,
	svc service.FormSyncService,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing go first so they observe every request
	metricsMiddleware, err := telemetry.MetricsMiddleware(b.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
	}
	b.middlewares = append([]func(http.Handler) http.Handler{
		metricsMiddleware,
		telemetry.TracingMiddleware(b.telemetry.TracerProvider()),
	}, b.middlewares...)

	router := api.NewServer(svc, catalog.NewEncoder(b.config.BaseURL),
		api.WithMiddlewares(b.middlewares...),
		api.WithMetricsHandler(b.telemetry.MetricsHandler()),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
