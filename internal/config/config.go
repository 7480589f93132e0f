// Package config provides configuration loading and management for the formsync server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/formsync-server/internal/telemetry"
)

// EnvPrefix is the prefix of environment variables read by the server
const EnvPrefix = "FORMSYNC"

const (
	// CacheBackendMemory keeps catalog listings in process memory
	CacheBackendMemory = "memory"

	// CacheBackendSQLite persists catalog listings in a local SQLite file
	CacheBackendSQLite = "sqlite"
)

const (
	// DefaultFetchTimeout bounds every remote catalog request
	DefaultFetchTimeout = 10 * time.Second

	// DefaultFetchConcurrency is the number of sources fetched in parallel for a listing
	DefaultFetchConcurrency = 4

	// DefaultRefreshInterval is how often the refresh coordinator looks for stale forms
	DefaultRefreshInterval = 5 * time.Minute

	// defaultCacheFile is relative to the XDG cache directory
	defaultCacheFile = "formsync/catalog-cache.db"

	// passwordEnvVar is consulted when no password file is configured
	passwordEnvVar = "FORMSYNC_DATABASE_PASSWORD"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// BaseURL is the externally reachable URL of this site.
	// It is used to build links.self for the local catalog.
	BaseURL string `yaml:"baseURL"`

	// Database configures Postgres storage. When nil, forms, provenance and
	// settings are kept in memory.
	Database *DatabaseConfig `yaml:"database,omitempty"`

	// Catalog seeds the runtime settings store on first start
	Catalog CatalogConfig `yaml:"catalog"`

	Cache     CacheConfig       `yaml:"cache"`
	Fetch     FetchConfig       `yaml:"fetch"`
	Import    ImportConfig      `yaml:"import"`
	Refresh   RefreshConfig     `yaml:"refresh"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// CatalogConfig defines the default remote catalog sources
type CatalogConfig struct {
	// Sources are catalog list URLs, queried in order
	Sources []string `yaml:"sources,omitempty"`

	// TTL is how long a listing is cached (e.g. "1h"). Zero or empty disables caching.
	TTL string `yaml:"ttl,omitempty"`
}

// CacheConfig selects the catalog cache backend
type CacheConfig struct {
	// Backend is either "memory" (default) or "sqlite"
	Backend string `yaml:"backend,omitempty"`

	// Path is the SQLite database file. Empty means formsync/catalog-cache.db
	// under the user's XDG cache directory.
	Path string `yaml:"path,omitempty"`
}

// FetchConfig defines remote fetch settings
type FetchConfig struct {
	// Timeout bounds a single GET (e.g. "10s")
	Timeout string `yaml:"timeout,omitempty"`

	// Concurrency is the number of listing sources fetched in parallel
	Concurrency int `yaml:"concurrency,omitempty"`
}

// ImportConfig defines import behaviour
type ImportConfig struct {
	// ClaimUnmanagedIDs lets an import take over a local form that shares the
	// remote id but was not created by an import. When false such a collision
	// is resolved through the suffix path like any other.
	ClaimUnmanagedIDs bool `yaml:"claimUnmanagedIds,omitempty"`

	// LockDir holds per-URL lock files so that imports of the same URL are
	// serialized across processes. Empty means in-process locking only.
	LockDir string `yaml:"lockDir,omitempty"`
}

// RefreshConfig defines the periodic re-import coordinator
type RefreshConfig struct {
	Enabled bool `yaml:"enabled"`

	// Interval is the polling interval of the coordinator (e.g. "5m")
	Interval string `yaml:"interval,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password.
	// The file should contain only the password with optional trailing whitespace.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections in the pool
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the minimum number of idle connections kept in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from FORMSYNC_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(passwordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s environment variable", passwordEnvVar,
	)
}

// GetConnectionString builds a PostgreSQL connection string.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)

	return connString, nil
}

// GetConnMaxLifetime returns the parsed connection lifetime, or zero when unset
func (d *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	if d.ConnMaxLifetime == "" {
		return 0
	}
	// Validated at load time
	dur, _ := time.ParseDuration(d.ConnMaxLifetime)
	return dur
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration document
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetTTL returns the configured catalog cache TTL
func (c *CatalogConfig) GetTTL() time.Duration {
	if c.TTL == "" {
		return 0
	}
	ttl, _ := time.ParseDuration(c.TTL)
	return ttl
}

// GetPath returns the SQLite cache file, creating the XDG cache directory
// when no path is configured
func (c *CacheConfig) GetPath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	path, err := xdg.CacheFile(defaultCacheFile)
	if err != nil {
		return "", fmt.Errorf("failed to resolve default cache path: %w", err)
	}
	return path, nil
}

// GetBackend returns the cache backend, defaulting to memory
func (c *CacheConfig) GetBackend() string {
	if c.Backend == "" {
		return CacheBackendMemory
	}
	return c.Backend
}

// GetTimeout returns the fetch timeout, defaulting to DefaultFetchTimeout
func (f *FetchConfig) GetTimeout() time.Duration {
	if f.Timeout == "" {
		return DefaultFetchTimeout
	}
	timeout, _ := time.ParseDuration(f.Timeout)
	return timeout
}

// GetConcurrency returns the listing fetch concurrency, defaulting to DefaultFetchConcurrency
func (f *FetchConfig) GetConcurrency() int {
	if f.Concurrency <= 0 {
		return DefaultFetchConcurrency
	}
	return f.Concurrency
}

// GetInterval returns the coordinator polling interval
func (r *RefreshConfig) GetInterval() time.Duration {
	if r.Interval == "" {
		return DefaultRefreshInterval
	}
	interval, _ := time.ParseDuration(r.Interval)
	return interval
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	if err := validateAbsoluteURL(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("baseURL: %w", err))
	}

	for i, src := range c.Catalog.Sources {
		if err := validateAbsoluteURL(src); err != nil {
			errs = append(errs, fmt.Errorf("catalog.sources[%d]: %w", i, err))
		}
	}
	if err := validateDuration(c.Catalog.TTL, true); err != nil {
		errs = append(errs, fmt.Errorf("catalog.ttl: %w", err))
	}

	switch c.Cache.GetBackend() {
	case CacheBackendMemory:
	case CacheBackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be %q or %q, got %q",
			CacheBackendMemory, CacheBackendSQLite, c.Cache.Backend))
	}

	if err := validateDuration(c.Fetch.Timeout, false); err != nil {
		errs = append(errs, fmt.Errorf("fetch.timeout: %w", err))
	}
	if c.Fetch.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("fetch.concurrency must not be negative"))
	}

	if c.Refresh.Enabled {
		if err := validateDuration(c.Refresh.Interval, false); err != nil {
			errs = append(errs, fmt.Errorf("refresh.interval: %w", err))
		}
	}

	if c.Database != nil {
		if err := c.Database.validate(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}

func (d *DatabaseConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("host is required")
	}
	if d.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if d.User == "" {
		return fmt.Errorf("user is required")
	}
	if d.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if err := validateDuration(d.ConnMaxLifetime, false); err != nil {
		return fmt.Errorf("connMaxLifetime: %w", err)
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("value is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http or https URL, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("must be an absolute URL, got %q", raw)
	}
	return nil
}

// validateDuration accepts an empty value. Zero is only accepted when allowZero is set.
func validateDuration(raw string, allowZero bool) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("must be a valid duration (e.g., '30s', '1h'): %w", err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return fmt.Errorf("must be positive, got %s", raw)
	}
	return nil
}
