// Package config loads the YAML configuration surface described by
// spec.md §6: telnet connection parameters, the list of FilterSpecs, the
// optional storage block, and the optional PoLo watchlist block. Grounded
// in the teacher's yaml.v3-based loaders (spot/mode_alloc.go's
// os.ReadFile-then-yaml.Unmarshal idiom), generalized to the top-level
// config file and enriched with go-humanize size parsing and a
// google/uuid instance identifier.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"rbnfeed/filter"
)

// StorageBlock configures the optional filter-storage component.
type StorageBlock struct {
	DefaultMaxKeptEntries int    `yaml:"default_max_kept_entries"`
	GlobalMaxSize         string `yaml:"global_max_size"`
}

// PoloBlock configures the optional PoLo watchlist fetcher.
type PoloBlock struct {
	URL             string   `yaml:"url"`
	RefreshInterval Duration `yaml:"refresh_interval"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Callsign string `yaml:"callsign"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`

	ConnectTimeout Duration `yaml:"connect_timeout"`
	ReadTimeout    Duration `yaml:"read_timeout"`
	AutoReconnect  *bool    `yaml:"auto_reconnect"`
	ReconnectDelay Duration `yaml:"reconnect_delay"`

	CWOnly bool `yaml:"cw_only"`

	StatsPrintInterval Duration `yaml:"stats_print_interval"`

	HTTPEnabled bool `yaml:"http_enabled"`
	HTTPPort    int  `yaml:"http_port"`

	Filters []filter.Spec `yaml:"filters"`

	Storage *StorageBlock `yaml:"storage"`
	Polo    *PoloBlock    `yaml:"polo"`

	// InstanceID identifies this running process; it is not read from
	// YAML, it is assigned fresh on every Load.
	InstanceID string `yaml:"-"`
}

const (
	defaultConnectTimeout     = Duration(30 * time.Second)
	defaultReadTimeout        = Duration(120 * time.Second)
	defaultReconnectDelay     = Duration(5 * time.Second)
	defaultMaxKeptEntries     = 1000
	defaultGlobalMaxSize      = "64MB"
	defaultStatsPrintInterval = Duration(60 * time.Second)
	defaultHTTPPort           = 8080
)

// Load reads and validates the configuration file at path, applying
// defaults for any field left unset, and aborts (returns an error) before
// any network I/O if a filter pattern or storage size string is invalid,
// per spec.md §7.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.InstanceID = uuid.New().String()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.AutoReconnect == nil {
		v := true
		c.AutoReconnect = &v
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = defaultReconnectDelay
	}
	if c.StatsPrintInterval == 0 {
		c.StatsPrintInterval = defaultStatsPrintInterval
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = defaultHTTPPort
	}
	if c.Storage != nil {
		if c.Storage.DefaultMaxKeptEntries == 0 {
			c.Storage.DefaultMaxKeptEntries = defaultMaxKeptEntries
		}
		if c.Storage.GlobalMaxSize == "" {
			c.Storage.GlobalMaxSize = defaultGlobalMaxSize
		}
	}
}

// Validate rejects invalid filter patterns and an unparsable storage size
// string, per spec.md §7's "invalid configuration" error category.
func (c *Config) Validate() error {
	for i, f := range c.Filters {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("filters[%d]: %w", i, err)
		}
	}
	if c.Storage != nil {
		if _, err := ParseSize(c.Storage.GlobalMaxSize); err != nil {
			return fmt.Errorf("storage.global_max_size: %w", err)
		}
	}
	return nil
}

// GlobalMaxSizeBytes parses the storage block's global_max_size, or
// returns the package default if storage is not configured.
func (c *Config) GlobalMaxSizeBytes() (uint64, error) {
	if c.Storage == nil {
		return ParseSize(defaultGlobalMaxSize)
	}
	return ParseSize(c.Storage.GlobalMaxSize)
}

// DefaultMaxKeptEntries returns the configured per-queue default cap, or
// the package default if storage is not configured.
func (c *Config) DefaultMaxKeptEntries() int {
	if c.Storage == nil {
		return defaultMaxKeptEntries
	}
	return c.Storage.DefaultMaxKeptEntries
}

// ParseSize parses a human-readable byte size per spec.md §6: a decimal
// number optionally followed by B/K/KB/M/MB/G/GB (case-insensitive, binary
// multiples). It rejects empty strings and any unit outside that set,
// including TB.
func ParseSize(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}
	if !isAllowedSizeString(s) {
		return 0, fmt.Errorf("unsupported size unit in %q", s)
	}
	return parseSizeManual(s)
}
