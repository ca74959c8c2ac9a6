// Package config reads and writes ndorder configuration files.
//
// A configuration file is TOML with three optional tables:
//
//	[ordering]
//	mode = "sym"
//	small_threshold = 200
//	split_components = false
//	separator_quality = 1.0
//	leaf_ordering = "auto"
//	workers = 4
//	collapse = 0
//
//	[cache]
//	backend = "file"        # file, redis, mongo or none
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
//	ttl = "720h"
//
//	[server]
//	addr = ":8080"
//	request_timeout = "60s"
//	max_nnz = 5000000
//
// Keys that are absent keep their defaults. Unknown keys are an error so
// that typos do not go unnoticed.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ndorder/pkg/cache"
	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/pipeline"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "config.toml"

// Config is the decoded configuration file.
type Config struct {
	Ordering Ordering `toml:"ordering"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
}

// Ordering holds default ordering parameters. Pointer fields distinguish
// "not set" from zero.
type Ordering struct {
	Mode             string   `toml:"mode,omitempty"`
	SmallThreshold   *int     `toml:"small_threshold,omitempty"`
	SplitComponents  *bool    `toml:"split_components,omitempty"`
	SeparatorQuality *float64 `toml:"separator_quality,omitempty"`
	LeafOrdering     string   `toml:"leaf_ordering,omitempty"`
	Workers          int      `toml:"workers,omitempty"`
	Collapse         int      `toml:"collapse,omitempty"`
}

// Cache selects the cache backend.
type Cache struct {
	cache.Config
	TTL time.Duration `toml:"ttl,omitempty"`
}

// Server configures the HTTP service.
type Server struct {
	Addr           string        `toml:"addr,omitempty"`
	RequestTimeout time.Duration `toml:"request_timeout,omitempty"`
	MaxNNZ         int           `toml:"max_nnz,omitempty"`
	MaxDim         int           `toml:"max_dim,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache: Cache{Config: cache.Config{Backend: cache.BackendFile}},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: 60 * time.Second,
			MaxNNZ:         5_000_000,
		},
	}
}

// Dir returns the per-user configuration directory, honoring
// XDG_CONFIG_HOME.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ndorder"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ndorder"), nil
}

// DefaultPath returns the path of the per-user configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the file at path on top of [Default].
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault reads the per-user file if it exists and returns [Default]
// otherwise.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errs.Is(err, errs.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes TOML text on top of [Default] and validates the result.
func Parse(text string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errs.New(errs.ErrCodeInvalidOptions, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the ordering parameters by resolving them into engine
// options.
func (c Config) Validate() error {
	var opts pipeline.Options
	c.Ordering.Apply(&opts)
	opts.SetDefaults()
	if _, _, err := opts.Resolve(); err != nil {
		return err
	}
	if c.Ordering.Workers < 0 || c.Ordering.Workers > pipeline.MaxWorkers {
		return errs.New(errs.ErrCodeInvalidOptions, "workers must be between 0 and %d, got %d", pipeline.MaxWorkers, c.Ordering.Workers)
	}
	if c.Ordering.Collapse < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "collapse must be non-negative, got %d", c.Ordering.Collapse)
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "cache ttl must be non-negative")
	}
	return nil
}

// Apply copies every set ordering parameter into opts, leaving the other
// fields untouched. Call it before applying command-line flags so that
// flags win.
func (o Ordering) Apply(opts *pipeline.Options) {
	if o.Mode != "" {
		opts.Mode = o.Mode
	}
	if o.SmallThreshold != nil {
		v := *o.SmallThreshold
		opts.SmallThreshold = &v
	}
	if o.SplitComponents != nil {
		opts.SplitComponents = *o.SplitComponents
	}
	if o.SeparatorQuality != nil {
		v := *o.SeparatorQuality
		opts.SeparatorQuality = &v
	}
	if o.LeafOrdering != "" {
		opts.LeafOrdering = o.LeafOrdering
	}
	if o.Workers != 0 {
		opts.Workers = o.Workers
	}
	if o.Collapse != 0 {
		opts.Collapse = o.Collapse
	}
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
