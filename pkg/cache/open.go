package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend" json:"backend"`

	// File backend
	Dir string `toml:"dir,omitempty" json:"dir,omitempty"`

	// Redis backend
	RedisAddr     string `toml:"redis_addr,omitempty" json:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty" json:"-"`
	RedisDB       int    `toml:"redis_db,omitempty" json:"redis_db,omitempty"`

	// MongoDB backend
	MongoURI        string `toml:"mongo_uri,omitempty" json:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database,omitempty" json:"mongo_database,omitempty"`
	MongoCollection string `toml:"mongo_collection,omitempty" json:"mongo_collection,omitempty"`

	// Prefix scopes every key; see [ScopedKeyer].
	Prefix string `toml:"prefix,omitempty" json:"prefix,omitempty"`
}

// Open creates the configured backend. An empty backend name means
// [BackendFile].
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache: directory is required")
		}
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		c, err := NewRedisCache(ctx, addr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache: uri is required")
		}
		db := cfg.MongoDatabase
		if db == "" {
			db = "ndorder"
		}
		c, err := NewMongoCache(ctx, cfg.MongoURI, db, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("%w: %q (must be one of: file, redis, mongo, none)", ErrUnknownBackend, cfg.Backend)
}

// Keyer returns the keyer matching the configured prefix.
func (cfg Config) Keyer() Keyer {
	if cfg.Prefix == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(nil, cfg.Prefix)
}
