// Package cache stores computed orderings and their fill statistics.
//
// Orderings are deterministic functions of the matrix pattern and the
// ordering options, so a result can be reused whenever both match. Keys are
// built by a [Keyer] from a content hash of the pattern and the options that
// influence the result.
//
// Four backends implement [Cache]:
//
//   - [FileCache] keeps entries as JSON files under a directory (CLI default)
//   - [RedisCache] shares entries through a Redis server
//   - [MongoCache] stores entries as documents with a TTL index
//   - [NullCache] disables caching
//
// [Open] selects a backend from a [Config].
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the stored data and whether the key was present.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero keeps the entry until it is
	// deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Default time-to-live values.
const (
	TTLOrdering = 30 * 24 * time.Hour
	TTLFill     = 30 * 24 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	// OrderingKey identifies an ordering of the pattern with the given hash.
	OrderingKey(patternHash string, opts OrderingKeyOpts) string

	// FillKey identifies the fill statistics of a pattern under a
	// permutation.
	FillKey(patternHash, permHash string) string
}

// OrderingKeyOpts lists the options that change an ordering. The worker
// count is not among them.
type OrderingKeyOpts struct {
	Mode             string  `json:"mode"`
	SmallThreshold   int     `json:"small_threshold"`
	SplitComponents  bool    `json:"split_components"`
	SeparatorQuality float64 `json:"separator_quality"`
	LeafOrdering     string  `json:"leaf_ordering"`
	Collapse         int     `json:"collapse,omitempty"`
	Collaborators    string  `json:"collaborators,omitempty"` // Custom separator oracle and leaf orderer
}

// DefaultKeyer builds unscoped keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// OrderingKey implements [Keyer].
func (DefaultKeyer) OrderingKey(patternHash string, opts OrderingKeyOpts) string {
	return hashKey("ordering", patternHash, opts)
}

// FillKey implements [Keyer].
func (DefaultKeyer) FillKey(patternHash, permHash string) string {
	return hashKey("fill", patternHash, permHash)
}
