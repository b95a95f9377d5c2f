package cache

import (
	"time"
)

// CacheService represents a generic cache service. The scrapers use it to
// hold per-source block windows after a remote site rate-limits us.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
