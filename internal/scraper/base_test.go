package scraper

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventscout/helpers"
)

// memoryCache is an in-memory CacheService for tests
type memoryCache struct {
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (c *memoryCache) Get(key string) ([]byte, error) {
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return nil, assert.AnError
}

func (c *memoryCache) Set(key string, value []byte, expiration time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(key string) error {
	delete(c.values, key)
	return nil
}

func TestBaseScraperBlocksAfterRateLimit(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Retry-After", "500")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cacheSvc := newMemoryCache()
	base := baseScraper{
		fetcher:   helpers.NewFetcher(time.Second),
		cacheSvc:  cacheSvc,
		cacheKey:  "test_rate_limited",
		blockTime: 500 * time.Second,
		source:    "dice",
	}

	_, err := base.fetchWithCache(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Contains(t, cacheSvc.values, "test_rate_limited")

	// The block window short-circuits the next fetch
	_, err = base.fetchWithCache(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
	assert.Equal(t, 1, requests)
}

func TestBaseScraperFetchDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Sonia</h1></body></html>`))
	}))
	defer server.Close()

	base := baseScraper{fetcher: helpers.NewFetcher(time.Second), source: "dice"}

	doc, err := base.fetchDocument(server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Sonia", doc.Find("h1").Text())
}
