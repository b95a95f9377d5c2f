package scraper

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"eventscout/helpers"
	"eventscout/services/cache"
)

// baseScraper provides fetch plumbing shared by the HTML scrapers
type baseScraper struct {
	fetcher   *helpers.Fetcher
	cacheSvc  cache.CacheService
	cacheKey  string
	blockTime time.Duration
	source    string
}

// fetchWithCache fetches a URL, honoring a block window set after the
// remote site rate-limits us.
func (b *baseScraper) fetchWithCache(url string) (io.Reader, error) {
	if b.cacheSvc != nil && b.cacheKey != "" {
		if _, err := b.cacheSvc.Get(b.cacheKey); err == nil {
			return nil, fmt.Errorf("%s: blocked for %d seconds after rate limiting", b.source, int(b.blockTime/time.Second))
		}
	}

	body, err := b.fetcher.FetchHTML(url)
	if err != nil {
		if b.cacheSvc != nil && b.cacheKey != "" && strings.Contains(err.Error(), "rate limited") {
			b.cacheSvc.Set(b.cacheKey, []byte(fmt.Sprintf("%d", int(b.blockTime/time.Second))), b.blockTime)
		}
		return nil, err
	}

	return body, nil
}

// createDocument creates a goquery document from a reader
func (b *baseScraper) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("HTML parse error: %w", err)
	}
	return doc, nil
}

// fetchDocument fetches a URL and parses the body into a document
func (b *baseScraper) fetchDocument(url string) (*goquery.Document, error) {
	body, err := b.fetchWithCache(url)
	if err != nil {
		return nil, err
	}
	return b.createDocument(body)
}
