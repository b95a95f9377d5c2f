package scraper

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"eventscout/helpers"
)

// Selectors contains CSS selectors for the pieces of an HTML listing page
type Selectors struct {
	EventList string
	Title     string
	DateText  string
	Location  string
	Image     string
	Link      string
	// NextPage selects the pagination link; empty means a single page
	NextPage string
}

// IDExtractorFunc extracts a source-native identifier from a detail URL
type IDExtractorFunc func(link string) (string, error)

// VenueExtractorFunc pulls venue metadata off a listing page
type VenueExtractorFunc func(doc *goquery.Document) *Venue

// ListConfig configures an HTML listing scraper
type ListConfig struct {
	Kind           Kind
	BaseURL        string
	CacheKey       string
	BlockTime      int
	Selectors      Selectors
	IDExtractor    IDExtractorFunc
	VenueExtractor VenueExtractorFunc
}

// ListScraper scrapes paginated HTML event listings. One configuration per
// source; the per-source differences live entirely in ListConfig.
type ListScraper struct {
	baseScraper
	kind     Kind
	baseURL  string
	sel      Selectors
	idFn     IDExtractorFunc
	venueFn  VenueExtractorFunc
	norm     *Normalizer
	maxPages int
}

// NewListScraper creates an HTML listing scraper from a configuration
func NewListScraper(cfg ListConfig, deps Deps) *ListScraper {
	return &ListScraper{
		baseScraper: baseScraper{
			fetcher:   deps.Fetcher,
			cacheSvc:  deps.Cache,
			cacheKey:  cfg.CacheKey,
			blockTime: time.Duration(cfg.BlockTime) * time.Second,
			source:    string(cfg.Kind),
		},
		kind:     cfg.Kind,
		baseURL:  cfg.BaseURL,
		sel:      cfg.Selectors,
		idFn:     cfg.IDExtractor,
		venueFn:  cfg.VenueExtractor,
		norm:     deps.Normalizer,
		maxPages: deps.MaxPages,
	}
}

// Kind returns the source kind
func (s *ListScraper) Kind() Kind {
	return s.kind
}

// Scrape fetches the listing page (following pagination links up to the
// page limit), parses each event block, and normalizes the results.
// Per-page fetch failures and per-block parse failures land in the
// result's Errors list; the first page failing is the only fatal case.
func (s *ListScraper) Scrape(ctx context.Context, req Request) (*Result, error) {
	result := &Result{Events: []Event{}}

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = s.maxPages
	}
	if s.sel.NextPage == "" {
		maxPages = 1
	}

	pageURL := req.URL
	for page := 0; page < maxPages && pageURL != ""; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := s.fetchDocument(pageURL)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			result.Errors = append(result.Errors, URLError{URL: pageURL, Error: err.Error()})
			break
		}

		if page == 0 && s.venueFn != nil {
			result.Venue = s.venueFn(doc)
		}

		events, errs := s.processPage(doc, pageURL)
		result.Events = append(result.Events, events...)
		result.Errors = append(result.Errors, errs...)

		pageURL = s.nextPageURL(doc, pageURL)
	}

	result.TotalEvents = len(result.Events)
	return result, nil
}

// processPage parses the event blocks on one listing page concurrently,
// preserving document order in the output.
func (s *ListScraper) processPage(doc *goquery.Document, pageURL string) ([]Event, []URLError) {
	blocks := doc.Find(s.sel.EventList)

	type slot struct {
		event *Event
		err   *URLError
	}
	slots := make([]slot, blocks.Length())

	var wg sync.WaitGroup
	blocks.Each(func(i int, sel *goquery.Selection) {
		wg.Add(1)
		go func(i int, sel *goquery.Selection) {
			defer wg.Done()
			event, err := s.processBlock(sel, pageURL)
			if err != nil {
				slots[i].err = &URLError{URL: pageURL, Error: err.Error()}
				return
			}
			slots[i].event = event
		}(i, sel)
	})
	wg.Wait()

	var events []Event
	var errs []URLError
	for _, sl := range slots {
		if sl.event != nil {
			events = append(events, *sl.event)
		}
		if sl.err != nil {
			errs = append(errs, *sl.err)
		}
	}
	return events, errs
}

// processBlock extracts one event from a listing block
func (s *ListScraper) processBlock(sel *goquery.Selection, pageURL string) (*Event, error) {
	raw := RawEvent{Source: string(s.kind)}

	titleSel := sel.Find(s.sel.Title)
	if titleAttr, exists := titleSel.Attr("title"); exists && titleAttr != "" {
		raw.Title = strings.TrimSpace(titleAttr)
	} else {
		raw.Title = strings.TrimSpace(titleSel.Text())
	}

	raw.DateText = strings.TrimSpace(sel.Find(s.sel.DateText).Text())
	raw.LocationText = strings.TrimSpace(sel.Find(s.sel.Location).Text())

	if s.sel.Image != "" {
		if src, exists := sel.Find(s.sel.Image).Attr("src"); exists {
			raw.CoverImageURL = helpers.ResolveURL(s.baseURL, src)
		}
	}

	if link, exists := sel.Find(s.sel.Link).Attr("href"); exists {
		raw.EventURL = helpers.ResolveURL(s.baseURL, link)
	}

	if raw.EventURL != "" && s.idFn != nil {
		id, err := s.idFn(raw.EventURL)
		if err == nil {
			raw.ExternalID = id
		}
	}

	event, err := s.norm.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// nextPageURL resolves the pagination link, if any
func (s *ListScraper) nextPageURL(doc *goquery.Document, pageURL string) string {
	if s.sel.NextPage == "" {
		return ""
	}
	href, exists := doc.Find(s.sel.NextPage).First().Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return ""
	}
	return helpers.ResolveURL(pageURL, href)
}
