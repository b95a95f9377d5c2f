package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"eventscout/helpers"
)

// Posh scrapes posh.vip event pages. Each event page embeds a schema.org
// Event block as JSON-LD; group pages (/g/...) list many event URLs and
// are expanded one level before fetching.
type Posh struct {
	baseScraper
	norm *Normalizer
}

// NewPosh creates the Posh scraper
func NewPosh(deps Deps) *Posh {
	return &Posh{
		baseScraper: baseScraper{
			fetcher:   deps.Fetcher,
			cacheSvc:  deps.Cache,
			cacheKey:  "posh_rate_limited",
			blockTime: 500 * time.Second,
			source:    string(KindPosh),
		},
		norm: deps.Normalizer,
	}
}

// Kind returns the source kind
func (p *Posh) Kind() Kind {
	return KindPosh
}

// Scrape fetches each event URL, extracts its JSON-LD Event block, and
// normalizes the result. A malformed or unreachable URL records a per-URL
// error and never prevents sibling URLs from succeeding. Input order is
// preserved in the output.
func (p *Posh) Scrape(ctx context.Context, req Request) (*Result, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("posh: no event URLs provided")
	}

	result := &Result{Events: []Event{}}

	eventURLs := p.expandGroups(req.URLs, result)

	type slot struct {
		event *Event
		org   *Organizer
		err   *URLError
	}
	slots := make([]slot, len(eventURLs))

	var wg sync.WaitGroup
	for i, u := range eventURLs {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			event, org, err := p.scrapeEventPage(u)
			if err != nil {
				slots[i].err = &URLError{URL: u, Error: err.Error()}
				return
			}
			slots[i].event = event
			slots[i].org = org
		}(i, u)
	}
	wg.Wait()

	for _, sl := range slots {
		if sl.event != nil {
			result.Events = append(result.Events, *sl.event)
		}
		if sl.err != nil {
			result.Errors = append(result.Errors, *sl.err)
		}
		if result.Organizer == nil && sl.org != nil {
			result.Organizer = sl.org
		}
	}

	result.TotalEvents = len(result.Events)
	return result, nil
}

// expandGroups replaces group URLs with the event URLs they list,
// recording fetch failures on the result. Expansion goes one level deep;
// group pages only ever link to event pages.
func (p *Posh) expandGroups(urls []string, result *Result) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}

	for _, u := range urls {
		if !isGroupURL(u) {
			add(u)
			continue
		}

		doc, err := p.fetchDocument(u)
		if err != nil {
			result.Errors = append(result.Errors, URLError{URL: u, Error: err.Error()})
			continue
		}

		if result.Organizer == nil {
			if name := strings.TrimSpace(doc.Find("h1").First().Text()); name != "" {
				result.Organizer = &Organizer{Name: name, URL: u}
			}
		}

		doc.Find(`a[href*="/e/"]`).Each(func(_ int, sel *goquery.Selection) {
			if href, exists := sel.Attr("href"); exists {
				add(helpers.ResolveURL(u, href))
			}
		})
	}

	return out
}

// scrapeEventPage fetches one event page and maps its JSON-LD block
func (p *Posh) scrapeEventPage(pageURL string) (*Event, *Organizer, error) {
	doc, err := p.fetchDocument(pageURL)
	if err != nil {
		return nil, nil, err
	}

	ld, err := extractEventJSONLD(doc)
	if err != nil {
		return nil, nil, err
	}

	raw := RawEvent{
		Title:         ld.Name,
		Description:   ld.Description,
		CoverImageURL: ld.Image.First(),
		EventURL:      pageURL,
		ExternalID:    poshExternalID(pageURL),
		DateText:      ld.StartDate,
		EndDateText:   ld.EndDate,
		VenueName:     ld.Location.Name,
		Address:       ld.Location.Address.StreetAddress,
		City:          ld.Location.Address.AddressLocality,
		State:         ld.Location.Address.AddressRegion,
		Cancelled:     ld.cancelled(),
		Source:        string(KindPosh),
	}
	if raw.VenueName == "" && ld.Location.Address.Text != "" {
		raw.LocationText = ld.Location.Address.Text
	}

	event, err := p.norm.Normalize(raw)
	if err != nil {
		return nil, nil, err
	}

	var org *Organizer
	if ld.Organizer.Name != "" {
		org = &Organizer{Name: ld.Organizer.Name, URL: ld.Organizer.URL}
	}

	return &event, org, nil
}

// isGroupURL reports whether the URL points at a group listing rather
// than a single event page.
func isGroupURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return strings.HasPrefix(parsed.Path, "/g/")
}

// poshExternalID extracts the event slug after /e/
func poshExternalID(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	path := strings.TrimRight(parsed.Path, "/")
	idx := strings.LastIndex(path, "/e/")
	if idx < 0 {
		return ""
	}
	return path[idx+len("/e/"):]
}
