package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"eventscout/helpers"
)

// Ticketmaster queries the Discovery search API by venue name and state
// code. No HTML parsing; the JSON results map directly onto events.
type Ticketmaster struct {
	fetcher *helpers.Fetcher
	baseURL string
	apiKey  string
	norm    *Normalizer
}

// NewTicketmaster creates the Ticketmaster scraper
func NewTicketmaster(deps Deps) *Ticketmaster {
	return &Ticketmaster{
		fetcher: deps.Fetcher,
		baseURL: deps.TicketmasterBaseURL,
		apiKey:  deps.TicketmasterAPIKey,
		norm:    deps.Normalizer,
	}
}

// Kind returns the source kind
func (t *Ticketmaster) Kind() Kind {
	return KindTicketmaster
}

type tmVenue struct {
	Name    string `json:"name"`
	Address struct {
		Line1 string `json:"line1"`
	} `json:"address"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	State struct {
		StateCode string `json:"stateCode"`
	} `json:"state"`
}

type tmEvent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Info   string `json:"info"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Dates struct {
		Start struct {
			DateTime string `json:"dateTime"`
		} `json:"start"`
		End struct {
			DateTime string `json:"dateTime"`
		} `json:"end"`
		Status struct {
			Code string `json:"code"`
		} `json:"status"`
	} `json:"dates"`
	Embedded struct {
		Venues []tmVenue `json:"venues"`
	} `json:"_embedded"`
}

type tmResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
}

// Scrape searches the API for events at the named venue. Result order
// follows the API response; per-item mapping failures are recorded
// without aborting the batch.
func (t *Ticketmaster) Scrape(ctx context.Context, req Request) (*Result, error) {
	if req.VenueName == "" {
		return nil, fmt.Errorf("ticketmaster: venue name is required")
	}
	if len(req.StateCode) != 2 {
		return nil, fmt.Errorf("ticketmaster: state code must be 2 letters, got %q", req.StateCode)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s/events.json?keyword=%s&stateCode=%s&apikey=%s",
		t.baseURL,
		url.QueryEscape(req.VenueName),
		url.QueryEscape(req.StateCode),
		url.QueryEscape(t.apiKey))

	var resp tmResponse
	if err := t.fetcher.FetchJSON(searchURL, &resp); err != nil {
		return nil, err
	}

	result := &Result{Events: []Event{}}
	for _, e := range resp.Embedded.Events {
		event, err := t.mapEvent(e)
		if err != nil {
			result.Errors = append(result.Errors, URLError{URL: e.URL, Error: err.Error()})
			continue
		}
		result.Events = append(result.Events, *event)
	}

	result.TotalEvents = len(result.Events)
	return result, nil
}

// mapEvent converts one API result into a normalized event
func (t *Ticketmaster) mapEvent(e tmEvent) (*Event, error) {
	raw := RawEvent{
		Title:       e.Name,
		Description: e.Info,
		EventURL:    e.URL,
		ExternalID:  e.ID,
		Cancelled:   e.Dates.Status.Code == "cancelled",
		Source:      string(KindTicketmaster),
	}

	if e.Dates.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, e.Dates.Start.DateTime)
		if err != nil {
			return nil, fmt.Errorf("event %q has an unparseable start time %q", e.Name, e.Dates.Start.DateTime)
		}
		raw.StartAt = start
	}
	if e.Dates.End.DateTime != "" {
		if end, err := time.Parse(time.RFC3339, e.Dates.End.DateTime); err == nil {
			raw.EndAt = end
		}
	}

	if len(e.Images) > 0 {
		raw.CoverImageURL = e.Images[0].URL
	}

	if len(e.Embedded.Venues) > 0 {
		v := e.Embedded.Venues[0]
		raw.VenueName = v.Name
		raw.Address = v.Address.Line1
		raw.City = v.City.Name
		raw.State = v.State.StateCode
	}

	event, err := t.norm.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
