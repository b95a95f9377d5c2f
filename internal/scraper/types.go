package scraper

import (
	"context"
	"fmt"

	"eventscout/helpers"
	"eventscout/services/cache"
)

// Visibility values for scraped events
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Event status values for scraped events
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Event is an ephemeral, source-normalized event record prior to
// persistence. Title and StartAt are always present; everything else may be
// empty.
type Event struct {
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	CoverImageURL string   `json:"coverImageUrl,omitempty"`
	EventURL      string   `json:"eventUrl,omitempty"`
	ExternalID    string   `json:"externalId,omitempty"`
	StartAt       string   `json:"startAt"`
	EndAt         string   `json:"endAt,omitempty"`
	VenueName     string   `json:"venueName,omitempty"`
	Address       string   `json:"address,omitempty"`
	City          string   `json:"city,omitempty"`
	State         string   `json:"state,omitempty"`
	Categories    []string `json:"categories"`
	Visibility    string   `json:"visibility"`
	Source        string   `json:"source"`
	EventStatus   string   `json:"eventStatus"`
}

// URLError captures a per-URL failure inside an otherwise successful batch
type URLError struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Venue carries venue metadata extracted alongside a listing page
type Venue struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
}

// Organizer carries organizer metadata extracted alongside event pages
type Organizer struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Result is the common scrape response shape
type Result struct {
	Venue       *Venue     `json:"venue,omitempty"`
	Organizer   *Organizer `json:"organizer,omitempty"`
	Events      []Event    `json:"events"`
	TotalEvents int        `json:"totalEvents"`
	Errors      []URLError `json:"errors,omitempty"`
}

// Kind identifies an external event source
type Kind string

const (
	KindDice         Kind = "dice"
	KindPosh         Kind = "posh"
	KindClubCafe     Kind = "clubcafe"
	KindTicketmaster Kind = "ticketmaster"
)

// ParseKind validates a source slug
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDice, KindPosh, KindClubCafe, KindTicketmaster:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown scraper kind: %q", s)
}

// Request is the source-specific request descriptor. Which fields apply
// depends on the kind: Dice and ClubCafe take URL, Posh takes URLs, and
// Ticketmaster takes VenueName plus a 2-letter StateCode.
type Request struct {
	URL       string
	URLs      []string
	VenueName string
	StateCode string
	MaxPages  int
}

// Scraper turns one source's raw payload into zero or more Events.
// Per-item failures are surfaced in the Result's Errors list and never
// abort sibling items; only structural failures return a non-nil error.
type Scraper interface {
	Scrape(ctx context.Context, req Request) (*Result, error)
	Kind() Kind
}

// Deps bundles the collaborators shared by all scrapers
type Deps struct {
	Fetcher    *helpers.Fetcher
	Cache      cache.CacheService
	Normalizer *Normalizer
	MaxPages   int

	// Ticketmaster search API
	TicketmasterBaseURL string
	TicketmasterAPIKey  string
}
