package runner

import (
	"context"
	"fmt"
	"strings"

	"eventscout/internal/database"
	"eventscout/internal/importer"
	"eventscout/internal/scraper"
	"eventscout/logger"
	pkgerrors "eventscout/pkg/errors"
)

// Runner executes a configured scraper end to end: load the linked place,
// dispatch by source kind, scrape, and push the results through the
// import gate.
type Runner struct {
	places *database.PlaceRepository
	imp    *importer.Importer
	deps   scraper.Deps
	log    *logger.Logger
}

// New creates a runner
func New(places *database.PlaceRepository, imp *importer.Importer, deps scraper.Deps) *Runner {
	return &Runner{
		places: places,
		imp:    imp,
		deps:   deps,
		log:    logger.ForComponent("runner"),
	}
}

// Run executes one scraper config and imports whatever it yields
func (r *Runner) Run(ctx context.Context, sc database.ScraperConfig) (*scraper.Result, *importer.Result, error) {
	place, err := r.places.GetPlace(ctx, sc.PlaceID)
	if err != nil {
		return nil, nil, err
	}
	if place == nil {
		return nil, nil, pkgerrors.NewNotFound("runner",
			fmt.Sprintf("place %s linked to scraper config %s does not exist", sc.PlaceID, sc.ID))
	}

	kind, err := scraper.ParseKind(sc.Scraper)
	if err != nil {
		return nil, nil, pkgerrors.NewConfiguration(err.Error(), err)
	}

	req, err := buildRequest(kind, sc, place)
	if err != nil {
		return nil, nil, err
	}

	s, err := scraper.New(kind, r.deps)
	if err != nil {
		return nil, nil, pkgerrors.NewConfiguration(err.Error(), err)
	}

	result, err := s.Scrape(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	impReq := importer.Request{
		SourceURL: req.URL,
		Events:    toIncoming(result.Events),
	}
	switch place.Kind {
	case database.PlaceKindOrganizer:
		impReq.OrganizerID = place.ID
	default:
		impReq.VenueID = place.ID
	}

	impRes, err := r.imp.BatchCreateEvents(ctx, impReq)
	if err != nil {
		return result, nil, err
	}

	r.log.Info().
		Str("scraper", sc.Scraper).
		Str("place", place.Name).
		Int("scraped", result.TotalEvents).
		Int("created", impRes.Created).
		Int("skipped", impRes.Skipped).
		Int("failed", impRes.Failed).
		Msg("Ran scraper config")

	return result, impRes, nil
}

// buildRequest maps a config row's search string onto the source-specific
// request descriptor.
func buildRequest(kind scraper.Kind, sc database.ScraperConfig, place *database.Place) (scraper.Request, error) {
	switch kind {
	case scraper.KindDice, scraper.KindClubCafe:
		if sc.SearchString == "" {
			return scraper.Request{}, pkgerrors.NewConfiguration(
				fmt.Sprintf("scraper config %s has no listing URL", sc.ID), nil)
		}
		return scraper.Request{URL: sc.SearchString}, nil

	case scraper.KindPosh:
		urls := splitURLs(sc.SearchString)
		if len(urls) == 0 {
			return scraper.Request{}, pkgerrors.NewConfiguration(
				fmt.Sprintf("scraper config %s has no event URLs", sc.ID), nil)
		}
		return scraper.Request{URLs: urls}, nil

	case scraper.KindTicketmaster:
		if len(place.State) != 2 {
			return scraper.Request{}, pkgerrors.NewConfiguration(
				fmt.Sprintf("place %q needs a 2-letter state for ticketmaster scraping", place.Name), nil)
		}
		venueName := sc.SearchString
		if venueName == "" {
			venueName = place.Name
		}
		return scraper.Request{VenueName: venueName, StateCode: place.State}, nil
	}

	return scraper.Request{}, pkgerrors.NewConfiguration(fmt.Sprintf("unknown scraper kind %q", kind), nil)
}

// splitURLs splits a comma- or whitespace-separated URL list
func splitURLs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	var urls []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			urls = append(urls, f)
		}
	}
	return urls
}

// toIncoming wraps scraped events for the import gate
func toIncoming(events []scraper.Event) []importer.IncomingEvent {
	incoming := make([]importer.IncomingEvent, len(events))
	for i, e := range events {
		incoming[i] = importer.IncomingEvent{Event: e}
	}
	return incoming
}
