package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventscout/helpers"
)

const tmSearchResponse = `{
  "_embedded": {
    "events": [
      {
        "id": "tm-1001",
        "name": "Arena Rock Tour",
        "url": "https://www.ticketmaster.com/event/tm-1001",
        "info": "All ages show",
        "images": [{"url": "https://images.tm.com/rock.jpg"}],
        "dates": {
          "start": {"dateTime": "2026-05-10T23:30:00Z"},
          "status": {"code": "onsale"}
        },
        "_embedded": {
          "venues": [{
            "name": "TD Garden",
            "address": {"line1": "100 Legends Way"},
            "city": {"name": "Boston"},
            "state": {"stateCode": "MA"}
          }]
        }
      },
      {
        "id": "tm-1002",
        "name": "Cancelled Tour",
        "url": "https://www.ticketmaster.com/event/tm-1002",
        "dates": {
          "start": {"dateTime": "2026-06-01T00:00:00Z"},
          "status": {"code": "cancelled"}
        }
      },
      {
        "id": "tm-1003",
        "name": "Date TBA Show",
        "url": "https://www.ticketmaster.com/event/tm-1003",
        "dates": {"start": {}, "status": {"code": "onsale"}}
      }
    ]
  }
}`

func newTicketmasterDeps(baseURL string) Deps {
	return Deps{
		Fetcher:             helpers.NewFetcher(5 * time.Second),
		Normalizer:          NewNormalizer(time.UTC),
		TicketmasterBaseURL: baseURL,
		TicketmasterAPIKey:  "test-key",
	}
}

func TestTicketmasterScrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events.json", r.URL.Path)
		assert.Equal(t, "TD Garden", r.URL.Query().Get("keyword"))
		assert.Equal(t, "MA", r.URL.Query().Get("stateCode"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		fmt.Fprint(w, tmSearchResponse)
	}))
	defer server.Close()

	tm := NewTicketmaster(newTicketmasterDeps(server.URL))
	result, err := tm.Scrape(context.Background(), Request{VenueName: "TD Garden", StateCode: "MA"})
	require.NoError(t, err)

	require.Len(t, result.Events, 2)
	assert.Equal(t, 2, result.TotalEvents)

	first := result.Events[0]
	assert.Equal(t, "Arena Rock Tour", first.Title)
	assert.Equal(t, "tm-1001", first.ExternalID)
	assert.Equal(t, "2026-05-10T23:30:00Z", first.StartAt)
	assert.Equal(t, "TD Garden", first.VenueName)
	assert.Equal(t, "100 Legends Way", first.Address)
	assert.Equal(t, "Boston", first.City)
	assert.Equal(t, "MA", first.State)
	assert.Equal(t, "https://images.tm.com/rock.jpg", first.CoverImageURL)
	assert.Equal(t, StatusScheduled, first.EventStatus)

	assert.Equal(t, "Cancelled Tour", result.Events[1].Title)
	assert.Equal(t, StatusCancelled, result.Events[1].EventStatus)

	// The dateless event fails mapping without aborting its siblings
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "https://www.ticketmaster.com/event/tm-1003", result.Errors[0].URL)
}

func TestTicketmasterScrapeValidation(t *testing.T) {
	tm := NewTicketmaster(newTicketmasterDeps("https://app.ticketmaster.invalid"))

	_, err := tm.Scrape(context.Background(), Request{StateCode: "MA"})
	require.Error(t, err)

	_, err = tm.Scrape(context.Background(), Request{VenueName: "TD Garden", StateCode: "Mass"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state code")
}

func TestTicketmasterScrapeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"fault":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	tm := NewTicketmaster(newTicketmasterDeps(server.URL))
	_, err := tm.Scrape(context.Background(), Request{VenueName: "TD Garden", StateCode: "MA"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
