package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"eventscout/helpers"
)

// NewClubCafe creates the ClubCafe listing scraper. ClubCafe paginates its
// calendar, so the scraper follows "next" links up to the page limit and
// pulls venue metadata off the first page.
func NewClubCafe(deps Deps) *ListScraper {
	return NewListScraper(ListConfig{
		Kind:      KindClubCafe,
		BaseURL:   "https://www.clubcafe.com",
		CacheKey:  "clubcafe_rate_limited",
		BlockTime: 500,
		Selectors: Selectors{
			EventList: "div.event-listing div.event-item",
			Title:     "h3.event-title a",
			DateText:  "span.event-date",
			Location:  "div.event-venue",
			Image:     "div.event-image img",
			Link:      "h3.event-title a",
			NextPage:  "ul.pagination li.next a",
		},
		IDExtractor: func(link string) (string, error) {
			baseLink := strings.Split(link, "?")[0]
			return helpers.GetSplitPart(strings.TrimRight(baseLink, "/"), "/", 4)
		},
		VenueExtractor: func(doc *goquery.Document) *Venue {
			name := strings.TrimSpace(doc.Find("h1.venue-name").Text())
			if name == "" {
				return nil
			}
			blob := name + "\n" + strings.TrimSpace(doc.Find("div.venue-address").Text())
			_, address, city, state := SplitLocation(blob)
			return &Venue{Name: name, Address: address, City: city, State: state}
		},
	}, deps)
}
