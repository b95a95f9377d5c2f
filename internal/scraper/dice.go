package scraper

import (
	"strings"

	"eventscout/helpers"
)

// NewDice creates the Dice listing scraper. Dice serves a single listing
// page per venue; event ids live in the last path segment of the detail
// URL (https://dice.fm/event/<id>).
func NewDice(deps Deps) *ListScraper {
	return NewListScraper(ListConfig{
		Kind:      KindDice,
		BaseURL:   "https://dice.fm",
		CacheKey:  "dice_rate_limited",
		BlockTime: 500,
		Selectors: Selectors{
			EventList: "article.EventCard",
			Title:     "div.EventCard__Title",
			DateText:  "div.EventCard__Date",
			Location:  "div.EventCard__Venue",
			Image:     "img.EventCard__Image",
			Link:      "a.EventCard__Link",
		},
		IDExtractor: func(link string) (string, error) {
			baseLink := strings.Split(link, "?")[0]
			return helpers.GetSplitPart(strings.TrimRight(baseLink, "/"), "/", 4)
		},
	}, deps)
}
