package scraper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ldStringOrList accepts a JSON value that schema.org publishers emit as
// either a single string or a list of strings.
type ldStringOrList []string

func (l *ldStringOrList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = ldStringOrList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = ldStringOrList(list)
		return nil
	}
	// Unexpected shape (e.g. ImageObject); not worth failing the event over
	*l = nil
	return nil
}

// First returns the first value, or empty
func (l ldStringOrList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// ldAddress accepts either a plain string or a schema.org PostalAddress
type ldAddress struct {
	Text            string
	StreetAddress   string
	AddressLocality string
	AddressRegion   string
}

func (a *ldAddress) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		a.Text = text
		return nil
	}
	var obj struct {
		StreetAddress   string `json:"streetAddress"`
		AddressLocality string `json:"addressLocality"`
		AddressRegion   string `json:"addressRegion"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.StreetAddress = obj.StreetAddress
	a.AddressLocality = obj.AddressLocality
	a.AddressRegion = obj.AddressRegion
	return nil
}

type ldLocation struct {
	Name    string    `json:"name"`
	Address ldAddress `json:"address"`
}

type ldOrganizer struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ldEvent is the subset of a schema.org Event block the Posh parser maps
type ldEvent struct {
	Type        ldStringOrList `json:"@type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	StartDate   string         `json:"startDate"`
	EndDate     string         `json:"endDate"`
	URL         string         `json:"url"`
	Image       ldStringOrList `json:"image"`
	EventStatus string         `json:"eventStatus"`
	Location    ldLocation     `json:"location"`
	Organizer   ldOrganizer    `json:"organizer"`
}

// isEvent reports whether the @type marks a schema.org Event (or one of
// its subtypes like MusicEvent).
func (e *ldEvent) isEvent() bool {
	for _, t := range e.Type {
		if strings.HasSuffix(t, "Event") {
			return true
		}
	}
	return false
}

// cancelled reports whether the eventStatus signals cancellation
func (e *ldEvent) cancelled() bool {
	return strings.Contains(e.EventStatus, "Cancelled")
}

// extractEventJSONLD finds the first schema.org Event block among the
// page's ld+json scripts. Blocks that fail to decode are skipped; only a
// page with no usable Event block at all is an error.
func extractEventJSONLD(doc *goquery.Document) (*ldEvent, error) {
	var found *ldEvent

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		data := []byte(sel.Text())

		var single ldEvent
		if err := json.Unmarshal(data, &single); err == nil && single.isEvent() {
			found = &single
			return false
		}

		var list []ldEvent
		if err := json.Unmarshal(data, &list); err == nil {
			for i := range list {
				if list[i].isEvent() {
					found = &list[i]
					return false
				}
			}
		}
		return true
	})

	if found == nil {
		return nil, fmt.Errorf("no schema.org Event JSON-LD block found")
	}
	return found, nil
}
