package scraper

import (
	"fmt"
)

// New creates a scraper for the given source kind
func New(kind Kind, deps Deps) (Scraper, error) {
	switch kind {
	case KindDice:
		return NewDice(deps), nil
	case KindPosh:
		return NewPosh(deps), nil
	case KindClubCafe:
		return NewClubCafe(deps), nil
	case KindTicketmaster:
		return NewTicketmaster(deps), nil
	default:
		return nil, fmt.Errorf("unknown scraper kind: %q", kind)
	}
}
