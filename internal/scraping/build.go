package scraping

import (
	"errors"

	"github.com/paulmach/orb"

	"rentalhunter/config"
	"rentalhunter/internal/models"
	"rentalhunter/internal/normalize"
)

var (
	errNoStreet = errors.New("record has no street address")
	errNoPrice  = errors.New("record has no price")
)

type LatLng struct {
	Lat float64
	Lng float64
}

// RawListing is one upstream record before normalization
type RawListing struct {
	Street     string
	City       string
	State      string
	PostalCode string

	Price interface{}
	Beds  interface{}
	Baths interface{}
	Sqft  interface{}

	URL      string
	PhotoURL string

	Location *LatLng
}

// builder turns raw records into listings and applies the search criteria
type builder struct {
	source   models.Source
	metro    config.Metro
	criteria config.Criteria
	bounds   *orb.Bound
}

func newBuilder(source models.Source, profile config.SearchProfile) *builder {
	return &builder{
		source:   source,
		metro:    profile.Metro,
		criteria: profile.Criteria,
	}
}

// withBounds makes the builder drop records whose coordinates fall outside b
func (b *builder) withBounds(bound orb.Bound) *builder {
	b.bounds = &bound
	return b
}

func (b *builder) build(raw RawListing) (models.Listing, error) {
	if raw.Street == "" {
		return models.Listing{}, errNoStreet
	}

	price, err := normalize.Price(raw.Price)
	if err != nil {
		return models.Listing{}, errNoPrice
	}

	l := models.Listing{
		Street:     raw.Street,
		City:       raw.City,
		State:      raw.State,
		PostalCode: raw.PostalCode,
		Price:      price,
		Beds:       normalize.Beds(raw.Beds),
		Baths:      normalize.Baths(raw.Baths),
		Sqft:       normalize.Sqft(raw.Sqft),
		URL:        raw.URL,
		PhotoURL:   raw.PhotoURL,
		Source:     b.source,
	}
	if l.City == "" {
		l.City = b.metro.City
	}
	if l.State == "" {
		l.State = b.metro.State
	}

	if err := l.Validate(); err != nil {
		return models.Listing{}, err
	}
	return l, nil
}

// admits reports whether a listing satisfies the search criteria.
// A listing with unknown area is kept.
func (b *builder) admits(l models.Listing, loc *LatLng) bool {
	if l.Sqft != nil && *l.Sqft < b.criteria.MinSqft {
		return false
	}
	if b.criteria.MaxRent > 0 && l.Price > b.criteria.MaxRent {
		return false
	}
	if b.bounds != nil && loc != nil && !b.bounds.Contains(orb.Point{loc.Lng, loc.Lat}) {
		return false
	}
	return true
}
