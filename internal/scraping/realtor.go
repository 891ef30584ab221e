package scraping

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"rentalhunter/config"
	"rentalhunter/internal/models"
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9-]+`)

var realtorCards = cardLayout{
	Card:         `[data-testid="property-card"]`,
	Address:      `[data-testid^="card-address"]`,
	Price:        `[data-testid="card-price"]`,
	LinkContains: "/realestateandhomes-detail/",
	Photo:        "img",
}

// RealtorAdapter reads the realtor.com rentals search page
type RealtorAdapter struct {
	baseURL string
	profile config.SearchProfile
	fetcher *Fetcher
	builder *builder
	logger  *logrus.Logger
}

func NewRealtorAdapter(profile config.SearchProfile, fetcher *Fetcher, logger *logrus.Logger) *RealtorAdapter {
	return &RealtorAdapter{
		baseURL: profile.Endpoints.Realtor,
		profile: profile,
		fetcher: fetcher,
		builder: newBuilder(models.SourceRealtor, profile),
		logger:  defaultLogger(logger),
	}
}

func (a *RealtorAdapter) Source() models.Source {
	return models.SourceRealtor
}

// SearchURL encodes the criteria as realtor.com path segments
func (a *RealtorAdapter) SearchURL() string {
	c := a.profile.Criteria

	u := fmt.Sprintf("%s/apartments/%s", a.baseURL, a.profile.Metro.Slug)
	if c.PropertyType == "house" {
		u += "/type-single-family-home"
	}
	u += fmt.Sprintf("/price-na-%d/sqft-%d-na", c.MaxRent, c.MinSqft)
	if c.Sort == "newest" {
		u += "/sby-6"
	}
	return u
}

func (a *RealtorAdapter) Fetch(ctx context.Context) ([]models.Listing, error) {
	pages := newPageCache(a.fetcher)
	searchURL := a.SearchURL()

	strategies := []Strategy{
		{Name: "next-data", Extract: func(ctx context.Context) ([]RawListing, error) {
			body, err := pages.get(ctx, searchURL, acceptHTML)
			if err != nil {
				return nil, err
			}
			data, err := decodeAfter(body, nextDataMarker)
			if err != nil {
				return nil, err
			}
			properties := firstRecords(dig(data, "props", "pageProps"),
				[]string{"properties"},
				[]string{"searchResults", "home_search", "properties"},
				[]string{"searchResults", "properties"},
				[]string{"pageData", "searchResults", "properties"},
			)
			raws := make([]RawListing, 0, len(properties))
			for _, p := range properties {
				raws = append(raws, a.raw(p))
			}
			return raws, nil
		}},
		{Name: "property-cards", Extract: func(ctx context.Context) ([]RawListing, error) {
			body, err := pages.get(ctx, searchURL, acceptHTML)
			if err != nil {
				return nil, err
			}
			return parseCards(body, realtorCards, a.baseURL)
		}},
	}
	return runCascade(ctx, a.builder, strategies, a.logger)
}

func (a *RealtorAdapter) raw(p map[string]interface{}) RawListing {
	address := dig(p, "location", "address")

	r := RawListing{
		Street:     text(dig(address, "line")),
		City:       text(dig(address, "city")),
		State:      text(dig(address, "state_code")),
		PostalCode: text(dig(address, "postal_code")),
		Price:      firstValue(p["list_price"], p["price"], p["list_price_min"]),
		Beds:       firstValue(dig(p, "description", "beds"), dig(p, "description", "beds_min")),
		Baths:      firstValue(dig(p, "description", "baths"), dig(p, "description", "baths_min")),
		Sqft:       firstValue(dig(p, "description", "sqft"), dig(p, "description", "sqft_min")),
		Location: coordinates(
			dig(address, "coordinate", "lat"),
			dig(address, "coordinate", "lon"),
		),
	}

	switch {
	case text(p["permalink"]) != "":
		r.URL = a.baseURL + "/realestateandhomes-detail/" + text(p["permalink"])
	case text(p["property_id"]) != "":
		r.URL = a.baseURL + "/realestateandhomes-detail/" + text(p["property_id"])
	case r.Street != "":
		slug := strings.ToLower(strings.Join([]string{r.Street, r.City, r.State, r.PostalCode}, "-"))
		slug = strings.Trim(slugUnsafe.ReplaceAllString(slug, "-"), "-")
		r.URL = a.baseURL + "/realestateandhomes-detail/" + slug
	}

	var firstPhoto interface{}
	if photos := records(p["photos"]); len(photos) > 0 {
		firstPhoto = photos[0]["href"]
	}
	r.PhotoURL = firstText(firstPhoto, dig(p, "primary_photo", "href"))
	return r
}
