package scraping

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"rentalhunter/config"
	"rentalhunter/internal/models"
)

var (
	redfinJSONPrefix        = []byte("{}&&")
	redfinServerStateMarker = regexp.MustCompile(`window\.__reactServerState\s*=\s*`)
)

// RedfinAdapter queries Redfin's GIS API and falls back to the rentals search page
type RedfinAdapter struct {
	baseURL string
	profile config.SearchProfile
	fetcher *Fetcher
	builder *builder
	logger  *logrus.Logger
}

func NewRedfinAdapter(profile config.SearchProfile, fetcher *Fetcher, logger *logrus.Logger) *RedfinAdapter {
	return &RedfinAdapter{
		baseURL: profile.Endpoints.Redfin,
		profile: profile,
		fetcher: fetcher,
		builder: newBuilder(models.SourceRedfin, profile).withBounds(profile.Metro.Bounds.Bound()),
		logger:  defaultLogger(logger),
	}
}

func (a *RedfinAdapter) Source() models.Source {
	return models.SourceRedfin
}

// APIURL builds the GIS API request for the metro region
func (a *RedfinAdapter) APIURL() string {
	m, c := a.profile.Metro, a.profile.Criteria

	params := url.Values{}
	params.Set("al", "1")
	params.Set("include_nearby_homes", "true")
	params.Set("isRentals", "true")
	params.Set("num_homes", "100")
	params.Set("page_number", "1")
	params.Set("region_id", strconv.Itoa(m.RedfinRegionID))
	params.Set("region_type", strconv.Itoa(m.RedfinRegionType))
	params.Set("sf", "1,2,5,6,7")
	params.Set("status", "9")
	params.Set("v", "8")
	params.Set("poly", polyParam(m.Bounds.Bound()))
	if c.PropertyType == "house" {
		params.Set("uipt", "1")
	}
	if c.Sort == "newest" {
		params.Set("ord", "days-on-redfin-asc")
	}
	if c.MinSqft > 0 {
		params.Set("min_sqft", strconv.Itoa(c.MinSqft))
	}
	if c.MaxRent > 0 {
		params.Set("max_price", strconv.Itoa(c.MaxRent))
	}

	return a.baseURL + "/stingray/api/gis?" + params.Encode()
}

// SearchURL builds the rentals search page for the metro
func (a *RedfinAdapter) SearchURL() string {
	c := a.profile.Criteria

	var filters []string
	if c.PropertyType != "" {
		filters = append(filters, "property-type="+c.PropertyType)
	}
	if c.MinSqft > 0 {
		filters = append(filters, "min-sqft="+strconv.Itoa(c.MinSqft))
	}
	if c.MaxRent > 0 {
		filters = append(filters, "max-price="+strconv.Itoa(c.MaxRent))
	}

	return a.baseURL + a.profile.Metro.RedfinCityPath + "/apartments-for-rent/filter/" + strings.Join(filters, ",")
}

// polyParam renders the bound as Redfin's "lng lat,lng lat,..." ring
func polyParam(b orb.Bound) string {
	ring := b.ToRing()
	points := make([]string, len(ring))
	for i, p := range ring {
		points[i] = fmt.Sprintf("%.4f %.4f", p.Lon(), p.Lat())
	}
	return strings.Join(points, ",")
}

func (a *RedfinAdapter) Fetch(ctx context.Context) ([]models.Listing, error) {
	pages := newPageCache(a.fetcher)
	apiURL, searchURL := a.APIURL(), a.SearchURL()

	strategies := []Strategy{
		{Name: "gis-api", Extract: func(ctx context.Context) ([]RawListing, error) {
			body, err := pages.get(ctx, apiURL, acceptJSON)
			if err != nil {
				return nil, err
			}
			homes, err := a.gisHomes(body)
			if err != nil {
				return nil, err
			}
			return a.raws(homes), nil
		}},
		{Name: "react-server-state", Extract: func(ctx context.Context) ([]RawListing, error) {
			body, err := pages.get(ctx, searchURL, acceptHTML)
			if err != nil {
				return nil, err
			}
			homes, err := a.serverStateHomes(body)
			if err != nil {
				return nil, err
			}
			return a.raws(homes), nil
		}},
		{Name: "home-cards", Extract: func(ctx context.Context) ([]RawListing, error) {
			body, err := pages.get(ctx, searchURL, acceptHTML)
			if err != nil {
				return nil, err
			}
			return parseCards(body, a.cards(), a.baseURL)
		}},
	}
	return runCascade(ctx, a.builder, strategies, a.logger)
}

func (a *RedfinAdapter) cards() cardLayout {
	return cardLayout{
		Card:         `[class*="HomeCard"]`,
		Address:      `[class*="homeAddress"]`,
		Price:        `[class*="homecardV2Price"]`,
		LinkContains: "/" + a.profile.Metro.State + "/",
		Photo:        "img",
	}
}

// gisHomes strips the anti-hijacking prefix and reads the homes array
func (a *RedfinAdapter) gisHomes(body []byte) ([]map[string]interface{}, error) {
	body = bytes.TrimPrefix(bytes.TrimSpace(body), redfinJSONPrefix)

	data, err := decodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode GIS response: %w", err)
	}
	return firstRecords(data, []string{"payload", "homes"}, []string{"homes"}), nil
}

func (a *RedfinAdapter) serverStateHomes(body []byte) ([]map[string]interface{}, error) {
	data, err := decodeAfter(body, redfinServerStateMarker)
	if err != nil {
		return nil, err
	}
	state, ok := data.(map[string]interface{})
	if !ok {
		return nil, ErrNotApplicable
	}

	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var homes []map[string]interface{}
	for _, k := range keys {
		value := state[k]
		if found := records(dig(value, "homes")); len(found) > 0 {
			homes = append(homes, found...)
		} else {
			homes = append(homes, records(dig(value, "searchResults", "homes"))...)
		}
	}
	return homes, nil
}

func (a *RedfinAdapter) raws(homes []map[string]interface{}) []RawListing {
	raws := make([]RawListing, 0, len(homes))
	for _, home := range homes {
		raws = append(raws, a.raw(home))
	}
	return raws
}

func (a *RedfinAdapter) raw(home map[string]interface{}) RawListing {
	r := RawListing{
		Street:     firstText(dig(home, "streetLine", "value"), home["streetLine"], home["address"]),
		City:       text(home["city"]),
		State:      text(home["state"]),
		PostalCode: firstText(home["zip"], dig(home, "postalCode", "value")),
		Price:      firstValue(dig(home, "priceInfo", "amount"), dig(home, "price", "value"), home["price"]),
		Beds:       home["beds"],
		Baths:      home["baths"],
		Sqft:       firstValue(dig(home, "sqFt", "value"), dig(home, "sqftInfo", "amount")),
		PhotoURL:   firstText(dig(home, "photos", "primaryPhotoUrl", "value"), home["primaryPhotoUrl"]),
		Location: coordinates(
			dig(home, "latLong", "value", "latitude"),
			dig(home, "latLong", "value", "longitude"),
		),
	}

	if path := text(home["url"]); path != "" {
		r.URL = absoluteURL(a.baseURL, path)
	} else if id := firstText(home["listingId"], dig(home, "mlsId", "value")); id != "" {
		r.URL = fmt.Sprintf("%s/%s/%s/%s", a.baseURL, a.profile.Metro.State, strings.ReplaceAll(a.profile.Metro.City, " ", "-"), id)
	}
	return r
}
