package scraping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"

	"github.com/sirupsen/logrus"

	"rentalhunter/config"
	"rentalhunter/internal/models"
)

var (
	zillowListResultsMarker = regexp.MustCompile(`"listResults"\s*:\s*`)
	zillowGDPCacheMarker    = regexp.MustCompile(`"gdpClientCache"\s*:\s*`)
)

var zillowCards = cardLayout{
	Card:         `article[data-test="property-card"]`,
	Address:      "address",
	Price:        `[data-test="property-card-price"]`,
	LinkContains: "/homedetails/",
	Photo:        "img",
}

// ZillowAdapter reads the Zillow rentals search page
type ZillowAdapter struct {
	baseURL string
	profile config.SearchProfile
	fetcher *Fetcher
	builder *builder
	logger  *logrus.Logger
}

func NewZillowAdapter(profile config.SearchProfile, fetcher *Fetcher, logger *logrus.Logger) *ZillowAdapter {
	return &ZillowAdapter{
		baseURL: profile.Endpoints.Zillow,
		profile: profile,
		fetcher: fetcher,
		builder: newBuilder(models.SourceZillow, profile),
		logger:  defaultLogger(logger),
	}
}

func (a *ZillowAdapter) Source() models.Source {
	return models.SourceZillow
}

// SearchURL encodes the criteria as Zillow's searchQueryState parameter
func (a *ZillowAdapter) SearchURL() string {
	c := a.profile.Criteria
	flag := func(v bool) map[string]bool { return map[string]bool{"value": v} }

	filter := map[string]interface{}{
		"isForRent":            flag(true),
		"isForSaleByAgent":     flag(false),
		"isForSaleByOwner":     flag(false),
		"isNewConstruction":    flag(false),
		"isComingSoon":         flag(false),
		"isAuction":            flag(false),
		"isForSaleForeclosure": flag(false),
		"isAllHomes":           flag(true),
		"monthlyPayment":       map[string]int{"max": c.MaxRent},
		"sqft":                 map[string]int{"min": c.MinSqft},
	}
	if c.PropertyType == "house" {
		for _, k := range []string{"isApartmentOrCondo", "isTownhouse", "isManufactured", "isApartment", "isCondo"} {
			filter[k] = flag(false)
		}
	}
	if c.Sort == "newest" {
		filter["sortSelection"] = map[string]string{"value": "days"}
	}

	state := map[string]interface{}{
		"pagination":      map[string]interface{}{},
		"usersSearchTerm": a.profile.Metro.Name,
		"isMapVisible":    false,
		"isListVisible":   true,
		"filterState":     filter,
	}
	encoded, _ := json.Marshal(state)

	return fmt.Sprintf("%s/%s/rentals/?searchQueryState=%s", a.baseURL, a.profile.Metro.Slug, url.QueryEscape(string(encoded)))
}

func (a *ZillowAdapter) Fetch(ctx context.Context) ([]models.Listing, error) {
	pages := newPageCache(a.fetcher)
	searchURL := a.SearchURL()

	page := func(ctx context.Context) ([]byte, error) {
		return pages.get(ctx, searchURL, acceptHTML)
	}

	strategies := []Strategy{
		{Name: "next-data", Extract: a.fromPage(page, a.nextData)},
		{Name: "inline-list-results", Extract: a.fromPage(page, a.inlineListResults)},
		{Name: "gdp-client-cache", Extract: a.fromPage(page, a.gdpClientCache)},
		{Name: "property-cards", Extract: func(ctx context.Context) ([]RawListing, error) {
			body, err := page(ctx)
			if err != nil {
				return nil, err
			}
			return parseCards(body, zillowCards, a.baseURL)
		}},
	}
	return runCascade(ctx, a.builder, strategies, a.logger)
}

func (a *ZillowAdapter) fromPage(page func(context.Context) ([]byte, error), extract func([]byte) ([]map[string]interface{}, error)) func(context.Context) ([]RawListing, error) {
	return func(ctx context.Context) ([]RawListing, error) {
		body, err := page(ctx)
		if err != nil {
			return nil, err
		}
		items, err := extract(body)
		if err != nil {
			return nil, err
		}
		raws := make([]RawListing, 0, len(items))
		for _, item := range items {
			raws = append(raws, a.raw(item))
		}
		return raws, nil
	}
}

func (a *ZillowAdapter) nextData(body []byte) ([]map[string]interface{}, error) {
	data, err := decodeAfter(body, nextDataMarker)
	if err != nil {
		return nil, err
	}
	return firstRecords(data,
		[]string{"props", "pageProps", "searchPageState", "cat1", "searchResults", "listResults"},
		[]string{"props", "pageProps", "initialData", "searchResults", "listResults"},
	), nil
}

func (a *ZillowAdapter) inlineListResults(body []byte) ([]map[string]interface{}, error) {
	data, err := decodeAfter(body, zillowListResultsMarker)
	if err != nil {
		return nil, err
	}
	return records(data), nil
}

func (a *ZillowAdapter) gdpClientCache(body []byte) ([]map[string]interface{}, error) {
	data, err := decodeAfter(body, zillowGDPCacheMarker)
	if err != nil {
		return nil, err
	}

	// the cache is sometimes serialized as a JSON string
	if s, ok := data.(string); ok {
		if data, err = decodeJSON([]byte(s)); err != nil {
			return nil, fmt.Errorf("failed to decode gdpClientCache string: %w", err)
		}
	}

	cache, ok := data.(map[string]interface{})
	if !ok {
		return nil, ErrNotApplicable
	}

	keys := make([]string, 0, len(cache))
	for k := range cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var items []map[string]interface{}
	for _, k := range keys {
		if property, ok := dig(cache[k], "property").(map[string]interface{}); ok {
			items = append(items, property)
		}
	}
	return items, nil
}

// raw maps a list result or a gdp property record
func (a *ZillowAdapter) raw(item map[string]interface{}) RawListing {
	home := dig(item, "hdpData", "homeInfo")

	var r RawListing
	if address := text(item["address"]); address != "" {
		r.Street, r.City, r.State, r.PostalCode = splitAddress(address)
	}
	if r.City == "" {
		r.Street = firstText(item["addressStreet"], item["streetAddress"], dig(home, "streetAddress"), r.Street)
		r.City = firstText(item["addressCity"], item["city"], dig(home, "city"))
		r.State = firstText(item["addressState"], item["state"], dig(home, "state"))
		r.PostalCode = firstText(item["addressZipcode"], item["zipcode"], dig(home, "zipcode"))
	}

	r.Price = firstValue(item["unformattedPrice"], item["price"], dig(home, "price"))
	r.Beds = firstValue(item["beds"], item["bedrooms"], dig(home, "bedrooms"))
	r.Baths = firstValue(item["baths"], item["bathrooms"], dig(home, "bathrooms"))
	r.Sqft = firstValue(item["area"], item["livingArea"], dig(home, "livingArea"))

	if link := firstText(item["detailUrl"], item["hdpUrl"]); link != "" {
		r.URL = absoluteURL(a.baseURL, link)
	} else if zpid := firstText(item["zpid"], dig(home, "zpid")); zpid != "" {
		r.URL = fmt.Sprintf("%s/homedetails/%s_zpid/", a.baseURL, zpid)
	}

	var firstPhoto interface{}
	if photos := records(item["carouselPhotos"]); len(photos) > 0 {
		firstPhoto = photos[0]["url"]
	}
	r.PhotoURL = firstText(item["imgSrc"], firstPhoto)

	r.Location = coordinates(
		firstValue(dig(item, "latLong", "latitude"), item["latitude"], dig(home, "latitude")),
		firstValue(dig(item, "latLong", "longitude"), item["longitude"], dig(home, "longitude")),
	)
	return r
}
