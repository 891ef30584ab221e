package scraping

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	redfinAPIPath    = "/stingray/api/gis"
	redfinSearchPath = "/city/17193/FL/St-Petersburg/apartments-for-rent/filter/property-type=house,min-sqft=1500,max-price=7000"
)

func TestRedfinURLs(t *testing.T) {
	a := NewRedfinAdapter(testProfile("https://www.redfin.com"), testFetcher(), testLogger())

	u, err := url.Parse(a.APIURL())
	require.NoError(t, err)
	assert.Equal(t, redfinAPIPath, u.Path)

	q := u.Query()
	assert.Equal(t, "17193", q.Get("region_id"))
	assert.Equal(t, "6", q.Get("region_type"))
	assert.Equal(t, "true", q.Get("isRentals"))
	assert.Equal(t, "1", q.Get("uipt"))
	assert.Equal(t, "days-on-redfin-asc", q.Get("ord"))
	assert.Equal(t, "-82.7800 27.6500,-82.5500 27.6500,-82.5500 27.8500,-82.7800 27.8500,-82.7800 27.6500", q.Get("poly"))

	assert.Equal(t, "https://www.redfin.com"+redfinSearchPath, a.SearchURL())
}

func TestRedfinFetch(t *testing.T) {
	tests := []struct {
		name     string
		routes   map[string]string
		expected []string
	}{
		{
			name:     "GIS API",
			routes:   map[string]string{redfinAPIPath: "redfin_gis_v1.json"},
			expected: []string{"1 Oak St", "22 Pine Ave S"},
		},
		{
			name: "Server state after API refusal",
			routes: map[string]string{
				redfinAPIPath:    "403",
				redfinSearchPath: "redfin_server_state_v1.html",
			},
			expected: []string{"88 Elm St"},
		},
		{
			name: "Home cards",
			routes: map[string]string{
				redfinAPIPath:    "403",
				redfinSearchPath: "redfin_cards_v1.html",
			},
			expected: []string{"12 Gulf Blvd", "3 Bayou Dr 33707"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := serveFixtures(t, tt.routes)
			a := NewRedfinAdapter(testProfile(server.URL), testFetcher(), testLogger())

			listings, err := a.Fetch(context.Background())
			require.NoError(t, err)

			streets := make([]string, len(listings))
			for i, l := range listings {
				streets[i] = l.Street
			}
			assert.Equal(t, tt.expected, streets)
		})
	}
}

func TestRedfinHomeFields(t *testing.T) {
	server, _ := serveFixtures(t, map[string]string{redfinAPIPath: "redfin_gis_v1.json"})
	a := NewRedfinAdapter(testProfile(server.URL), testFetcher(), testLogger())

	listings, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	oak := listings[0]
	assert.Equal(t, "St. Petersburg", oak.City)
	assert.Equal(t, "33705", oak.PostalCode)
	assert.Equal(t, 3900, oak.Price)
	assert.Equal(t, 1700, *oak.Sqft)
	assert.Equal(t, server.URL+"/FL/St-Petersburg/1-Oak-St-33705/home/1001", oak.URL)
	assert.Equal(t, "https://ssl.cdn-redfin.com/1001.jpg", oak.PhotoURL)

	pine := listings[1]
	assert.Equal(t, 4100, pine.Price)
	assert.Equal(t, 2.5, *pine.Baths)
	assert.Nil(t, pine.Sqft)
	assert.Equal(t, server.URL+"/FL/St-Petersburg/999", pine.URL)
}

func TestRedfinCardFields(t *testing.T) {
	server, _ := serveFixtures(t, map[string]string{
		redfinAPIPath:    "403",
		redfinSearchPath: "redfin_cards_v1.html",
	})
	a := NewRedfinAdapter(testProfile(server.URL), testFetcher(), testLogger())

	listings, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	gulf := listings[0]
	assert.Equal(t, "St. Petersburg", gulf.City)
	assert.Equal(t, 4750, gulf.Price)
	assert.Equal(t, 4, *gulf.Beds)
	assert.Equal(t, 3.0, *gulf.Baths)
	assert.Equal(t, 2300, *gulf.Sqft)
	assert.Equal(t, server.URL+"/FL/St-Petersburg/12-Gulf-Blvd-33706/home/3001", gulf.URL)

	bayou := listings[1]
	assert.Equal(t, "St Petersburg", bayou.City)
	assert.Equal(t, "33707", bayou.PostalCode)
	assert.Nil(t, bayou.Beds)
}

func TestRedfinEmptyPage(t *testing.T) {
	server, _ := serveFixtures(t, map[string]string{
		redfinAPIPath:    "403",
		redfinSearchPath: "redfin_empty_v1.html",
	})
	a := NewRedfinAdapter(testProfile(server.URL), testFetcher(), testLogger())

	listings, err := a.Fetch(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, listings)
}
