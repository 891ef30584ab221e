package scraping

import (
	"context"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalhunter/internal/models"
)

const zillowPath = "/st-petersburg-fl/rentals/"

func TestZillowSearchURL(t *testing.T) {
	a := NewZillowAdapter(testProfile("https://www.zillow.com"), testFetcher(), testLogger())

	u, err := url.Parse(a.SearchURL())
	require.NoError(t, err)
	assert.Equal(t, zillowPath, u.Path)

	state := u.Query().Get("searchQueryState")
	assert.Contains(t, state, `"monthlyPayment":{"max":7000}`)
	assert.Contains(t, state, `"sqft":{"min":1500}`)
	assert.Contains(t, state, `"isCondo":{"value":false}`)
	assert.Contains(t, state, `"isForRent":{"value":true}`)
}

func TestZillowFetch(t *testing.T) {
	tests := []struct {
		name     string
		fixture  string
		expected []string
	}{
		{
			name:     "Next data list results",
			fixture:  "zillow_next_data_v1.html",
			expected: []string{"123 N Main St", "45 Bay Dr"},
		},
		{
			name:     "Inline list results",
			fixture:  "zillow_inline_v1.html",
			expected: []string{"610 Coffee Pot Blvd NE"},
		},
		{
			name:     "GDP client cache",
			fixture:  "zillow_gdp_cache_v1.html",
			expected: []string{"700 4th St N"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := serveFixtures(t, map[string]string{zillowPath: tt.fixture})
			a := NewZillowAdapter(testProfile(server.URL), testFetcher(), testLogger())

			listings, err := a.Fetch(context.Background())
			require.NoError(t, err)

			streets := make([]string, len(listings))
			for i, l := range listings {
				streets[i] = l.Street
				assert.Equal(t, models.SourceZillow, l.Source)
				assert.NoError(t, l.Validate())
			}
			assert.Equal(t, tt.expected, streets)
		})
	}
}

func TestZillowNextDataFields(t *testing.T) {
	server, _ := serveFixtures(t, map[string]string{zillowPath: "zillow_next_data_v1.html"})
	a := NewZillowAdapter(testProfile(server.URL), testFetcher(), testLogger())

	listings, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "St Petersburg", first.City)
	assert.Equal(t, "FL", first.State)
	assert.Equal(t, "33701", first.PostalCode)
	assert.Equal(t, 4400, first.Price)
	assert.Equal(t, 3, *first.Beds)
	assert.Equal(t, 2.5, *first.Baths)
	assert.Equal(t, 1850, *first.Sqft)
	assert.Equal(t, "https://www.zillow.com/homedetails/123-N-Main-St/111_zpid/", first.URL)
	assert.Equal(t, "https://photos.example.com/111.jpg", first.PhotoURL)

	second := listings[1]
	assert.Equal(t, "33704", second.PostalCode)
	assert.Equal(t, 3200, second.Price)
	assert.Equal(t, 2100, *second.Sqft)
	assert.Equal(t, server.URL+"/homedetails/222_zpid/", second.URL)
	assert.Equal(t, "https://photos.example.com/222.jpg", second.PhotoURL)
}

func TestZillowCardFallbackIsCapped(t *testing.T) {
	server, _ := serveFixtures(t, map[string]string{zillowPath: "zillow_cards_v1.html"})
	a := NewZillowAdapter(testProfile(server.URL), testFetcher(), testLogger())

	listings, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, maxCards)

	first := listings[0]
	assert.Equal(t, "1 Test St", first.Street)
	assert.Equal(t, 3001, first.Price)
	assert.Equal(t, 3, *first.Beds)
	assert.Equal(t, 2.0, *first.Baths)
	assert.Equal(t, 1600, *first.Sqft)
	assert.Equal(t, server.URL+"/homedetails/1-Test-St/901_zpid/", first.URL)
	assert.True(t, strings.HasSuffix(first.PhotoURL, "card1.jpg"))
}

func TestZillowTransportFailure(t *testing.T) {
	server, hits := serveFixtures(t, map[string]string{zillowPath: "403"})
	a := NewZillowAdapter(testProfile(server.URL), testFetcher(), testLogger())

	listings, err := a.Fetch(context.Background())
	assert.Empty(t, listings)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}
