package scraping

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalhunter/internal/models"
)

const realtorPath = "/apartments/st-petersburg-fl/type-single-family-home/price-na-7000/sqft-1500-na/sby-6"

func TestRealtorSearchURL(t *testing.T) {
	a := NewRealtorAdapter(testProfile("https://www.realtor.com"), testFetcher(), testLogger())
	assert.Equal(t, "https://www.realtor.com"+realtorPath, a.SearchURL())
}

func TestRealtorNextData(t *testing.T) {
	server, _ := serveFixtures(t, map[string]string{realtorPath: "realtor_next_data_v1.html"})
	a := NewRealtorAdapter(testProfile(server.URL), testFetcher(), testLogger())

	listings, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	central := listings[0]
	assert.Equal(t, models.SourceRealtor, central.Source)
	assert.Equal(t, "100 Central Ave", central.Street)
	assert.Equal(t, "Saint Petersburg", central.City)
	assert.Equal(t, 4600, central.Price)
	assert.Equal(t, 1900, *central.Sqft)
	assert.Equal(t, server.URL+"/realestateandhomes-detail/100-Central-Ave_Saint-Petersburg_FL_33701_M55512-34567", central.URL)
	assert.Equal(t, "https://ap.rdcpix.com/100.jpg", central.PhotoURL)

	shore := listings[1]
	assert.Equal(t, 3300, shore.Price)
	assert.Equal(t, 3, *shore.Beds)
	assert.Equal(t, 1600, *shore.Sqft)
	assert.Equal(t, server.URL+"/realestateandhomes-detail/8-shore-dr-ne-saint-petersburg-fl-33704", shore.URL)
	assert.Equal(t, "https://ap.rdcpix.com/8.jpg", shore.PhotoURL)
}

func TestRealtorCards(t *testing.T) {
	server, _ := serveFixtures(t, map[string]string{realtorPath: "realtor_cards_v1.html"})
	a := NewRealtorAdapter(testProfile(server.URL), testFetcher(), testLogger())

	listings, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)

	l := listings[0]
	assert.Equal(t, "540 9th Ave N", l.Street)
	assert.Equal(t, "St. Petersburg", l.City)
	assert.Equal(t, "33701", l.PostalCode)
	assert.Equal(t, 3650, l.Price)
	assert.Equal(t, 3, *l.Beds)
	assert.Equal(t, 2.0, *l.Baths)
	assert.Equal(t, 1720, *l.Sqft)
	assert.Equal(t, server.URL+"/realestateandhomes-detail/540-9th-Ave-N_Saint-Petersburg_FL_33701_M1", l.URL)
}

func TestRealtorCancelledContext(t *testing.T) {
	server, hits := serveFixtures(t, map[string]string{realtorPath: "realtor_next_data_v1.html"})
	a := NewRealtorAdapter(testProfile(server.URL), testFetcher(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	listings, err := a.Fetch(ctx)
	assert.Empty(t, listings)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}
