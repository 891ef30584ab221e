package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Scan.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Scan.RequestTimeout)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "listings.db", cfg.Store.Path)
	assert.Equal(t, 3, cfg.Store.MaxRetries)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIURL)
	assert.Contains(t, cfg.Scan.UserAgent, "Mozilla/5.0")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "111, 222")
	t.Setenv("POLL_INTERVAL", "90s")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/rentals")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Scan.PollInterval)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)

	tg := cfg.TelegramConfig()
	assert.Equal(t, "123:abc", tg.BotToken)
	assert.Equal(t, []string{"111", "222"}, tg.Recipients())
	assert.True(t, tg.IsConfigured())
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrUnknownStoreDriver)
}

func TestLoadSearchProfile(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	tests := []struct {
		name        string
		path        string
		expectError error
		check       func(t *testing.T, p SearchProfile)
	}{
		{
			name: "No file uses defaults",
			path: "",
			check: func(t *testing.T, p SearchProfile) {
				assert.Equal(t, 1500, p.Criteria.MinSqft)
				assert.Equal(t, 7000, p.Criteria.MaxRent)
				assert.Equal(t, "St Petersburg", p.Metro.City)
				assert.Equal(t, 17193, p.Metro.RedfinRegionID)
			},
		},
		{
			name: "Overrides criteria only",
			path: write("criteria.yaml", "criteria:\n  min_sqft: 1800\n  max_rent: 5000\n"),
			check: func(t *testing.T, p SearchProfile) {
				assert.Equal(t, 1800, p.Criteria.MinSqft)
				assert.Equal(t, 5000, p.Criteria.MaxRent)
				assert.Equal(t, "house", p.Criteria.PropertyType)
				assert.Equal(t, "https://www.zillow.com", p.Endpoints.Zillow)
			},
		},
		{
			name:        "Unknown metro",
			path:        write("metro.yaml", "metro: atlantis\n"),
			expectError: ErrUnknownMetro,
		},
		{
			name:        "Invalid rent",
			path:        write("rent.yaml", "criteria:\n  max_rent: 0\n"),
			expectError: ErrInvalidCriteria,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadSearchProfile(tt.path)
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}

	_, err := LoadSearchProfile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMetroBounds(t *testing.T) {
	metro := GetMetroBySlug("st-petersburg-fl")
	require.NotNil(t, metro)

	bound := metro.Bounds.Bound()
	assert.True(t, bound.Contains(orb.Point{-82.64, 27.77}))
	assert.False(t, bound.Contains(orb.Point{-82.45, 27.95}))
	assert.Nil(t, GetMetroBySlug("tampa-fl"))
	assert.Equal(t, []string{"st-petersburg-fl"}, GetMetroSlugs())
}
