package scraping

import (
	"github.com/sirupsen/logrus"

	"rentalhunter/config"
	"rentalhunter/internal/models"
)

// SourceManager owns the adapters of every registered source
type SourceManager struct {
	logger   *logrus.Logger
	adapters []Adapter
}

// NewSourceManager registers the Zillow, Redfin and Realtor adapters in that order
func NewSourceManager(cfg *config.Config, profile config.SearchProfile, logger *logrus.Logger) *SourceManager {
	logger = defaultLogger(logger)
	fetcher := NewFetcher(cfg.Scan.RequestTimeout, cfg.Scan.UserAgent, logger)

	return &SourceManager{
		logger: logger,
		adapters: []Adapter{
			NewZillowAdapter(profile, fetcher, logger),
			NewRedfinAdapter(profile, fetcher, logger),
			NewRealtorAdapter(profile, fetcher, logger),
		},
	}
}

// Adapters returns the adapters in registration order
func (m *SourceManager) Adapters() []Adapter {
	return m.adapters
}

// Sources returns the registered source identifiers
func (m *SourceManager) Sources() []models.Source {
	sources := make([]models.Source, len(m.adapters))
	for i, a := range m.adapters {
		sources[i] = a.Source()
	}
	return sources
}
