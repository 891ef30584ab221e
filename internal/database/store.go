package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"rentalhunter/config"
	"rentalhunter/internal/models"
)

// Store persists the normalized addresses of listings already announced.
// The normalized address is unique; Upsert keeps FirstSeenAt of an existing
// row and refreshes its price and LastSeenAt.
type Store interface {
	Contains(ctx context.Context, key string) (bool, error)
	Upsert(ctx context.Context, seen models.SeenListing) error
	Count(ctx context.Context) (int64, error)
	CountBySource(ctx context.Context) ([]models.SourceCount, error)
	Recent(ctx context.Context, limit int) ([]models.SeenListing, error)
	Clear(ctx context.Context) (int64, error)
	Close() error
}

// Open returns the store selected by the configuration
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if cfg.Store.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for the %s store", cfg.Store.Driver)
		}
		return NewPostgresStore(ctx, cfg.Store.PostgresDSN, logger)
	case config.StoreDriverSQLite, "":
		return NewSQLiteStore(cfg.Store.Path, logger)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStoreDriver, cfg.Store.Driver)
	}
}

// GetStats collects the totals and the most recent listings
func GetStats(ctx context.Context, s Store, recent int) (models.SeenStats, error) {
	var stats models.SeenStats
	var err error

	if stats.Total, err = s.Count(ctx); err != nil {
		return stats, fmt.Errorf("failed to count listings: %w", err)
	}
	if stats.BySource, err = s.CountBySource(ctx); err != nil {
		return stats, fmt.Errorf("failed to count listings by source: %w", err)
	}
	if stats.Recent, err = s.Recent(ctx, recent); err != nil {
		return stats, fmt.Errorf("failed to load recent listings: %w", err)
	}
	return stats, nil
}
