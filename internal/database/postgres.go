package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"rentalhunter/internal/models"
)

const (
	pingAttempts = 5
	pingDelay    = 2 * time.Second
)

// PostgresStore keeps seen listings in a shared PostgreSQL database
type PostgresStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewPostgresStore connects, waits for the server to accept connections and migrates the schema
func NewPostgresStore(ctx context.Context, dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < pingAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logger.WithError(err).WithField("attempt", i+1).Warn("Postgres not ready")
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(pingDelay):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	s := &PostgresStore{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS seen_listings (
			id                 SERIAL PRIMARY KEY,
			normalized_address TEXT        UNIQUE NOT NULL,
			original_address   TEXT        NOT NULL DEFAULT '',
			price              INTEGER     NOT NULL DEFAULT 0,
			source             VARCHAR(20) NOT NULL,
			url                TEXT        NOT NULL DEFAULT '',
			first_seen_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_seen_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_seen_listings_source     ON seen_listings(source);
		CREATE INDEX IF NOT EXISTS idx_seen_listings_first_seen ON seen_listings(first_seen_at);
	`)
	return err
}

func (s *PostgresStore) Contains(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM seen_listings WHERE normalized_address = $1)`, key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: lookup %q: %w", key, err)
	}
	return exists, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, seen models.SeenListing) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seen_listings
			(normalized_address, original_address, price, source, url, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (normalized_address) DO UPDATE
		SET last_seen_at = EXCLUDED.last_seen_at,
		    price        = EXCLUDED.price
	`,
		seen.NormalizedAddress, seen.OriginalAddress, seen.Price, string(seen.Source),
		seen.URL, seen.FirstSeenAt, seen.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert %q: %w", seen.NormalizedAddress, err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_listings`).Scan(&n)
	return n, err
}

func (s *PostgresStore) CountBySource(ctx context.Context) ([]models.SourceCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, COUNT(*) AS count
		FROM seen_listings
		GROUP BY source
		ORDER BY count DESC, source
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: count by source: %w", err)
	}
	defer rows.Close()

	var counts []models.SourceCount
	for rows.Next() {
		var c models.SourceCount
		var source string
		if err := rows.Scan(&source, &c.Count); err != nil {
			return nil, err
		}
		c.Source = models.Source(source)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]models.SeenListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, normalized_address, original_address, price, source, url, first_seen_at, last_seen_at
		FROM seen_listings
		ORDER BY first_seen_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: recent: %w", err)
	}
	defer rows.Close()

	var out []models.SeenListing
	for rows.Next() {
		var l models.SeenListing
		var source string
		if err := rows.Scan(&l.ID, &l.NormalizedAddress, &l.OriginalAddress, &l.Price, &source,
			&l.URL, &l.FirstSeenAt, &l.LastSeenAt); err != nil {
			return nil, err
		}
		l.Source = models.Source(source)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM seen_listings`)
	if err != nil {
		return 0, fmt.Errorf("postgres: clear: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.WithField("deleted", n).Info("Cleared seen listings")
	return n, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
