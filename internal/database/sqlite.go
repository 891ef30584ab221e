package database

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"rentalhunter/internal/models"
)

// SQLiteStore keeps seen listings in a local SQLite file
type SQLiteStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.SeenListing{}); err != nil {
		return nil, fmt.Errorf("failed to migrate seen_listings: %w", err)
	}

	logger.WithField("path", path).Info("SQLite store ready")
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Contains(ctx context.Context, key string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.SeenListing{}).
		Where("normalized_address = ?", key).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up %q: %w", key, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, seen models.SeenListing) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "normalized_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at", "price"}),
	}).Create(&seen).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %q: %w", seen.NormalizedAddress, err)
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.SeenListing{}).Count(&n).Error
	return n, err
}

func (s *SQLiteStore) CountBySource(ctx context.Context) ([]models.SourceCount, error) {
	var counts []models.SourceCount
	err := s.db.WithContext(ctx).
		Model(&models.SeenListing{}).
		Select("source, COUNT(*) AS count").
		Group("source").
		Order("count DESC, source").
		Scan(&counts).Error
	return counts, err
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]models.SeenListing, error) {
	var rows []models.SeenListing
	err := s.db.WithContext(ctx).
		Order("first_seen_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.SeenListing{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear seen_listings: %w", res.Error)
	}
	s.logger.WithField("deleted", res.RowsAffected).Info("Cleared seen listings")
	return res.RowsAffected, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
