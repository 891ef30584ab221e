package scraping

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"rentalhunter/internal/models"
)

// Adapter fetches listings from one source. An empty result with a nil
// error means the source had nothing; a non-nil error only explains why
// the result is empty.
type Adapter interface {
	Source() models.Source
	Fetch(ctx context.Context) ([]models.Listing, error)
}

// Strategy is one extraction technique. Strategies of an adapter are tried
// in order until one yields usable records.
type Strategy struct {
	Name    string
	Extract func(ctx context.Context) ([]RawListing, error)
}

// runCascade executes strategies in priority order. A strategy that fails or
// yields no usable record hands over to the next one; the first strategy
// with usable records decides the result, even if the criteria filter all of
// them out.
func runCascade(ctx context.Context, b *builder, strategies []Strategy, logger *logrus.Logger) ([]models.Listing, error) {
	var errs []error
	failedAll := true

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		fields := logrus.Fields{
			"source":   b.source,
			"strategy": s.Name,
		}

		raws, err := s.Extract(ctx)
		if err != nil {
			logger.WithError(err).WithFields(fields).Warn("Extraction strategy failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		failedAll = false

		listings, dropped := make([]models.Listing, 0, len(raws)), 0
		usable := 0
		for _, raw := range raws {
			l, err := b.build(raw)
			if err != nil {
				dropped++
				continue
			}
			usable++
			if b.admits(l, raw.Location) {
				listings = append(listings, l)
			}
		}

		if usable == 0 {
			logger.WithFields(fields).WithField("records", len(raws)).Debug("Extraction strategy yielded nothing usable")
			continue
		}

		logger.WithFields(fields).WithFields(logrus.Fields{
			"records":  len(raws),
			"dropped":  dropped,
			"filtered": usable - len(listings),
			"listings": len(listings),
		}).Info("Extraction strategy succeeded")
		return listings, nil
	}

	if failedAll && len(errs) > 0 {
		return []models.Listing{}, errors.Join(errs...)
	}
	return []models.Listing{}, nil
}

func defaultLogger(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	return logger
}
