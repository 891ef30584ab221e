package processor

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rentalhunter/config"
	"rentalhunter/internal/database"
	"rentalhunter/internal/models"
	"rentalhunter/internal/scraping"
)

// Notifier announces a newly discovered listing
type Notifier interface {
	NotifyListing(ctx context.Context, listing models.Listing) error
}

// SourceResult is the outcome of one adapter within a scan
type SourceResult struct {
	Source models.Source `json:"source"`
	Count  int           `json:"count"`
	Error  string        `json:"error,omitempty"`
}

// ScanReport summarises a single scan
type ScanReport struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []SourceResult `json:"sources"`

	// Listings returned by all adapters, before deduplication
	Total  int `json:"total"`
	Unique int `json:"unique"`
	New    int `json:"new"`

	// Listings that could not be looked up or recorded
	Failed int `json:"failed"`
}

// ScanProcessor runs every adapter and records what it finds
type ScanProcessor struct {
	adapters []scraping.Adapter
	store    database.Store
	notifier Notifier
	config   *config.Config
	logger   *logrus.Logger
	now      func() time.Time
}

// NewScanProcessor creates a processor. Adapter results are merged in the
// order the adapters are given.
func NewScanProcessor(adapters []scraping.Adapter, store database.Store, notifier Notifier, cfg *config.Config, logger *logrus.Logger) *ScanProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	return &ScanProcessor{
		adapters: adapters,
		store:    store,
		notifier: notifier,
		config:   cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce performs one scan and returns the number of new listings
func (p *ScanProcessor) RunOnce(ctx context.Context) (int, error) {
	report, err := p.Scan(ctx)
	if report == nil {
		return 0, err
	}
	return report.New, err
}

// Scan fetches all sources, deduplicates on the normalized address and
// announces listings the store has not seen before. Only cancellation of
// ctx makes it return an error; the report is returned either way.
func (p *ScanProcessor) Scan(ctx context.Context) (*ScanReport, error) {
	report := &ScanReport{
		RunID:     uuid.NewString(),
		StartedAt: p.now(),
	}
	log := p.logger.WithField("run_id", report.RunID)
	log.WithField("sources", len(p.adapters)).Info("Starting scan")

	results := p.fetchAll(ctx)
	var all []models.Listing
	for _, r := range results {
		sr := SourceResult{Source: r.source, Count: len(r.listings)}
		if r.err != nil {
			sr.Error = r.err.Error()
		}
		report.Sources = append(report.Sources, sr)
		all = append(all, r.listings...)
	}
	report.Total = len(all)

	if err := ctx.Err(); err != nil {
		report.FinishedAt = p.now()
		p.logReport(log, report)
		return report, err
	}

	unique := dedupe(all)
	report.Unique = len(unique)

	for _, listing := range unique {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = p.now()
			p.logReport(log, report)
			return report, err
		}
		p.process(ctx, log, listing, report)
	}

	report.FinishedAt = p.now()
	p.logReport(log, report)
	return report, nil
}

type adapterResult struct {
	source   models.Source
	listings []models.Listing
	err      error
}

// fetchAll runs the adapters concurrently, each under its own timeout
func (p *ScanProcessor) fetchAll(ctx context.Context) []adapterResult {
	results := make([]adapterResult, len(p.adapters))
	var wg sync.WaitGroup

	for i, adapter := range p.adapters {
		wg.Add(1)
		go func(i int, adapter scraping.Adapter) {
			defer wg.Done()
			results[i] = p.fetch(ctx, adapter)
		}(i, adapter)
	}

	wg.Wait()
	return results
}

func (p *ScanProcessor) fetch(ctx context.Context, adapter scraping.Adapter) (result adapterResult) {
	result.source = adapter.Source()
	defer func() {
		if r := recover(); r != nil {
			result.listings = nil
			result.err = fmt.Errorf("adapter panicked: %v", r)
			p.logger.WithField("source", result.source).Errorf("Recovered from adapter panic: %v", r)
		}
	}()

	if timeout := p.config.Scan.AdapterTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result.listings, result.err = adapter.Fetch(ctx)
	return result
}

// dedupe keeps the first listing of every normalized address
func dedupe(listings []models.Listing) []models.Listing {
	seen := make(map[string]struct{}, len(listings))
	unique := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		key := l.AddressKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, l)
	}
	return unique
}

func (p *ScanProcessor) process(ctx context.Context, log *logrus.Entry, listing models.Listing, report *ScanReport) {
	key := listing.AddressKey()
	entry := log.WithFields(logrus.Fields{
		"key":    key,
		"source": listing.Source,
	})

	found, err := p.store.Contains(ctx, key)
	if err != nil {
		// Skipped listings are picked up by the next scan
		entry.WithError(err).Error("Failed to check seen store")
		report.Failed++
		return
	}

	if !found {
		report.New++
		entry.WithField("price", listing.Price).Info("New listing found")
		if p.notifier != nil {
			if err := p.notifier.NotifyListing(ctx, listing); err != nil {
				entry.WithError(err).Error("Failed to send notification")
			}
		}
	}

	// Recorded even when ctx is cancelled so an announced listing is never announced twice
	if err := p.persist(context.WithoutCancel(ctx), models.NewSeenListing(listing, p.now())); err != nil {
		entry.WithError(err).Error("Failed to record listing")
		report.Failed++
	}
}

// persist writes a listing to the store, retrying failed writes
func (p *ScanProcessor) persist(ctx context.Context, seen models.SeenListing) error {
	maxRetries := p.config.Store.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying listing write, attempt %d of %d", attempt, maxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.Store.RetryDelay):
			}
		}

		if err = p.store.Upsert(ctx, seen); err == nil {
			return nil
		}
		p.logger.WithField("key", seen.NormalizedAddress).Errorf("Listing write failed: %v", err)
	}

	return fmt.Errorf("failed to persist listing after %d attempts: %w", maxRetries+1, err)
}

func (p *ScanProcessor) logReport(log *logrus.Entry, report *ScanReport) {
	for _, s := range report.Sources {
		fields := logrus.Fields{
			"source": s.Source,
			"count":  s.Count,
		}
		if s.Error != "" {
			log.WithFields(fields).WithField("error", s.Error).Warn("Source returned no listings")
			continue
		}
		log.WithFields(fields).Info("Source scanned")
	}

	log.WithFields(logrus.Fields{
		"total":    report.Total,
		"unique":   report.Unique,
		"new":      report.New,
		"failed":   report.Failed,
		"duration": report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Scan complete")
}
