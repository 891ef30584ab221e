package scheduler

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rentalhunter/internal/processor"
)

var ErrScanInProgress = errors.New("a scan is already running")

// Scanner performs a single scan
type Scanner interface {
	Scan(ctx context.Context) (*processor.ScanReport, error)
}

// Scheduler repeats scans, waiting a fixed interval after each one completes
type Scheduler struct {
	scanner  Scanner
	logger   *logrus.Logger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures scans never overlap

	mu   sync.RWMutex
	last *processor.ScanReport
}

// NewScheduler creates a new scheduler
func NewScheduler(scanner Scanner, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		scanner:  scanner,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the scan loop in the background
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(ctx)
	}()
}

// Run scans immediately and then after every interval until ctx is done or
// Stop is called
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.WithField("interval", s.interval.String()).Info("Starting scan loop")

	for {
		if _, err := s.RunNow(ctx); err != nil && ctx.Err() == nil {
			s.logger.WithError(err).Error("Scan failed")
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Scan loop stopped")
			return
		case <-s.stopChan:
			timer.Stop()
			s.logger.Info("Scan loop stopped")
			return
		case <-timer.C:
		}
	}
}

// RunNow performs a scan, waiting for any scan already in progress
func (s *Scheduler) RunNow(ctx context.Context) (*processor.ScanReport, error) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()
	return s.scan(ctx)
}

// TryRunNow performs a scan unless one is already running
func (s *Scheduler) TryRunNow(ctx context.Context) (*processor.ScanReport, error) {
	if !s.jobMutex.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.jobMutex.Unlock()
	return s.scan(ctx)
}

func (s *Scheduler) scan(ctx context.Context) (*processor.ScanReport, error) {
	report, err := s.scanner.Scan(ctx)
	if report != nil {
		s.mu.Lock()
		s.last = report
		s.mu.Unlock()
	}
	return report, err
}

// LastReport returns the report of the most recent scan, or nil
func (s *Scheduler) LastReport() *processor.ScanReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}
