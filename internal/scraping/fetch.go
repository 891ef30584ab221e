package scraping

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const maxBodySize = 10 << 20

var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

const (
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptJSON = "application/json,text/plain,*/*"
)

// Fetcher performs the GET requests every adapter shares
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *logrus.Logger
}

// NewFetcher creates a fetcher with a per-request timeout
func NewFetcher(timeout time.Duration, userAgent string, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		logger:    defaultLogger(logger),
	}
}

// Get downloads url and returns its body
func (f *Fetcher) Get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	f.logger.WithFields(logrus.Fields{
		"url":         url,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Fetched page")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	return body, nil
}

type pageResult struct {
	body []byte
	err  error
}

// pageCache fetches each URL at most once per adapter run
type pageCache struct {
	fetcher *Fetcher
	pages   map[string]pageResult
}

func newPageCache(f *Fetcher) *pageCache {
	return &pageCache{fetcher: f, pages: make(map[string]pageResult)}
}

func (c *pageCache) get(ctx context.Context, url, accept string) ([]byte, error) {
	if p, ok := c.pages[url]; ok {
		return p.body, p.err
	}
	body, err := c.fetcher.Get(ctx, url, accept)
	c.pages[url] = pageResult{body: body, err: err}
	return body, err
}
