package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"property-analyzer/cache"
	"property-analyzer/config"
	"property-analyzer/models"
	"property-analyzer/scraper/sites"
)

// ScrapeError wraps any failure on the scrape path with the platform, URL
// and root cause. Callers deciding on retries inspect the cause through
// errors.As / errors.Is.
type ScrapeError struct {
	Platform string
	URL      string
	Err      error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s (%s): %v", e.URL, e.Platform, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// Scraper coordinates the cache, the browser and the per-platform parsers.
// One Scrape call is one browser session on a cache miss; concurrent calls
// run independent sessions and share only the cache.
type Scraper struct {
	fetcher     PageFetcher
	store       cache.Store
	logger      *logrus.Logger
	minPreDelay time.Duration
	maxPreDelay time.Duration
}

func New(cfg *config.Config, fetcher PageFetcher, store cache.Store, logger *logrus.Logger) *Scraper {
	return &Scraper{
		fetcher:     fetcher,
		store:       store,
		logger:      logger,
		minPreDelay: cfg.MinPreNavDelay,
		maxPreDelay: cfg.MaxPreNavDelay,
	}
}

// Scrape resolves a listing URL into a NormalizedProperty, serving from the
// cache when a fresh entry exists. The platform tag is validated before any
// browser cost is incurred. Failures are not retried here; retry policy
// belongs to the caller.
func (s *Scraper) Scrape(ctx context.Context, url, platform string) (*models.NormalizedProperty, error) {
	parser, err := sites.ForPlatform(platform)
	if err != nil {
		return nil, &ScrapeError{Platform: platform, URL: url, Err: err}
	}

	key := cache.Key(parser.Platform(), url)
	if prop, ok := s.store.Get(ctx, key); ok {
		s.logger.WithField("key", key).Debug("cache hit")
		return prop, nil
	}

	if err := s.preNavigationDelay(ctx); err != nil {
		return nil, &ScrapeError{Platform: parser.Platform(), URL: url, Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"url":      url,
		"platform": parser.Platform(),
	}).Info("scraping listing")

	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &ScrapeError{Platform: parser.Platform(), URL: url, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ScrapeError{Platform: parser.Platform(), URL: url,
			Err: fmt.Errorf("build document: %w", err)}
	}

	prop, err := parser.Parse(doc, url)
	if err != nil {
		return nil, &ScrapeError{Platform: parser.Platform(), URL: url, Err: err}
	}

	s.store.Set(ctx, key, prop)
	return prop, nil
}

// preNavigationDelay sleeps a randomized interval before touching the target
// site, to break up request-pattern fingerprinting.
func (s *Scraper) preNavigationDelay(ctx context.Context) error {
	if s.maxPreDelay <= s.minPreDelay {
		return nil
	}
	delay := s.minPreDelay + time.Duration(rand.Int63n(int64(s.maxPreDelay-s.minPreDelay)))
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
