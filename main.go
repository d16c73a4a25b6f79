package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"property-analyzer/ai"
	"property-analyzer/cache"
	"property-analyzer/config"
	"property-analyzer/models"
	"property-analyzer/scraper"
	"property-analyzer/scraper/sites"
	"property-analyzer/services"
	"property-analyzer/storage"
	"property-analyzer/utils"
)

func main() {
	platformFlag := flag.String("platform", "", "platform tag for all URLs (idealista|fotocasa|habitaclia); inferred from hostname when empty")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	urls := flag.Args()
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: property-analyzer [-platform tag] <listing-url> [<listing-url>...]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	logger.WithFields(logrus.Fields{
		"urls":        len(urls),
		"concurrency": cfg.MaxConcurrency,
		"cache_ttl":   cfg.CacheTTL.String(),
	}).Info("property analyzer starting")

	store := buildCache(cfg, logger)
	fetcher := scraper.NewBrowserFetcher(cfg, logger)
	scr := scraper.New(cfg, fetcher, store, logger)
	metrics := services.NewMetricsService(logger)

	var completer services.Completer
	if cfg.AIBaseURL != "" {
		completer = ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout, logger)
		logger.WithField("endpoint", cfg.AIBaseURL).Info("AI scoring enabled")
	}
	scorer := services.NewScorer(completer, cfg.AITimeout, logger)

	ctx := context.Background()
	pool := utils.NewWorkerPool(cfg.MaxConcurrency)

	var mu sync.Mutex
	var analyses []*models.Analysis

	for _, rawURL := range urls {
		listingURL := rawURL
		pool.Submit(func() {
			platform := *platformFlag
			if platform == "" {
				platform = detectPlatform(listingURL)
			}

			prop, err := scr.Scrape(ctx, listingURL, platform)
			if err != nil {
				logger.WithError(err).WithField("url", listingURL).Error("scrape failed")
				return
			}

			enriched, err := metrics.Enrich(*prop)
			if err != nil {
				logger.WithError(err).WithField("url", listingURL).Error("enrichment failed")
				return
			}

			result := scorer.Score(ctx, *enriched)

			mu.Lock()
			analyses = append(analyses, models.NewAnalysis(*enriched, result))
			mu.Unlock()

			logger.WithFields(logrus.Fields{
				"url":    listingURL,
				"score":  result.Score,
				"method": result.Method,
			}).Info("listing analyzed")
		})
	}
	pool.Wait()

	if len(analyses) == 0 {
		logger.Error("no listings were analyzed, exiting")
		os.Exit(1)
	}

	reportSvc := services.NewReportService(logger)
	reportSvc.Print(reportSvc.Generate(analyses))

	if err := exportCSV(cfg.CSVOutputPath, analyses); err != nil {
		logger.WithError(err).Error("CSV export failed")
	} else {
		logger.WithField("path", cfg.CSVOutputPath).Info("analyses exported to CSV")
	}

	if cfg.PersistAnalyses {
		persist(cfg, analyses, logger)
	}
}

// buildCache picks the Redis backend when configured and reachable, falling
// back to the in-process store otherwise.
func buildCache(cfg *config.Config, logger *logrus.Logger) cache.Store {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryStore(cfg.CacheTTL)
	}

	rs := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL, logger)
	if err := rs.Ping(context.Background()); err != nil {
		logger.WithError(err).Warn("Redis unreachable, using in-memory cache")
		return cache.NewMemoryStore(cfg.CacheTTL)
	}
	logger.WithField("addr", cfg.RedisAddr).Info("using Redis scrape cache")
	return rs
}

// detectPlatform infers the platform tag from the listing hostname.
func detectPlatform(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	for _, tag := range []string{sites.PlatformIdealista, sites.PlatformFotocasa, sites.PlatformHabitaclia} {
		if strings.Contains(host, tag) {
			return tag
		}
	}
	return ""
}

// writeAnalyses drains the batch into any analysis sink and closes it.
func writeAnalyses(w storage.AnalysisWriter, analyses []*models.Analysis) error {
	defer w.Close()
	return w.Write(analyses)
}

func exportCSV(path string, analyses []*models.Analysis) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	return writeAnalyses(w, analyses)
}

func persist(cfg *config.Config, analyses []*models.Analysis, logger *logrus.Logger) {
	ps, err := storage.NewPostgresStore(cfg.DSN(), logger)
	if err != nil {
		logger.WithError(err).Error("failed to connect to PostgreSQL")
		return
	}

	if err := writeAnalyses(ps, analyses); err != nil {
		logger.WithError(err).Error("PostgreSQL write failed")
		return
	}
	logger.WithField("count", len(analyses)).Info("analyses stored in PostgreSQL")
}
