package scraper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"property-analyzer/config"
)

// PageFetcher loads a URL and returns the fully rendered HTML. The browser
// implementation below is the production fetcher; tests substitute their own.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// BrowserFetcher drives a headless Chrome instance through chromedp. Each
// Fetch call opens its own session and releases it on every exit path; there
// is no session reuse between calls.
type BrowserFetcher struct {
	navigationTimeout time.Duration
	settleDelay       time.Duration
	headless          bool
	execPath          string
	logger            *logrus.Logger
}

func NewBrowserFetcher(cfg *config.Config, logger *logrus.Logger) *BrowserFetcher {
	execPath := cfg.ChromeBin
	if execPath == "" {
		execPath = findChromeBinary()
	}
	return &BrowserFetcher{
		navigationTimeout: cfg.NavigationTimeout,
		settleDelay:       cfg.SettleDelay,
		headless:          cfg.Headless,
		execPath:          execPath,
		logger:            logger,
	}
}

// session is a scoped browser acquisition. Close is idempotent and safe to
// call on every exit path.
type session struct {
	ctx     context.Context
	once    sync.Once
	cancels []context.CancelFunc
}

func (s *session) Close() {
	s.once.Do(func() {
		for i := len(s.cancels) - 1; i >= 0; i-- {
			s.cancels[i]()
		}
	})
}

func (f *BrowserFetcher) newSession(ctx context.Context) *session {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if f.execPath != "" {
		opts = append(opts, chromedp.ExecPath(f.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	return &session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelAlloc, cancelBrowser},
	}
}

// Fetch navigates to url with a bounded timeout, waits a fixed settle delay
// for client-side rendering, and captures the rendered DOM.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	sess := f.newSession(ctx)
	defer sess.Close()

	navCtx, cancel := context.WithTimeout(sess.ctx, f.navigationTimeout+f.settleDelay)
	defer cancel()

	var html string
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(f.settleDelay),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	f.logger.WithFields(logrus.Fields{
		"url":   url,
		"bytes": len(html),
	}).Debug("page captured")

	return html, nil
}

// findChromeBinary locates a Chrome/Chromium binary on the host.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
