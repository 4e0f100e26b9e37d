package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/browser"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/content"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

// BrowserDriver launches the automation sessions the dynamic strategy runs
// through.
type BrowserDriver = browser.Driver

const (
	defaultContentSelector = ".job-listing, .job-item, [class*='opening'], .position"
	selectorWaitTimeout    = 10 * time.Second
	// Settle time after falling back from the selector wait to network
	// idle.
	postIdleDelay = 2 * time.Second
	// Free-text extraction is a last resort and easily over-matches.
	textTacticCap = 20
)

var noPositionsPattern = regexp.MustCompile(`(?i)no (open )?positions( available)?|no current openings|not hiring`)

// titlePattern matches role nouns followed by a short run of title-like
// text in the page body.
var titlePattern = regexp.MustCompile(`(?i)\b(?:senior |junior |lead |staff )?(?:engineer|developer|manager|analyst|designer|architect|scientist|specialist|consultant|coordinator)\b[a-z ,/-]{5,50}`)

// BrowserStrategy renders the careers page in a real browser and runs a
// chain of in-page extraction tactics. It is the most expensive strategy
// and always last in the orchestrator's list.
type BrowserStrategy struct {
	driver   BrowserDriver
	debugger *browser.Debugger
	sleep    func(context.Context, time.Duration) error
}

func NewBrowserStrategy(driver BrowserDriver) *BrowserStrategy {
	return &BrowserStrategy{
		driver:   driver,
		debugger: browser.NewDebugger(""),
		sleep:    sleepCtx,
	}
}

func (s *BrowserStrategy) Name() string { return "browser" }

func (s *BrowserStrategy) CanHandle(cfg jobs.TargetConfig) bool {
	return cfg.CareersURL != ""
}

// FetchJobs retries browser setup and navigation up to the configured
// budget with no delay between attempts. Extraction is never retried; a
// tactic that fails simply yields to the next one. An empty page is a
// successful empty result - only an unreachable page is an error.
func (s *BrowserStrategy) FetchJobs(ctx context.Context, cfg jobs.TargetConfig) ([]jobs.RawRecord, error) {
	if !s.CanHandle(cfg) {
		return nil, ErrUnsupported
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.Retries(); attempt++ {
		records, err := s.attempt(ctx, cfg)
		if err == nil {
			return records, nil
		}
		lastErr = err
		slog.Warn("browser attempt failed",
			"company", cfg.CompanyID,
			"attempt", attempt,
			"error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("browser strategy failed after %d attempts: %w", cfg.Retries(), lastErr)
}

// attempt performs one full setup-navigate-extract cycle. Errors returned
// here come only from the setup and navigation phase; once the page is
// ready the attempt always succeeds.
func (s *BrowserStrategy) attempt(ctx context.Context, cfg jobs.TargetConfig) ([]jobs.RawRecord, error) {
	session, err := s.driver.Launch(ctx, browser.LaunchOptions{
		Headless:       cfg.Headless,
		Args:           cfg.BrowserArgs,
		UserAgent:      cfg.UserAgent,
		Debug:          cfg.Debug,
		Viewport:       browser.DefaultViewport,
		DefaultTimeout: cfg.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			slog.Warn("browser session close failed", "error", cerr)
		}
	}()

	page, err := session.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			slog.Warn("page close failed", "error", cerr)
		}
	}()

	if err := page.Goto(cfg.CareersURL, cfg.Timeout()); err != nil {
		return nil, err
	}

	selector := cfg.WaitForSelector
	if selector == "" {
		selector = defaultContentSelector
	}
	if err := page.WaitForSelector(selector, selectorWaitTimeout); err != nil {
		// Content-readiness degrades gracefully; only reachability is
		// allowed to fail the attempt.
		slog.Debug("content selector wait timed out, falling back to network idle",
			"selector", selector)
		if idleErr := page.WaitForNetworkIdle(cfg.Timeout()); idleErr != nil {
			slog.Debug("network idle wait failed", "error", idleErr)
		}
		if err := s.sleep(ctx, postIdleDelay); err != nil {
			return nil, err
		}
	}

	bodyText, err := pageBodyText(page)
	if err != nil {
		return nil, fmt.Errorf("read page text: %w", err)
	}
	if noPositionsPattern.MatchString(bodyText) {
		slog.Info("careers page reports no open positions", "company", cfg.CompanyID)
		return []jobs.RawRecord{}, nil
	}

	s.expandListings(page)

	records := s.runTactics(page)

	if cfg.Debug {
		s.debugger.Capture(page, cfg.CompanyID)
	}
	if len(records) == 0 {
		slog.Warn("browser strategy found no jobs", "company", cfg.CompanyID, "url", cfg.CareersURL)
		return []jobs.RawRecord{}, nil
	}
	return records, nil
}

// expandListings clicks collapsible listing groups so their contents are in
// the DOM before extraction. Diagnostic only.
func (s *BrowserStrategy) expandListings(page browser.Page) {
	n, err := page.Evaluate(browser.ScriptExpandListings)
	if err != nil {
		slog.Debug("listing expansion failed", "error", err)
		return
	}
	slog.Debug("expanded listing groups", "clicked", n)
}

// runTactics tries the structured-element, JSON-LD, and free-text tactics
// in order, stopping at the first that yields records. A tactic that
// errors is treated as empty.
func (s *BrowserStrategy) runTactics(page browser.Page) []jobs.RawRecord {
	tactics := []struct {
		name string
		run  func(browser.Page) ([]jobs.RawRecord, error)
	}{
		{"structured", scrapeStructured},
		{"jsonld", scrapeJSONLD},
		{"text-pattern", scrapeTextPatterns},
	}
	for _, tactic := range tactics {
		records, err := tactic.run(page)
		if err != nil {
			slog.Debug("extraction tactic failed", "tactic", tactic.name, "error", err)
			continue
		}
		if len(records) > 0 {
			slog.Debug("extraction tactic succeeded", "tactic", tactic.name, "records", len(records))
			return records
		}
	}
	return nil
}

func scrapeStructured(page browser.Page) ([]jobs.RawRecord, error) {
	result, err := page.Evaluate(browser.ScriptScrapeStructured)
	if err != nil {
		return nil, err
	}
	arr, ok := result.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected structured scrape result %T", result)
	}
	return recordsFromArray(arr), nil
}

func scrapeJSONLD(page browser.Page) ([]jobs.RawRecord, error) {
	result, err := page.Evaluate(browser.ScriptCollectJSONLD)
	if err != nil {
		return nil, err
	}
	blocks, ok := result.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected jsonld scrape result %T", result)
	}
	var records []jobs.RawRecord
	for _, block := range blocks {
		if text, ok := block.(string); ok {
			records = append(records, content.ParseJSONLD(text)...)
		}
	}
	return records, nil
}

func scrapeTextPatterns(page browser.Page) ([]jobs.RawRecord, error) {
	bodyText, err := pageBodyText(page)
	if err != nil {
		return nil, err
	}
	matches := titlePattern.FindAllString(bodyText, -1)

	seen := make(map[string]struct{})
	var records []jobs.RawRecord
	for _, match := range matches {
		if len(records) >= textTacticCap {
			break
		}
		title := strings.TrimSpace(match)
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		records = append(records, jobs.RawRecord{
			"id":          fmt.Sprintf("text-match-%d", len(records)+1),
			"title":       title,
			"description": "Extracted from page text",
		})
	}
	return records, nil
}

func pageBodyText(page browser.Page) (string, error) {
	result, err := page.Evaluate(browser.ScriptBodyText)
	if err != nil {
		return "", err
	}
	text, _ := result.(string)
	return text, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
