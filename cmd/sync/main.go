// Command sync runs one fetch for a single company and prints the result
// as JSON. Useful for trying out a target before wiring it into the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/browser"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/fetcher"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/httpx"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

func main() {
	var (
		companyID  = flag.String("company", "", "company identifier (required)")
		careersURL = flag.String("careers-url", "", "careers page URL")
		apiBaseURL = flag.String("api-base-url", "", "remote API base URL")
		timeout    = flag.Duration("timeout", 30*time.Second, "per-operation timeout")
		retries    = flag.Int("retries", 3, "retry budget for browser setup")
		selector   = flag.String("wait-for", "", "CSS selector to wait for in the browser strategy")
		debug      = flag.Bool("debug", false, "capture debug screenshots")
		userAgent  = flag.String("user-agent", "drivehr-sync-bot/1.0", "user agent header")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *companyID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := jobs.TargetConfig{
		CompanyID:       *companyID,
		CareersURL:      *careersURL,
		APIBaseURL:      *apiBaseURL,
		TimeoutMs:       int(timeout.Milliseconds()),
		MaxRetries:      *retries,
		Headless:        true,
		UserAgent:       *userAgent,
		Debug:           *debug,
		WaitForSelector: *selector,
	}

	client := httpx.NewClient(*timeout, httpx.DefaultRetryConfig(), map[string]string{
		"User-Agent": *userAgent,
	})
	orch := fetcher.NewOrchestrator(client, browser.NewPlaywrightDriver(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result := orch.FetchJobs(ctx, cfg, *companyID)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		slog.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
	if !result.Success {
		os.Exit(1)
	}
}
