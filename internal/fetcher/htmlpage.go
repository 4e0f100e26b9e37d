package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/content"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/httpx"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

// HTMLParser is the externally supplied parsing capability the static HTML
// strategy delegates to.
type HTMLParser func(markup, baseURL string) ([]jobs.RawRecord, error)

// HTMLStrategy fetches the careers page markup and hands it to the parser;
// parser errors propagate unmodified.
type HTMLStrategy struct {
	client HTTPDoer
	parse  HTMLParser
}

func NewHTMLStrategy(client HTTPDoer) *HTMLStrategy {
	return &HTMLStrategy{client: client, parse: content.ParseJobs}
}

// NewHTMLStrategyWithParser substitutes the parsing capability.
func NewHTMLStrategyWithParser(client HTTPDoer, parse HTMLParser) *HTMLStrategy {
	return &HTMLStrategy{client: client, parse: parse}
}

func (s *HTMLStrategy) Name() string { return "html" }

func (s *HTMLStrategy) CanHandle(cfg jobs.TargetConfig) bool {
	return cfg.CareersURL != ""
}

func (s *HTMLStrategy) FetchJobs(ctx context.Context, cfg jobs.TargetConfig) ([]jobs.RawRecord, error) {
	if !s.CanHandle(cfg) {
		return nil, ErrUnsupported
	}

	resp, err := s.client.Get(ctx, cfg.CareersURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("careers page fetch: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("HTML page not accessible: %w",
			&httpx.StatusError{Code: resp.Status, StatusText: http.StatusText(resp.Status)})
	}

	records, err := s.parse(string(resp.Body), cfg.CareersURL)
	if err != nil {
		return nil, err
	}
	// Zero listings on a reachable page usually means the markup is
	// script-rendered; erroring here lets the chain fall through to the
	// embedded and browser strategies.
	if len(records) == 0 {
		return nil, &ParseError{Reason: "no job listings found in HTML"}
	}
	return records, nil
}
