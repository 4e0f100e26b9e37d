package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/content"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/httpx"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

// EmbeddedStrategy pulls structured data the site ships inside its own
// markup: JSON-LD JobPosting blocks first, then JSON literals assigned in
// inline scripts. The page is fetched exactly once.
type EmbeddedStrategy struct {
	client HTTPDoer
}

func NewEmbeddedStrategy(client HTTPDoer) *EmbeddedStrategy {
	return &EmbeddedStrategy{client: client}
}

func (s *EmbeddedStrategy) Name() string { return "embedded" }

func (s *EmbeddedStrategy) CanHandle(cfg jobs.TargetConfig) bool {
	return cfg.CareersURL != ""
}

func (s *EmbeddedStrategy) FetchJobs(ctx context.Context, cfg jobs.TargetConfig) ([]jobs.RawRecord, error) {
	if !s.CanHandle(cfg) {
		return nil, ErrUnsupported
	}

	resp, err := s.client.Get(ctx, cfg.CareersURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("careers page fetch: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("careers page not accessible: %w",
			&httpx.StatusError{Code: resp.Status, StatusText: http.StatusText(resp.Status)})
	}
	markup := string(resp.Body)

	// Tactic 1: JSON-LD blocks. Individual blocks that fail to parse are
	// skipped inside ParseJSONLD.
	ldBlocks, err := content.ScriptBlocks(markup, "application/ld+json")
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	var records []jobs.RawRecord
	for _, block := range ldBlocks {
		records = append(records, content.ParseJSONLD(block)...)
	}
	if len(records) > 0 {
		return records, nil
	}

	// Tactic 2: JSON literals assigned in inline scripts.
	inline, err := content.ScriptBlocks(markup, "")
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	if records = content.ScanScriptLiterals(inline); len(records) > 0 {
		return records, nil
	}

	return nil, &ParseError{Reason: "no embedded data found"}
}
