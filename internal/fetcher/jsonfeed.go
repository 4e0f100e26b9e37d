package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/httpx"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

// JSONStrategy fetches the single JSON feed derived from the careers page
// URL. One endpoint, one attempt; only the HTTP client's own transient
// retries apply.
type JSONStrategy struct {
	client HTTPDoer
}

func NewJSONStrategy(client HTTPDoer) *JSONStrategy {
	return &JSONStrategy{client: client}
}

func (s *JSONStrategy) Name() string { return "json" }

func (s *JSONStrategy) CanHandle(cfg jobs.TargetConfig) bool {
	return cfg.CareersURL != ""
}

func (s *JSONStrategy) FetchJobs(ctx context.Context, cfg jobs.TargetConfig) ([]jobs.RawRecord, error) {
	if !s.CanHandle(cfg) {
		return nil, ErrUnsupported
	}

	endpoint := strings.TrimSuffix(cfg.CareersURL, "/") + "/jobs.json"
	resp, err := s.client.Get(ctx, endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("json feed fetch: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("json feed not accessible: %w",
			&httpx.StatusError{Code: resp.Status, StatusText: http.StatusText(resp.Status)})
	}

	arr, ok := resp.DataArray("jobs")
	if !ok {
		return nil, &ParseError{Reason: "invalid JSON response format"}
	}
	return recordsFromArray(arr), nil
}
