package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/httpx"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

// HTTPDoer is the slice of the resilient client the network strategies
// consume.
type HTTPDoer interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (*httpx.Response, error)
}

// jobArrayKeys are the wrapper keys under which APIs commonly nest their
// listings.
var jobArrayKeys = []string{"jobs", "positions", "data", "openings"}

// APIStrategy talks to a convention-based careers API.
type APIStrategy struct {
	client HTTPDoer
}

func NewAPIStrategy(client HTTPDoer) *APIStrategy {
	return &APIStrategy{client: client}
}

func (s *APIStrategy) Name() string { return "api" }

func (s *APIStrategy) CanHandle(cfg jobs.TargetConfig) bool {
	return cfg.CompanyID != "" && cfg.APIBaseURL != ""
}

// FetchJobs walks the candidate endpoints in order and returns the first
// payload that passes the job-array shape check. Bad status, transport
// errors, and malformed shapes all just advance to the next candidate.
func (s *APIStrategy) FetchJobs(ctx context.Context, cfg jobs.TargetConfig) ([]jobs.RawRecord, error) {
	if !s.CanHandle(cfg) {
		return nil, ErrUnsupported
	}

	var lastErr error
	for _, endpoint := range candidateEndpoints(cfg) {
		resp, err := s.client.Get(ctx, endpoint, map[string]string{"Accept": "application/json"})
		if err != nil {
			slog.Debug("api endpoint unreachable", "endpoint", endpoint, "error", err)
			lastErr = err
			continue
		}
		if !resp.Success {
			lastErr = &httpx.StatusError{Code: resp.Status, StatusText: http.StatusText(resp.Status)}
			slog.Debug("api endpoint rejected", "endpoint", endpoint, "status", resp.Status)
			continue
		}
		arr, ok := resp.DataArray(jobArrayKeys...)
		if !ok {
			lastErr = &ParseError{Reason: fmt.Sprintf("no job array in response from %s", endpoint)}
			continue
		}
		return recordsFromArray(arr), nil
	}

	return nil, &ExhaustedError{What: "all API endpoints failed", Last: lastErr}
}

// candidateEndpoints derives the primary convention-based URL plus its
// fallbacks from the company id and API base.
func candidateEndpoints(cfg jobs.TargetConfig) []string {
	base := strings.TrimSuffix(cfg.APIBaseURL, "/")
	id := url.PathEscape(cfg.CompanyID)
	return []string{
		fmt.Sprintf("%s/companies/%s/jobs", base, id),
		fmt.Sprintf("%s/%s/jobs", base, id),
		fmt.Sprintf("%s/jobs?company=%s", base, url.QueryEscape(cfg.CompanyID)),
	}
}

func recordsFromArray(arr []any) []jobs.RawRecord {
	out := make([]jobs.RawRecord, 0, len(arr))
	for _, item := range arr {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, jobs.RawRecord(obj))
		}
	}
	return out
}
