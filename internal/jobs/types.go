package jobs

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DefaultSource = "unknown-source"

// TargetConfig identifies the single careers site a fetch run operates on.
// It is immutable for the duration of one orchestration call.
type TargetConfig struct {
	CompanyID  string `json:"company_id" yaml:"company_id"`
	CareersURL string `json:"careers_url,omitempty" yaml:"careers_url"`
	APIBaseURL string `json:"api_base_url,omitempty" yaml:"api_base_url"`
	TimeoutMs  int    `json:"timeout_ms,omitempty" yaml:"timeout_ms"`
	MaxRetries int    `json:"max_retries,omitempty" yaml:"max_retries"`

	// Browser strategy options.
	Headless        bool     `json:"headless" yaml:"headless"`
	UserAgent       string   `json:"user_agent,omitempty" yaml:"user_agent"`
	BrowserArgs     []string `json:"browser_args,omitempty" yaml:"browser_args"`
	Debug           bool     `json:"debug,omitempty" yaml:"debug"`
	WaitForSelector string   `json:"wait_for_selector,omitempty" yaml:"wait_for_selector"`
}

// Timeout returns the configured per-operation timeout, defaulting to 30s.
func (c TargetConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Retries returns the configured retry budget, defaulting to 3.
func (c TargetConfig) Retries() int {
	if c.MaxRetries <= 0 {
		return 3
	}
	return c.MaxRetries
}

// RawRecord is one unnormalized job listing as the source emitted it.
// Field names and presence vary by strategy; a record may lack a title.
type RawRecord map[string]any

// String returns the first non-empty string value under any of the keys.
func (r RawRecord) String(keys ...string) string {
	for _, key := range keys {
		val, ok := r[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

// Clone copies the record so normalized output cannot alias caller state.
func (r RawRecord) Clone() RawRecord {
	if r == nil {
		return nil
	}
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Job is the canonical job record produced by the normalization pipeline.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Department  string    `json:"department"`
	Type        string    `json:"type"`
	PostedDate  string    `json:"posted_date"`
	ApplyURL    string    `json:"apply_url"`
	Source      string    `json:"source"`
	ProcessedAt time.Time `json:"processed_at"`
	RawData     RawRecord `json:"raw_data,omitempty"`
}

// FetchResult is the outcome of one orchestration call. It is constructed
// once and never mutated afterwards.
type FetchResult struct {
	Success    bool      `json:"success"`
	Jobs       []Job     `json:"jobs"`
	TotalCount int       `json:"total_count"`
	Method     string    `json:"method"`
	Error      string    `json:"error,omitempty"`
	Message    string    `json:"message"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Succeeded builds a success result for the named strategy.
func Succeeded(method string, found []Job, now time.Time) FetchResult {
	if found == nil {
		found = []Job{}
	}
	return FetchResult{
		Success:    true,
		Jobs:       found,
		TotalCount: len(found),
		Method:     method,
		Message:    fmt.Sprintf("fetched %d jobs via %s", len(found), method),
		FetchedAt:  now,
	}
}

// Failed builds the terminal failure result returned when every strategy
// has been exhausted.
func Failed(errMsg string, now time.Time) FetchResult {
	return FetchResult{
		Success:   false,
		Jobs:      []Job{},
		Method:    "none",
		Error:     errMsg,
		Message:   "no strategy produced a result",
		FetchedAt: now,
	}
}
