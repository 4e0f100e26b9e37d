// Package fetcher selects and sequences the extraction strategies that
// pull job listings out of a single configured careers site.
package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

// Strategy is one self-contained technique for obtaining raw job records.
type Strategy interface {
	Name() string
	// CanHandle reports whether the target configuration carries enough
	// information for this strategy to run at all. A false answer is a
	// silent skip, not a failure.
	CanHandle(cfg jobs.TargetConfig) bool
	FetchJobs(ctx context.Context, cfg jobs.TargetConfig) ([]jobs.RawRecord, error)
}

// ErrUnsupported is returned by FetchJobs when invoked on a target the
// strategy declared it cannot handle.
var ErrUnsupported = errors.New("strategy does not support this target")

// ParseError marks a payload whose shape could not be interpreted. Never
// retried verbatim; the orchestrator moves on to the next strategy.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failure: %s", e.Reason)
}

// ParseReason lets error classification recognize parse failures without a
// package dependency on fetcher.
func (e *ParseError) ParseReason() string { return e.Reason }

// ExhaustedError reports that every candidate within a strategy (or every
// strategy in the orchestrator) has been tried and failed.
type ExhaustedError struct {
	What string
	Last error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return e.What
	}
	return fmt.Sprintf("%s: last error: %v", e.What, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }
