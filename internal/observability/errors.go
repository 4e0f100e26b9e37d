package observability

import (
	"context"
	"errors"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/httpx"
)

const (
	ErrorNetwork   = "network"
	ErrorTimeout   = "timeout"
	ErrorStatus4xx = "status_4xx"
	ErrorStatus5xx = "status_5xx"
	ErrorParsing   = "parsing"
	ErrorUnknown   = "unknown"
)

// ClassifyError buckets a strategy failure for the error-by-type counters.
func ClassifyError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var ce *httpx.ClientError
	if errors.As(err, &ce) {
		if ce.TimeoutError {
			return ErrorTimeout
		}
		return ErrorNetwork
	}
	var se *httpx.StatusError
	if errors.As(err, &se) {
		if se.Code >= 500 {
			return ErrorStatus5xx
		}
		return ErrorStatus4xx
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	if isParseError(err) {
		return ErrorParsing
	}
	return ErrorUnknown
}

// isParseError is duck-typed so this package does not import the fetcher.
func isParseError(err error) bool {
	type parser interface{ ParseReason() string }
	var p parser
	return errors.As(err, &p)
}
