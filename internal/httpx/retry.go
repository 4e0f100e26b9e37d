package httpx

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryConfig is constructed once per client and reused across calls.
type RetryConfig struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	ExponentialBase float64
	Jitter          bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		BaseDelay:       500 * time.Millisecond,
		ExponentialBase: 2.0,
		Jitter:          true,
	}
}

// Delay computes the wait before the given attempt (1-based, so attempt 2
// is the first retry). Pure apart from the jitter draw; tests run with
// Jitter false.
func Delay(attempt int, cfg RetryConfig) time.Duration {
	if attempt <= 1 {
		return 0
	}
	base := cfg.ExponentialBase
	if base <= 0 {
		base = 2.0
	}
	d := float64(cfg.BaseDelay)
	for i := 1; i < attempt-1; i++ {
		d *= base
	}
	if cfg.Jitter {
		d *= 0.5 + rand.Float64()
	}
	return time.Duration(d)
}

// Retryable reports whether an error is worth another attempt: transport
// faults and 5xx statuses are; 4xx statuses and everything else are not.
func Retryable(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.NetworkError || ce.TimeoutError
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return false
}

// Retryer runs operations with exponential backoff between attempts.
type Retryer struct {
	cfg RetryConfig
}

func NewRetryer(cfg RetryConfig) *Retryer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Retryer{cfg: cfg}
}

// Execute invokes op until it succeeds, fails with a non-retryable error,
// or the attempt budget runs out. The last error is propagated unchanged.
func (r *Retryer) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if wait := Delay(attempt, r.cfg); wait > 0 {
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
		}
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !Retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
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
