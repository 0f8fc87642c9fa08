package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider repeats transient failures with exponential backoff and
// ±20% jitter. A rate limit's RetryAfter overrides the computed wait.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2
	}
	return &RetryProvider{inner: p, config: cfg}
}

type retryVerdict int

const (
	giveUp retryVerdict = iota
	retryTransient
	retryMalformed // at most once per call
)

// verdict decides whether err is worth another attempt.
func verdict(err error) retryVerdict {
	var (
		rejected *ErrRequestRejected
		maxTok   *ErrMaxTokensExceeded
		invalid  *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return giveUp
	case errors.As(err, &rejected), errors.As(err, &maxTok):
		return giveUp
	case errors.As(err, &invalid):
		return retryMalformed
	default:
		return retryTransient
	}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	malformedSeen := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch verdict(err) {
		case giveUp:
			return nil, err
		case retryMalformed:
			if malformedSeen {
				return nil, err
			}
			malformedSeen = true
		}
		if attempt >= r.config.MaxAttempts {
			return nil, err
		}

		wait := r.delay(attempt, err)
		slog.Warn("generation failed, retrying",
			"purpose", PurposeFrom(ctx), "attempt", attempt, "wait", wait, "error", err)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// delay is the wait after the given 1-based failed attempt.
func (r *RetryProvider) delay(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	base := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if r.config.MaxWait > 0 && base > float64(r.config.MaxWait) {
		base = float64(r.config.MaxWait)
	}
	jitter := base * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(base+jitter, 0))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
