package llm

import (
	"context"
	"log/slog"
	"time"
)

// Observer receives one callback per generation attempt.
type Observer interface {
	ObserveGeneration(purpose, model string, elapsed time.Duration, usage Usage, err error)
}

// InstrumentedProvider reports every call to an Observer and logs it.
type InstrumentedProvider struct {
	inner Provider
	obs   Observer
}

// WithObserver wraps a Provider so each call is observed. A nil observer
// only logs.
func WithObserver(p Provider, obs Observer) Provider {
	return &InstrumentedProvider{inner: p, obs: obs}
}

func (p *InstrumentedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := p.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	model := p.inner.ModelID()
	var usage Usage
	if resp != nil {
		usage = resp.Usage
		if resp.Model != "" {
			model = resp.Model
		}
	}
	if p.obs != nil {
		p.obs.ObserveGeneration(purpose, model, elapsed, usage, err)
	}
	if err != nil {
		slog.Debug("generation failed", "purpose", purpose, "model", model, "elapsed", elapsed, "error", err)
	} else {
		slog.Debug("generation done", "purpose", purpose, "model", model, "elapsed", elapsed, "output_tokens", usage.OutputTokens)
	}
	return resp, err
}

func (p *InstrumentedProvider) ModelID() string {
	return p.inner.ModelID()
}
