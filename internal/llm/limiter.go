package llm

import (
	"context"

	"dev.cogito.requiem/internal/concurrency"
)

// RateLimitedProvider enforces a requests-per-minute cap in front of any
// provider. Agent roles each wrap their provider with their configured cap
// so runaway tool loops cannot exhaust the backend quota.
type RateLimitedProvider struct {
	inner   Provider
	limiter *concurrency.RateLimiter
}

// NewRateLimitedProvider wraps inner with a perMinute call cap.
func NewRateLimitedProvider(inner Provider, perMinute int) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:   inner,
		limiter: concurrency.NewRateLimiter(perMinute),
	}
}

// Complete waits for a rate slot and delegates to the wrapped provider.
func (p *RateLimitedProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Complete(ctx, req)
}

// HealthCheck delegates to the wrapped provider without consuming a slot.
func (p *RateLimitedProvider) HealthCheck(ctx context.Context) error {
	return p.inner.HealthCheck(ctx)
}

// Name returns the wrapped provider's identifier.
func (p *RateLimitedProvider) Name() string { return p.inner.Name() }
