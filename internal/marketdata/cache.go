package marketdata

import (
	"context"
	"time"

	"fincoach/internal/metrics"
	"fincoach/pkg/logger"
)

// QuoteCache is the storage surface the cached provider needs.
// The redis adapter satisfies it.
type QuoteCache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// CachedProvider wraps a provider with a TTL quote cache. Cache errors
// degrade to provider calls, never to request failures.
type CachedProvider struct {
	inner Provider
	cache QuoteCache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedProvider creates a cached provider
func NewCachedProvider(inner Provider, cache QuoteCache, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProvider{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		log:   logger.Get().With("component", "quote_cache"),
	}
}

func (p *CachedProvider) Name() string { return p.inner.Name() + "_cached" }

func (p *CachedProvider) GetQuote(ctx context.Context, ticker string) (*Quote, error) {
	key := "quote:" + ticker

	var cached Quote
	if err := p.cache.Get(ctx, key, &cached); err == nil {
		metrics.QuoteLookups.WithLabelValues("cache").Inc()
		return &cached, nil
	}

	quote, err := p.inner.GetQuote(ctx, ticker)
	if err != nil {
		metrics.QuoteLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.QuoteLookups.WithLabelValues("provider").Inc()

	if err := p.cache.Set(ctx, key, quote, p.ttl); err != nil {
		p.log.Warnw("Failed to cache quote", "ticker", ticker, "error", err)
	}

	return quote, nil
}
