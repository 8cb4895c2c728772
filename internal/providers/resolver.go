package providers

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/artcache"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

// Resolver fans a candidate out to every configured provider, waits for
// all of them to settle, and unions the successful results in provider
// registration order. A failing provider contributes nothing and never
// aborts its siblings; Resolve itself never fails.
//
// Note: because every provider branch is awaited, one hung provider delays
// the whole candidate's result, not just its own contribution.
type Resolver struct {
	providers []Provider
	cache     *artcache.Cache
	logger    *slog.Logger
}

// NewResolver creates a resolver owning the given per-session cache.
func NewResolver(providers []Provider, cache *artcache.Cache, logger *slog.Logger) *Resolver {
	if cache == nil {
		cache = artcache.New(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{providers: providers, cache: cache, logger: logger}
}

// Providers returns the registered providers in fan-out order.
func (r *Resolver) Providers() []Provider {
	return r.providers
}

// Resolve maps a candidate to artworks across all providers. Per-provider
// results pass through the shared cache, so two concurrent resolutions of
// equivalent candidates coalesce onto one upstream fetch per provider.
//
// The returned error is diagnostic only: it is non-nil when every provider
// branch failed, so the caller can log the failure distinctly from a
// genuinely empty result. Partial success returns records and a nil error.
func (r *Resolver) Resolve(ctx context.Context, c model.Candidate, perProviderLimit int) ([]model.ArtworkRecord, error) {
	if len(r.providers) == 0 {
		return nil, nil
	}

	q := Query{Location: c.Location, Range: c.Range, Limit: perProviderLimit}
	results := make([][]model.ArtworkRecord, len(r.providers))
	errs := make([]error, len(r.providers))

	var wg sync.WaitGroup
	for i, provider := range r.providers {
		wg.Add(1)
		go func(idx int, p Provider) {
			defer wg.Done()

			key := artcache.Key(p.Name(), q.Location, q.Range, q.Limit)
			records, err := r.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]model.ArtworkRecord, error) {
				return p.Search(ctx, q)
			})
			if err != nil {
				errs[idx] = err
				r.logger.Debug("provider.failed",
					slog.String("provider", p.Name()),
					slog.String("key", key),
					slog.String("error", err.Error()))
				return
			}
			results[idx] = records
		}(i, provider)
	}
	wg.Wait()

	var union []model.ArtworkRecord
	failed := 0
	for i, records := range results {
		union = append(union, records...)
		if errs[i] != nil {
			failed++
		}
	}
	if failed == len(r.providers) {
		return nil, errors.Join(errs...)
	}
	return union, nil
}
