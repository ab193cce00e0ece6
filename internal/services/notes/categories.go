package notes

import (
	"context"
	"fmt"
	"log/slog"
)

// CountsCache stores computed category summaries per owner. Implementations
// must treat a miss and a failure alike from the caller's point of view.
//
// Every Invalidate advances the owner's generation. Set only stores counts
// when the generation still equals gen, so a summary computed before a
// write can never land after that write's invalidation.
type CountsCache interface {
	Get(ctx context.Context, ownerID string) ([]CategoryCount, bool, error)
	Generation(ctx context.Context, ownerID string) (int64, error)
	Set(ctx context.Context, ownerID string, gen int64, counts []CategoryCount) error
	Invalidate(ctx context.Context, ownerID string) error
}

// NopCache disables caching.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]CategoryCount, bool, error) { return nil, false, nil }
func (NopCache) Generation(context.Context, string) (int64, error) { return 0, nil }
func (NopCache) Set(context.Context, string, int64, []CategoryCount) error { return nil }
func (NopCache) Invalidate(context.Context, string) error { return nil }

// Aggregator computes the fixed-taxonomy category summary for an owner.
type Aggregator struct {
	repo  Repository
	cache CountsCache
	log   *slog.Logger
}

// NewAggregator wires an aggregator; a nil cache disables caching.
func NewAggregator(repo Repository, cache CountsCache, log *slog.Logger) *Aggregator {
	if cache == nil {
		cache = NopCache{}
	}
	return &Aggregator{repo: repo, cache: cache, log: log}
}

// CategoryCounts returns one entry per category in taxonomy order, with a
// zero count for categories the owner has never used.
func (a *Aggregator) CategoryCounts(ctx context.Context, ownerID string) ([]CategoryCount, error) {
	cached, ok, err := a.cache.Get(ctx, ownerID)
	if err != nil {
		a.log.Warn("category cache read failed", "error", err, "user_id", ownerID)
	} else if ok && len(cached) == len(taxonomy) {
		return cached, nil
	}

	// read before counting; a write that lands meanwhile bumps it
	gen, genErr := a.cache.Generation(ctx, ownerID)
	if genErr != nil {
		a.log.Warn("category cache generation read failed", "error", genErr, "user_id", ownerID)
	}

	raw, err := a.repo.CountByCategory(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}

	counts := BuildCounts(raw)
	if genErr == nil {
		if err := a.cache.Set(ctx, ownerID, gen, counts); err != nil {
			a.log.Warn("category cache write failed", "error", err, "user_id", ownerID)
		}
	}
	return counts, nil
}

// Invalidate drops the cached summary for ownerID.
func (a *Aggregator) Invalidate(ctx context.Context, ownerID string) {
	if err := a.cache.Invalidate(ctx, ownerID); err != nil {
		a.log.Warn("category cache invalidation failed", "error", err, "user_id", ownerID)
	}
}

// BuildCounts lays raw store counts over the taxonomy. Values outside the
// taxonomy are ignored.
func BuildCounts(raw map[Category]int64) []CategoryCount {
	out := make([]CategoryCount, 0, len(taxonomy))
	for _, c := range taxonomy {
		out = append(out, CategoryCount{Name: c, Count: raw[c], Color: c.Color()})
	}
	return out
}
