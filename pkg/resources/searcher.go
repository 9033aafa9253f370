// Package resources finds external reading links for extracted concepts.
package resources

import (
	"context"
	"time"

	"notes-intelligence-be/pkg/pipeline"

	"golang.org/x/time/rate"
)

// Searcher runs a web query and returns at most max results.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]pipeline.Resource, error)
}

// Cache memoizes search results by query.
type Cache interface {
	Get(query string) ([]pipeline.Resource, bool)
	Save(query string, results []pipeline.Resource)
}

// ThrottledSearcher spaces outgoing searches by a fixed delay and serves
// repeated queries from the cache without touching the limiter.
type ThrottledSearcher struct {
	next    Searcher
	limiter *rate.Limiter
	cache   Cache
}

func NewThrottledSearcher(next Searcher, delay time.Duration, cache Cache) *ThrottledSearcher {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &ThrottledSearcher{next: next, limiter: rate.NewLimiter(limit, 1), cache: cache}
}

func (s *ThrottledSearcher) Search(ctx context.Context, query string, max int) ([]pipeline.Resource, error) {
	if s.cache != nil {
		if hit, ok := s.cache.Get(query); ok {
			return hit, nil
		}
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	results, err := s.next.Search(ctx, query, max)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Save(query, results)
	}
	return results, nil
}
