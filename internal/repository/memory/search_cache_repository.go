package memory

import (
	"strings"
	"time"

	"notes-intelligence-be/pkg/pipeline"

	"github.com/patrickmn/go-cache"
)

// SearchCacheRepository keeps link search results in process memory.
type SearchCacheRepository struct {
	cache *cache.Cache
}

func NewSearchCacheRepository(ttl time.Duration) *SearchCacheRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SearchCacheRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func key(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func (r *SearchCacheRepository) Save(query string, results []pipeline.Resource) {
	stored := append([]pipeline.Resource(nil), results...)
	r.cache.Set(key(query), stored, cache.DefaultExpiration)
}

func (r *SearchCacheRepository) Get(query string) ([]pipeline.Resource, bool) {
	if x, found := r.cache.Get(key(query)); found {
		return append([]pipeline.Resource(nil), x.([]pipeline.Resource)...), true
	}
	return nil, false
}

func (r *SearchCacheRepository) Delete(query string) {
	r.cache.Delete(key(query))
}
