package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// LimitCache keeps resolved per-diagnosis session limits in memory so the
// read-mostly diagnosticos table is not hit on every lifecycle decision.
type LimitCache struct {
	cache *cache.Cache
}

func NewLimitCache() *LimitCache {
	// limits change rarely; 5 minute expiry, purge every 10
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &LimitCache{
		cache: c,
	}
}

func (r *LimitCache) Set(codigo string, maxSessoes int) {
	r.cache.Set(codigo, maxSessoes, cache.DefaultExpiration)
}

func (r *LimitCache) Get(codigo string) (int, bool) {
	if x, found := r.cache.Get(codigo); found {
		return x.(int), true
	}
	return 0, false
}

func (r *LimitCache) Invalidate(codigo string) {
	r.cache.Delete(codigo)
}
