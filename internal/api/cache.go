package api

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// readCache keeps recent read results for a short time; any write clears it.
type readCache struct {
	c *cache.Cache
}

// newReadCache returns a disabled cache when ttl is not positive.
func newReadCache(ttl time.Duration) *readCache {
	if ttl <= 0 {
		return &readCache{}
	}

	return &readCache{c: cache.New(ttl, 2*ttl)}
}

func (rc *readCache) get(key string) (any, bool) {
	if rc.c == nil {
		return nil, false
	}

	return rc.c.Get(key)
}

func (rc *readCache) set(key string, v any) {
	if rc.c == nil {
		return
	}

	rc.c.SetDefault(key, v)
}

func (rc *readCache) flush() {
	if rc.c == nil {
		return
	}

	rc.c.Flush()
}
