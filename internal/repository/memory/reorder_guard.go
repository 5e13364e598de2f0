package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ReorderGuard marks a user's board as being reordered. The mark expires on
// its own after the TTL so a crashed request cannot lock a board forever.
type ReorderGuard struct {
	cache *cache.Cache
}

func NewReorderGuard(ttl time.Duration) *ReorderGuard {
	return &ReorderGuard{
		cache: cache.New(ttl, 2*ttl),
	}
}

// Acquire reports false when another reorder for the user is still in flight.
func (g *ReorderGuard) Acquire(userId uuid.UUID) bool {
	return g.cache.Add(userId.String(), struct{}{}, cache.DefaultExpiration) == nil
}

func (g *ReorderGuard) Release(userId uuid.UUID) {
	g.cache.Delete(userId.String())
}
