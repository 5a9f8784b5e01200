// Package cache keeps short-lived seat-grid snapshots in Redis so that
// repeated availability reads for a busy showtime skip the derive-and-
// join work.  The cache is strictly an optimization: every booking
// mutation invalidates the showtime's entry before returning, and a nil
// Redis client disables caching without touching any call site.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const gridKeyPrefix = "seatgrid:"

// SeatGridCache stores marshalled seat grids keyed by showtime id.
type SeatGridCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSeatGridCache builds a cache around the given client.  A nil
// client yields a cache whose operations are all no-ops.
func NewSeatGridCache(rdb *redis.Client, ttl time.Duration) *SeatGridCache {
	return &SeatGridCache{rdb: rdb, ttl: ttl}
}

// Get unmarshals the cached grid for a showtime into dest.  It reports
// whether a usable entry was found; any Redis or decode error counts as
// a miss.
func (c *SeatGridCache) Get(ctx context.Context, showtimeID string, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, gridKeyPrefix+showtimeID).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores the grid for a showtime.  Failures are swallowed: a cache
// write must never fail a read path.
func (c *SeatGridCache) Set(ctx context.Context, showtimeID string, grid interface{}) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(grid)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, gridKeyPrefix+showtimeID, raw, c.ttl).Err()
}

// Invalidate drops the cached grid for a showtime.  Called after every
// committed mutation so readers never observe a stale seat as free.
func (c *SeatGridCache) Invalidate(ctx context.Context, showtimeID string) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, gridKeyPrefix+showtimeID).Err()
}
