package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolved route geometry in Redis keyed by the trip's
// endpoints. Endpoints are rounded to ~10m so nearby queries share an
// entry. A cache miss or Redis failure just means the caller hits the
// provider again.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, startLat, startLon, endLat, endLon float64) (json.RawMessage, bool) {
	val, err := c.rdb.Get(ctx, cacheKey(startLat, startLon, endLat, endLon)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("route cache read failed", "error", err)
		return nil, false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, startLat, startLon, endLat, endLon float64, geom json.RawMessage) error {
	return c.rdb.Set(ctx, cacheKey(startLat, startLon, endLat, endLon), []byte(geom), c.ttl).Err()
}

func cacheKey(startLat, startLon, endLat, endLon float64) string {
	return fmt.Sprintf("route:%.4f,%.4f:%.4f,%.4f", startLat, startLon, endLat, endLon)
}
