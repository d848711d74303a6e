// Package cache is a read-through redis cache for restaurant and menu reads.
// A nil client disables it; every method is then a miss or a no-op.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"starides-api/models"
)

const DefaultTTL = 5 * time.Minute

type RestaurantCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewRestaurantCache(client *redis.Client, ttl time.Duration, log *slog.Logger) *RestaurantCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RestaurantCache{client: client, ttl: ttl, log: log}
}

func (c *RestaurantCache) Enabled() bool { return c != nil && c.client != nil }

func restaurantKey(id uint) string { return fmt.Sprintf("restaurant:%d", id) }

func menuKey(restaurantID uint) string { return fmt.Sprintf("restaurant:%d:menu", restaurantID) }

func (c *RestaurantCache) GetRestaurant(ctx context.Context, id uint) (*models.Restaurant, bool) {
	var r models.Restaurant
	if !c.get(ctx, restaurantKey(id), &r) {
		return nil, false
	}
	return &r, true
}

func (c *RestaurantCache) SetRestaurant(ctx context.Context, r *models.Restaurant) {
	c.set(ctx, restaurantKey(r.ID), r)
}

func (c *RestaurantCache) GetMenu(ctx context.Context, restaurantID uint) ([]models.MenuItem, bool) {
	var items []models.MenuItem
	if !c.get(ctx, menuKey(restaurantID), &items) {
		return nil, false
	}
	return items, true
}

func (c *RestaurantCache) SetMenu(ctx context.Context, restaurantID uint, items []models.MenuItem) {
	c.set(ctx, menuKey(restaurantID), items)
}

// Invalidate drops both the restaurant and its menu.
func (c *RestaurantCache) Invalidate(ctx context.Context, restaurantID uint) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, restaurantKey(restaurantID), menuKey(restaurantID)).Err(); err != nil {
		c.log.Warn("cache invalidate failed", "action", "cache_invalidate", "restaurant_id", restaurantID, "error", err)
	}
}

func (c *RestaurantCache) get(ctx context.Context, key string, dst interface{}) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", "action", "cache_get", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("cache entry corrupt", "action", "cache_get", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RestaurantCache) set(ctx context.Context, key string, v interface{}) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "action", "cache_set", "key", key, "error", err)
	}
}
