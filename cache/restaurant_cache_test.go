package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starides-api/logger"
	"starides-api/models"
)

func newTestCache(t *testing.T) (*RestaurantCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRestaurantCache(client, time.Minute, logger.Discard()), mr
}

func TestRestaurantRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok := c.GetRestaurant(ctx, 3)
	assert.False(t, ok)

	c.SetRestaurant(ctx, &models.Restaurant{ID: 3, Name: "Pizza Place", Cuisine: []string{"italian"}, Rating: 4.5})
	got, ok := c.GetRestaurant(ctx, 3)
	require.True(t, ok)
	assert.Equal(t, "Pizza Place", got.Name)
	assert.Equal(t, []string{"italian"}, []string(got.Cuisine))
	assert.Equal(t, 4.5, got.Rating)

	mr.FastForward(2 * time.Minute)
	_, ok = c.GetRestaurant(ctx, 3)
	assert.False(t, ok, "entry should expire after ttl")
}

func TestInvalidateDropsRestaurantAndMenu(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetRestaurant(ctx, &models.Restaurant{ID: 9, Name: "Noodles"})
	c.SetMenu(ctx, 9, []models.MenuItem{{ID: 1, RestaurantID: 9, Name: "Ramen", Price: 11}})
	assert.True(t, mr.Exists("restaurant:9"))
	assert.True(t, mr.Exists("restaurant:9:menu"))

	c.Invalidate(ctx, 9)
	assert.False(t, mr.Exists("restaurant:9"))
	assert.False(t, mr.Exists("restaurant:9:menu"))
}

func TestDisabledCacheIsNoop(t *testing.T) {
	var nilCache *RestaurantCache
	assert.False(t, nilCache.Enabled())

	c := NewRestaurantCache(nil, 0, logger.Discard())
	ctx := context.Background()
	c.SetMenu(ctx, 1, []models.MenuItem{{ID: 1}})
	_, ok := c.GetMenu(ctx, 1)
	assert.False(t, ok)
	c.Invalidate(ctx, 1)
}
