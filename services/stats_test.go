package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starides-api/apperr"
	"starides-api/models"
)

func TestStats(t *testing.T) {
	f := newFixture(t)
	svc := NewStatsService(f.db)
	ctx := context.Background()

	f.deliveredOrder(t)
	f.deliveredOrder(t)
	f.placeOrder(t) // still pending, not counted

	admin, err := svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), admin.TotalOrders)
	assert.Equal(t, 49.6, admin.TotalRevenue)
	assert.Equal(t, 24.8, admin.AverageOrderValue)
	assert.Equal(t, int64(2), admin.TotalCustomers)

	vendor, err := svc.RestaurantStats(ctx, ident(f.vendor), f.restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), vendor.TotalOrders)
	assert.Equal(t, 36.0, vendor.TotalRevenue)
	assert.Equal(t, 18.0, vendor.AverageOrderValue)
	assert.Equal(t, int64(1), vendor.TotalCustomers)

	empty, err := svc.RestaurantStats(ctx, ident(f.vendor2), f.other.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalOrders)
	assert.Zero(t, empty.AverageOrderValue)

	_, err = svc.RestaurantStats(ctx, ident(f.vendor2), f.restaurant.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = svc.RestaurantStats(ctx, &models.Identity{UserID: f.rider.ID, Role: models.RoleRider}, f.restaurant.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
