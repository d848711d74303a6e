package services

import (
	"context"

	"gorm.io/gorm"

	"starides-api/apperr"
	"starides-api/models"
)

type Stats struct {
	TotalOrders       int64   `json:"total_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
	TotalCustomers    int64   `json:"total_customers"`
}

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

type revenueRow struct {
	Orders  int64
	Revenue float64
}

// AdminStats covers delivered orders platform-wide; revenue is order totals.
func (s *StatsService) AdminStats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	var row revenueRow
	err := db.Model(&models.Order{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue").
		Where("status = ?", models.StatusDelivered).
		Scan(&row).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	var customers int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&customers).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return buildStats(row, customers), nil
}

// RestaurantStats covers one restaurant's delivered orders; revenue is
// subtotals, since delivery fees and tax are not the restaurant's.
func (s *StatsService) RestaurantStats(ctx context.Context, ident *models.Identity, restaurantID uint) (*Stats, error) {
	if err := canManageRestaurant(ctx, s.db, ident, restaurantID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var row revenueRow
	err := db.Model(&models.Order{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(subtotal), 0) AS revenue").
		Where("restaurant_id = ? AND status = ?", restaurantID, models.StatusDelivered).
		Scan(&row).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	var customers int64
	err = db.Model(&models.Order{}).
		Where("restaurant_id = ? AND status = ?", restaurantID, models.StatusDelivered).
		Distinct("customer_id").
		Count(&customers).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return buildStats(row, customers), nil
}

func buildStats(row revenueRow, customers int64) *Stats {
	st := &Stats{
		TotalOrders:    row.Orders,
		TotalRevenue:   round2(row.Revenue),
		TotalCustomers: customers,
	}
	if row.Orders > 0 {
		st.AverageOrderValue = round2(row.Revenue / float64(row.Orders))
	}
	return st
}
