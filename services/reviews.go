package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"starides-api/apperr"
	"starides-api/cache"
	"starides-api/models"
)

type ReviewService struct {
	db    *gorm.DB
	cache *cache.RestaurantCache
	log   *slog.Logger
	now   func() time.Time
}

func NewReviewService(db *gorm.DB, c *cache.RestaurantCache, log *slog.Logger) *ReviewService {
	return &ReviewService{db: db, cache: c, log: log, now: time.Now}
}

type CreateReviewInput struct {
	OrderID          uint   `json:"order_id" binding:"required"`
	RestaurantRating int    `json:"restaurant_rating" binding:"min=1,max=5"`
	RiderRating      *int   `json:"rider_rating" binding:"omitempty,min=1,max=5"`
	FoodQuality      int    `json:"food_quality" binding:"min=1,max=5"`
	DeliverySpeed    int    `json:"delivery_speed" binding:"min=1,max=5"`
	Comment          string `json:"comment" binding:"max=2000"`
}

// CreateReview stores a review for a delivered order and recomputes the
// restaurant's rating and review count in the same transaction.
func (s *ReviewService) CreateReview(ctx context.Context, customerID uint, in CreateReviewInput) (*models.Review, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var order models.Order
	if err := db.First(&order, in.OrderID).Error; err != nil {
		return nil, dbError(err, "order")
	}
	if order.CustomerID != customerID {
		return nil, apperr.Forbidden("you can only review your own orders")
	}
	if order.Status != models.StatusDelivered {
		return nil, apperr.InvalidState("only delivered orders can be reviewed")
	}

	var existing int64
	if err := db.Model(&models.Review{}).Where("order_id = ?", order.ID).Count(&existing).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if existing > 0 {
		return nil, apperr.Conflict("this order has already been reviewed")
	}

	review := models.Review{
		OrderID:          order.ID,
		CustomerID:       customerID,
		RestaurantID:     order.RestaurantID,
		RiderID:          order.RiderID,
		RestaurantRating: in.RestaurantRating,
		RiderRating:      in.RiderRating,
		FoodQuality:      in.FoodQuality,
		DeliverySpeed:    in.DeliverySpeed,
		Comment:          strings.TrimSpace(in.Comment),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, order.RestaurantID)
	})
	if err != nil {
		return nil, dbError(err, "review")
	}

	s.cache.Invalidate(ctx, order.RestaurantID)
	s.log.Info("review created", "action", "create_review", "review_id", review.ID,
		"restaurant_id", review.RestaurantID, "rating", review.RestaurantRating)
	return &review, nil
}

// recomputeRating sets rating to the mean restaurant rating over every review.
func recomputeRating(tx *gorm.DB, restaurantID uint) error {
	var agg struct {
		Avg   float64
		Total int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(restaurant_rating), 0) AS avg, COUNT(*) AS total").
		Where("restaurant_id = ?", restaurantID).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Restaurant{}).Where("id = ?", restaurantID).
		Updates(map[string]interface{}{
			"rating":        agg.Avg,
			"total_reviews": agg.Total,
		}).Error
}

// RespondToReview records the owning vendor's public reply.
func (s *ReviewService) RespondToReview(ctx context.Context, ident *models.Identity, reviewID uint, response string) (*models.Review, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, apperr.InvalidInput("response must not be empty")
	}
	review, err := s.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if ident.Role != models.RoleVendor {
		return nil, apperr.Forbidden("only the restaurant owner can respond to reviews")
	}
	if err := canManageRestaurant(ctx, s.db, ident, review.RestaurantID); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.db.WithContext(ctx).Model(review).Updates(map[string]interface{}{
		"response_text": response,
		"responded_at":  now,
	}).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	review.ResponseText = &response
	review.RespondedAt = &now
	return review, nil
}

func (s *ReviewService) Get(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, dbError(err, "review")
	}
	return &review, nil
}

func (s *ReviewService) ForRestaurant(ctx context.Context, restaurantID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC, id DESC").Find(&reviews).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return reviews, nil
}
