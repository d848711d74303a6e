package models

import "time"

// Review is a customer's rating of a delivered order. One per order.
type Review struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	OrderID          uint       `json:"order_id" gorm:"uniqueIndex;not null"`
	CustomerID       uint       `json:"customer_id" gorm:"not null;index"`
	RestaurantID     uint       `json:"restaurant_id" gorm:"not null;index"`
	RiderID          *uint      `json:"rider_id,omitempty"`
	RestaurantRating int        `json:"restaurant_rating" gorm:"not null"`
	RiderRating      *int       `json:"rider_rating,omitempty"`
	FoodQuality      int        `json:"food_quality"`
	DeliverySpeed    int        `json:"delivery_speed"`
	Comment          string     `json:"comment,omitempty"`
	ResponseText     *string    `json:"response_text,omitempty"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
