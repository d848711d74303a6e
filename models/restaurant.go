package models

import (
	"time"

	"gorm.io/datatypes"
)

type RestaurantStatus string

const (
	RestaurantPending   RestaurantStatus = "PENDING"
	RestaurantApproved  RestaurantStatus = "APPROVED"
	RestaurantRejected  RestaurantStatus = "REJECTED"
	RestaurantSuspended RestaurantStatus = "SUSPENDED"
)

func (s RestaurantStatus) Valid() bool {
	switch s {
	case RestaurantPending, RestaurantApproved, RestaurantRejected, RestaurantSuspended:
		return true
	}
	return false
}

type MenuItemCategory string

const (
	CategoryAppetizer  MenuItemCategory = "APPETIZER"
	CategoryMainCourse MenuItemCategory = "MAIN_COURSE"
	CategoryDessert    MenuItemCategory = "DESSERT"
	CategoryBeverage   MenuItemCategory = "BEVERAGE"
	CategorySideDish   MenuItemCategory = "SIDE_DISH"
)

type OpeningHour struct {
	Day   string `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

type Restaurant struct {
	ID                    uint                             `json:"id" gorm:"primaryKey"`
	OwnerID               uint                             `json:"owner_id" gorm:"not null;index"`
	Owner                 *User                            `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name                  string                           `json:"name" gorm:"not null"`
	Description           string                           `json:"description"`
	Cuisine               datatypes.JSONSlice[string]      `json:"cuisine"`
	Street                string                           `json:"street"`
	City                  string                           `json:"city"`
	State                 string                           `json:"state"`
	ZipCode               string                           `json:"zip_code"`
	Latitude              float64                          `json:"latitude"`
	Longitude             float64                          `json:"longitude"`
	Phone                 string                           `json:"phone"`
	Email                 string                           `json:"email"`
	Logo                  string                           `json:"logo,omitempty"`
	LogoPublicID          string                           `json:"-"`
	CoverImage            string                           `json:"cover_image,omitempty"`
	Status                RestaurantStatus                 `json:"status" gorm:"not null;index"`
	Rating                float64                          `json:"rating"`
	TotalReviews          int                              `json:"total_reviews"`
	IsOpen                bool                             `json:"is_open"`
	OpeningHours          datatypes.JSONSlice[OpeningHour] `json:"opening_hours"`
	DeliveryFee           float64                          `json:"delivery_fee"`
	MinimumOrder          float64                          `json:"minimum_order"`
	EstimatedDeliveryTime int                              `json:"estimated_delivery_time_minutes"`
	MenuItems             []MenuItem                       `json:"menu_items,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt             time.Time                        `json:"created_at"`
	UpdatedAt             time.Time                        `json:"updated_at"`
}

type MenuItem struct {
	ID              uint                        `json:"id" gorm:"primaryKey"`
	RestaurantID    uint                        `json:"restaurant_id" gorm:"not null;index"`
	Name            string                      `json:"name" gorm:"not null"`
	Description     string                      `json:"description"`
	Category        MenuItemCategory            `json:"category" gorm:"not null"`
	Price           float64                     `json:"price" gorm:"not null"`
	Image           string                      `json:"image,omitempty"`
	ImagePublicID   string                      `json:"-"`
	IsAvailable     bool                        `json:"is_available"`
	IsVegetarian    bool                        `json:"is_vegetarian"`
	IsVegan         bool                        `json:"is_vegan"`
	IsGlutenFree    bool                        `json:"is_gluten_free"`
	SpicyLevel      int                         `json:"spicy_level"`
	PreparationTime int                         `json:"preparation_time"`
	Calories        *int                        `json:"calories,omitempty"`
	Ingredients     datatypes.JSONSlice[string] `json:"ingredients"`
	Allergens       datatypes.JSONSlice[string] `json:"allergens"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}
