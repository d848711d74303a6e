package models

import "time"

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReadyForPickup,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCard   PaymentMethod = "CARD"
	PaymentWallet PaymentMethod = "WALLET"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// DeliveryAddress is copied from the customer's saved address when the order is placed.
type DeliveryAddress struct {
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zip_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Order struct {
	ID                    uint                 `json:"id" gorm:"primaryKey"`
	OrderNumber           string               `json:"order_number" gorm:"uniqueIndex;not null"`
	CustomerID            uint                 `json:"customer_id" gorm:"not null;index"`
	Customer              *User                `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	RestaurantID          uint                 `json:"restaurant_id" gorm:"not null;index"`
	Restaurant            *Restaurant          `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	RiderID               *uint                `json:"rider_id" gorm:"index"`
	Rider                 *User                `json:"rider,omitempty" gorm:"foreignKey:RiderID"`
	Items                 []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Subtotal              float64              `json:"subtotal"`
	DeliveryFee           float64              `json:"delivery_fee"`
	Tax                   float64              `json:"tax"`
	Total                 float64              `json:"total"`
	Status                OrderStatus          `json:"status" gorm:"not null;index"`
	PaymentMethod         PaymentMethod        `json:"payment_method" gorm:"not null"`
	PaymentStatus         PaymentStatus        `json:"payment_status" gorm:"not null"`
	DeliveryAddress       DeliveryAddress      `json:"delivery_address" gorm:"embedded;embeddedPrefix:delivery_"`
	SpecialInstructions   string               `json:"special_instructions,omitempty"`
	CancelReason          string               `json:"cancel_reason,omitempty"`
	EstimatedDeliveryTime *time.Time           `json:"estimated_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time           `json:"actual_delivery_time,omitempty"`
	StatusHistory         []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID                  uint    `json:"id" gorm:"primaryKey"`
	OrderID             uint    `json:"order_id" gorm:"not null;index"`
	MenuItemID          uint    `json:"menu_item_id" gorm:"not null"`
	Name                string  `json:"name"`                           // snapshot name
	Price               float64 `json:"price" gorm:"not null"`          // snapshot price at time of order
	Quantity            int     `json:"quantity" gorm:"not null"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"`                     // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
