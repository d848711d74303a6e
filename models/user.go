package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleVendor   UserRole = "VENDOR"
	RoleRider    UserRole = "RIDER"
	RoleAdmin    UserRole = "ADMIN"
)

// Valid reports whether r is one of the four known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleRider, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                   uint       `json:"id" gorm:"primaryKey"`
	Email                string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash         string     `json:"-" gorm:"not null"`
	FirstName            string     `json:"first_name" gorm:"not null"`
	LastName             string     `json:"last_name" gorm:"not null"`
	Phone                string     `json:"phone"`
	Role                 UserRole   `json:"role" gorm:"not null;index"`
	Avatar               string     `json:"avatar,omitempty"`
	IsActive             bool       `json:"is_active" gorm:"not null"`
	IsVerified           bool       `json:"is_verified" gorm:"not null"`
	RestaurantID         *uint      `json:"restaurant_id,omitempty"`
	VehicleType          string     `json:"vehicle_type,omitempty"`
	VehicleNumber        string     `json:"vehicle_number,omitempty"`
	IsAvailable          bool       `json:"is_available"`
	Addresses            []Address  `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
	ResetPasswordToken   *string    `json:"-" gorm:"index"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Address is a saved delivery location owned by a customer.
type Address struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Label     string    `json:"label"`
	Street    string    `json:"street" gorm:"not null"`
	City      string    `json:"city" gorm:"not null"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the authenticated caller as decoded from a bearer token.
type Identity struct {
	UserID uint     `json:"user_id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
}
