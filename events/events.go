// Package events fans order lifecycle changes out to GraphQL subscribers and,
// when configured, to a RabbitMQ topic exchange.
package events

import (
	"context"
	"errors"
	"time"

	"starides-api/models"
)

type EventType string

const (
	OrderCreated       EventType = "ORDER_CREATED"
	OrderStatusChanged EventType = "ORDER_STATUS_CHANGED"
	DeliveryRequested  EventType = "DELIVERY_REQUESTED"
)

type OrderEvent struct {
	Type         EventType          `json:"type"`
	OrderID      uint               `json:"order_id"`
	OrderNumber  string             `json:"order_number"`
	RestaurantID uint               `json:"restaurant_id"`
	CustomerID   uint               `json:"customer_id"`
	RiderID      *uint              `json:"rider_id,omitempty"`
	Status       models.OrderStatus `json:"status"`
	At           time.Time          `json:"at"`
}

// NewOrderEvent snapshots the routing fields of o.
func NewOrderEvent(t EventType, o *models.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:         t,
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		RestaurantID: o.RestaurantID,
		CustomerID:   o.CustomerID,
		RiderID:      o.RiderID,
		Status:       o.Status,
		At:           at,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev OrderEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
