package services

import (
	"fmt"

	"starides-api/apperr"
	"starides-api/models"
)

const TaxRate = 0.10

// PricedLine is one requested menu item with its quantity.
type PricedLine struct {
	MenuItem            models.MenuItem
	Quantity            int
	SpecialInstructions string
}

type Quote struct {
	Items       []models.OrderItem
	Subtotal    float64
	DeliveryFee float64
	Tax         float64
	Total       float64
}

// QuoteOrder prices lines against restaurant. Item names and prices are
// snapshotted so later menu edits do not change the order.
func QuoteOrder(r *models.Restaurant, lines []PricedLine) (*Quote, error) {
	if r.Status != models.RestaurantApproved || !r.IsOpen {
		return nil, apperr.Unavailable(fmt.Sprintf("restaurant %s is not accepting orders", r.Name))
	}
	if len(lines) == 0 {
		return nil, apperr.InvalidInput("order must contain at least one item")
	}

	q := &Quote{Items: make([]models.OrderItem, 0, len(lines))}
	var subtotal float64
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, apperr.InvalidInput("quantity must be at least 1")
		}
		if l.MenuItem.RestaurantID != r.ID || !l.MenuItem.IsAvailable {
			return nil, apperr.ItemUnavailable(l.MenuItem.Name)
		}
		subtotal += l.MenuItem.Price * float64(l.Quantity)
		q.Items = append(q.Items, models.OrderItem{
			MenuItemID:          l.MenuItem.ID,
			Name:                l.MenuItem.Name,
			Price:               l.MenuItem.Price,
			Quantity:            l.Quantity,
			SpecialInstructions: l.SpecialInstructions,
		})
	}

	q.Subtotal = round2(subtotal)
	if q.Subtotal < r.MinimumOrder {
		return nil, apperr.BelowMinimum(r.MinimumOrder, q.Subtotal)
	}
	q.DeliveryFee = round2(r.DeliveryFee)
	q.Tax = round2(q.Subtotal * TaxRate)
	q.Total = round2(q.Subtotal + q.DeliveryFee + q.Tax)
	return q, nil
}
