package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"starides-api/apperr"
	"starides-api/events"
	"starides-api/models"
	"starides-api/statemachine"
	"starides-api/utils"
)

type OrderService struct {
	db     *gorm.DB
	events events.Publisher
	mailer Mailer
	log    *slog.Logger
	now    func() time.Time
}

func NewOrderService(db *gorm.DB, pub events.Publisher, mailer Mailer, log *slog.Logger) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{db: db, events: pub, mailer: mailer, log: log, now: time.Now}
}

// ----- DTOs -----

type OrderLineInput struct {
	MenuItemID          uint   `json:"menu_item_id" binding:"required"`
	Quantity            int    `json:"quantity" binding:"required,min=1"`
	SpecialInstructions string `json:"special_instructions" binding:"max=500"`
}

type CreateOrderInput struct {
	RestaurantID        uint                 `json:"restaurant_id" binding:"required"`
	Items               []OrderLineInput     `json:"items" binding:"required,min=1,dive"`
	PaymentMethod       models.PaymentMethod `json:"payment_method" binding:"required,oneof=CASH CARD WALLET"`
	AddressID           uint                 `json:"address_id" binding:"required"`
	SpecialInstructions string               `json:"special_instructions" binding:"max=1000"`
}

// ----- Create -----

// CreateOrder validates and prices the request, then writes the order, its
// items and the first history row in a single insert. Nothing is written
// unless every check passes.
func (s *OrderService) CreateOrder(ctx context.Context, customerID uint, in CreateOrderInput) (*models.Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var address models.Address
	if err := db.Where("id = ? AND user_id = ?", in.AddressID, customerID).First(&address).Error; err != nil {
		return nil, dbError(err, "address")
	}

	var restaurant models.Restaurant
	if err := db.First(&restaurant, in.RestaurantID).Error; err != nil {
		return nil, dbError(err, "restaurant")
	}
	if restaurant.Status != models.RestaurantApproved || !restaurant.IsOpen {
		return nil, apperr.Unavailable(fmt.Sprintf("restaurant %s is not accepting orders", restaurant.Name))
	}

	ids := make([]uint, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.MenuItemID)
	}
	var items []models.MenuItem
	if err := db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	byID := make(map[uint]models.MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	lines := make([]PricedLine, 0, len(in.Items))
	for _, it := range in.Items {
		mi, ok := byID[it.MenuItemID]
		if !ok {
			return nil, apperr.ItemUnavailable(fmt.Sprintf("menu item %d", it.MenuItemID))
		}
		lines = append(lines, PricedLine{MenuItem: mi, Quantity: it.Quantity, SpecialInstructions: it.SpecialInstructions})
	}

	quote, err := QuoteOrder(&restaurant, lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	eta := now.Add(time.Duration(restaurant.EstimatedDeliveryTime) * time.Minute)
	order := models.Order{
		CustomerID:    customerID,
		RestaurantID:  restaurant.ID,
		Items:         quote.Items,
		Subtotal:      quote.Subtotal,
		DeliveryFee:   quote.DeliveryFee,
		Tax:           quote.Tax,
		Total:         quote.Total,
		Status:        models.StatusPending,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: models.PaymentPending,
		DeliveryAddress: models.DeliveryAddress{
			Street:    address.Street,
			City:      address.City,
			State:     address.State,
			ZipCode:   address.ZipCode,
			Latitude:  address.Latitude,
			Longitude: address.Longitude,
		},
		SpecialInstructions:   in.SpecialInstructions,
		EstimatedDeliveryTime: &eta,
		StatusHistory: []models.OrderStatusHistory{{
			ToStatus:  models.StatusPending,
			ChangedBy: customerID,
			Note:      "Order placed by customer",
		}},
	}

	// order numbers are random; retry the rare collision with a fresh one
	for attempt := 0; ; attempt++ {
		order.OrderNumber = utils.GenerateOrderNumber(now)
		err = db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&order).Error
		})
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == 2 {
			break
		}
		order.ID = 0
		for i := range order.Items {
			order.Items[i].ID, order.Items[i].OrderID = 0, 0
		}
		order.StatusHistory[0].ID, order.StatusHistory[0].OrderID = 0, 0
	}
	if err != nil {
		return nil, dbError(err, "order")
	}

	s.log.Info("order placed", "action", "create_order", "order_id", order.ID,
		"order_number", order.OrderNumber, "restaurant_id", order.RestaurantID, "total", order.Total)
	publish(ctx, s.log, s.events, events.NewOrderEvent(events.OrderCreated, &order, now))
	s.sendConfirmation(ctx, &order)

	return &order, nil
}

func (s *OrderService) sendConfirmation(ctx context.Context, order *models.Order) {
	if s.mailer == nil {
		return
	}
	var customer models.User
	if err := s.db.WithContext(ctx).Select("id", "email").First(&customer, order.CustomerID).Error; err != nil {
		s.log.Warn("order confirmation skipped", "action", "send_email", "order_id", order.ID, "error", err)
		return
	}
	if err := s.mailer.SendOrderConfirmation(customer.Email, order.OrderNumber, order.Total); err != nil {
		s.log.Warn("order confirmation failed", "action", "send_email", "order_id", order.ID, "error", err)
	}
}

// ----- Reads -----

func (s *OrderService) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.preloaded(ctx).First(&order, id).Error; err != nil {
		return nil, dbError(err, "order")
	}
	return &order, nil
}

// GetOrderFor loads an order the caller is allowed to see.
func (s *OrderService) GetOrderFor(ctx context.Context, ident *models.Identity, id uint) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, ident, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, status *models.OrderStatus) ([]models.Order, error) {
	q := s.preloaded(ctx)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var orders []models.Order
	if err := q.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

func (s *OrderService) CustomerOrders(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.preloaded(ctx).Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

// RestaurantOrders lists a restaurant's orders for its owner (or an admin).
func (s *OrderService) RestaurantOrders(ctx context.Context, ident *models.Identity, restaurantID uint, status *models.OrderStatus) ([]models.Order, error) {
	if err := canManageRestaurant(ctx, s.db, ident, restaurantID); err != nil {
		return nil, err
	}
	q := s.preloaded(ctx).Where("restaurant_id = ?", restaurantID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var orders []models.Order
	if err := q.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

// AvailableDeliveries lists unassigned orders waiting for pickup, oldest first.
func (s *OrderService) AvailableDeliveries(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.preloaded(ctx).
		Where("status = ? AND rider_id IS NULL", models.StatusReadyForPickup).
		Order("created_at ASC, id ASC").Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

func (s *OrderService) RiderDeliveries(ctx context.Context, riderID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.preloaded(ctx).Where("rider_id = ?", riderID).
		Order("created_at DESC, id DESC").Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

// checkAccess: customer owner, vendor owner, assigned rider, or admin.
func (s *OrderService) checkAccess(ctx context.Context, ident *models.Identity, order *models.Order) error {
	switch ident.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCustomer:
		if order.CustomerID == ident.UserID {
			return nil
		}
		return apperr.Forbidden("this order does not belong to you")
	case models.RoleVendor:
		owns, err := ownsRestaurant(ctx, s.db, ident.UserID, order.RestaurantID)
		if err != nil {
			return err
		}
		if owns {
			return nil
		}
		return apperr.Forbidden("this order does not belong to your restaurant")
	case models.RoleRider:
		if order.RiderID != nil && *order.RiderID == ident.UserID {
			return nil
		}
		return apperr.Forbidden("you are not the assigned rider for this order")
	}
	return apperr.Forbidden("access denied")
}

// ----- Transitions -----

var errNoRows = errors.New("no rows updated")

// UpdateStatus moves an order along the state machine. The table is checked
// before ownership; the write only lands if the status is still what was read.
func (s *OrderService) UpdateStatus(ctx context.Context, ident *models.Identity, id uint, to models.OrderStatus, note string) (*models.Order, error) {
	if !to.Valid() {
		return nil, apperr.InvalidInput(fmt.Sprintf("unknown order status %q", to))
	}
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, ident, order, to, note)
}

// Cancel cancels an order. Customers may only cancel their own orders while
// PENDING or CONFIRMED; ownership is checked first so other customers learn
// nothing about the order.
func (s *OrderService) Cancel(ctx context.Context, ident *models.Identity, id uint, reason string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if ident.Role == models.RoleCustomer {
		if order.CustomerID != ident.UserID {
			return nil, apperr.Forbidden("you can only cancel your own orders")
		}
		if order.Status != models.StatusPending && order.Status != models.StatusConfirmed {
			return nil, apperr.InvalidState("order cannot be cancelled at this stage")
		}
	}
	return s.transition(ctx, ident, order, models.StatusCancelled, reason)
}

func (s *OrderService) transition(ctx context.Context, ident *models.Identity, order *models.Order, to models.OrderStatus, note string) (*models.Order, error) {
	if err := statemachine.CanTransition(order.Status, to, ident.Role); err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, ident, order); err != nil {
		return nil, err
	}
	if to == models.StatusOutForDelivery && order.RiderID == nil {
		return nil, apperr.InvalidState("order has no rider, use acceptDelivery or assignRider")
	}

	now := s.now()
	updates := map[string]interface{}{"status": to}
	switch to {
	case models.StatusDelivered:
		updates["actual_delivery_time"] = now
		updates["payment_status"] = models.PaymentPaid
	case models.StatusCancelled:
		updates["cancel_reason"] = note
		if order.PaymentStatus == models.PaymentPaid {
			updates["payment_status"] = models.PaymentRefunded
		}
	}
	if note == "" {
		note = fmt.Sprintf("Status changed to %s", to)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNoRows
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   to,
			ChangedBy:  ident.UserID,
			Note:       note,
		}).Error
	})
	if errors.Is(err, errNoRows) {
		return nil, apperr.Conflict("order status changed concurrently, reload and retry")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	updated, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info("order status changed", "action", "update_order_status", "order_id", order.ID,
		"from", order.Status, "to", to, "user_id", ident.UserID)
	s.publishStatus(ctx, updated, now)
	return updated, nil
}

func (s *OrderService) publishStatus(ctx context.Context, order *models.Order, at time.Time) {
	publish(ctx, s.log, s.events, events.NewOrderEvent(events.OrderStatusChanged, order, at))
	if order.Status == models.StatusReadyForPickup && order.RiderID == nil {
		publish(ctx, s.log, s.events, events.NewOrderEvent(events.DeliveryRequested, order, at))
	}
}

// AcceptDelivery lets a rider claim a ready order. The claim is a single
// conditional UPDATE, so of two concurrent riders exactly one wins.
func (s *OrderService) AcceptDelivery(ctx context.Context, ident *models.Identity, orderID uint) (*models.Order, error) {
	if err := statemachine.CanTransition(models.StatusReadyForPickup, models.StatusOutForDelivery, ident.Role); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ? AND rider_id IS NULL", orderID, models.StatusReadyForPickup).
			Updates(map[string]interface{}{
				"rider_id": ident.UserID,
				"status":   models.StatusOutForDelivery,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNoRows
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: models.StatusReadyForPickup,
			ToStatus:   models.StatusOutForDelivery,
			ChangedBy:  ident.UserID,
			Note:       "Delivery accepted by rider",
		}).Error
	})
	if errors.Is(err, errNoRows) {
		current, loadErr := s.GetOrder(ctx, orderID)
		if loadErr != nil {
			return nil, loadErr
		}
		if current.RiderID != nil {
			return nil, apperr.AlreadyAssigned("order already assigned to a rider")
		}
		return nil, apperr.InvalidState(fmt.Sprintf("order is %s, not ready for pickup", current.Status))
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.log.Info("delivery accepted", "action", "accept_delivery", "order_id", orderID, "rider_id", ident.UserID)
	publish(ctx, s.log, s.events, events.NewOrderEvent(events.OrderStatusChanged, order, s.now()))
	return order, nil
}

// AssignRider is the admin override: it (re)assigns a rider to an order that
// is ready or already on the road.
func (s *OrderService) AssignRider(ctx context.Context, ident *models.Identity, orderID, riderID uint) (*models.Order, error) {
	if ident.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("only admins can assign riders")
	}
	db := s.db.WithContext(ctx)

	var rider models.User
	if err := db.Where("id = ? AND role = ?", riderID, models.RoleRider).First(&rider).Error; err != nil {
		return nil, dbError(err, "rider")
	}
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusReadyForPickup && order.Status != models.StatusOutForDelivery {
		return nil, apperr.InvalidState(fmt.Sprintf("order is %s, not ready for delivery", order.Status))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]interface{}{
				"rider_id": rider.ID,
				"status":   models.StatusOutForDelivery,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNoRows
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   models.StatusOutForDelivery,
			ChangedBy:  ident.UserID,
			Note:       fmt.Sprintf("Rider %d assigned by admin", rider.ID),
		}).Error
	})
	if errors.Is(err, errNoRows) {
		return nil, apperr.Conflict("order status changed concurrently, reload and retry")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	updated, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info("rider assigned", "action", "assign_rider", "order_id", order.ID, "rider_id", rider.ID)
	publish(ctx, s.log, s.events, events.NewOrderEvent(events.OrderStatusChanged, updated, s.now()))
	return updated, nil
}
