package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starides-api/apperr"
	"starides-api/events"
	"starides-api/models"
)

func TestCreateOrderPricesAndSnapshots(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.orders.now = func() time.Time { return fixed }

	order := f.placeOrder(t)

	assert.Equal(t, 18.0, order.Subtotal)
	assert.Equal(t, 5.0, order.DeliveryFee)
	assert.Equal(t, 1.8, order.Tax)
	assert.Equal(t, 24.8, order.Total)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Regexp(t, `^ORD-[0-9A-Z]+-[0-9A-Z]{5}$`, order.OrderNumber)
	require.NotNil(t, order.EstimatedDeliveryTime)
	assert.True(t, order.EstimatedDeliveryTime.Equal(fixed.Add(30*time.Minute)))
	assert.Equal(t, "1 Main St", order.DeliveryAddress.Street)

	loaded, err := f.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "Classic Burger", loaded.Items[0].Name)
	assert.Equal(t, 6.0, loaded.Items[0].Price)
	assert.Equal(t, 3, loaded.Items[0].Quantity)
	require.Len(t, loaded.StatusHistory, 1)
	assert.Equal(t, models.StatusPending, loaded.StatusHistory[0].ToStatus)

	assert.Equal(t, []events.EventType{events.OrderCreated}, f.publisher.types())
	assert.Equal(t, "order", f.mailer.last().Kind)
	assert.Equal(t, f.customer.Email, f.mailer.last().To)

	// later price changes do not touch the order
	require.NoError(t, f.db.Model(&f.burger).Update("price", 9.99).Error)
	loaded, err = f.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, loaded.Items[0].Price)
	assert.Equal(t, 24.8, loaded.Total)
}

func TestCreateOrderBelowMinimum(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.CreateOrder(context.Background(), f.customer.ID, CreateOrderInput{
		RestaurantID:  f.restaurant.ID,
		Items:         []OrderLineInput{{MenuItemID: f.burger.ID, Quantity: 2}},
		PaymentMethod: models.PaymentCash,
		AddressID:     f.address.ID,
	})
	require.Error(t, err)
	appErr := apperr.From(err)
	assert.Equal(t, apperr.KindBelowMinimum, appErr.Kind)
	assert.Equal(t, 15.0, appErr.Details["minimum"])
	assert.Equal(t, 12.0, appErr.Details["subtotal"])

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "nothing is written when a check fails")
	assert.Empty(t, f.publisher.types())
}

func TestCreateOrderRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := func() CreateOrderInput {
		return CreateOrderInput{
			RestaurantID:  f.restaurant.ID,
			Items:         []OrderLineInput{{MenuItemID: f.burger.ID, Quantity: 3}},
			PaymentMethod: models.PaymentCard,
			AddressID:     f.address.ID,
		}
	}

	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
		user   uint
		want   apperr.Kind
	}{
		{"unknown restaurant", func(in *CreateOrderInput) { in.RestaurantID = 9999 }, f.customer.ID, apperr.KindNotFound},
		{"someone else's address", func(in *CreateOrderInput) {}, f.customer2.ID, apperr.KindNotFound},
		{"sold out item", func(in *CreateOrderInput) {
			in.Items = append(in.Items, OrderLineInput{MenuItemID: f.soldOut.ID, Quantity: 1})
		}, f.customer.ID, apperr.KindItemUnavailable},
		{"item from another restaurant", func(in *CreateOrderInput) {
			in.Items = append(in.Items, OrderLineInput{MenuItemID: f.foreign.ID, Quantity: 1})
		}, f.customer.ID, apperr.KindItemUnavailable},
		{"missing item", func(in *CreateOrderInput) {
			in.Items = []OrderLineInput{{MenuItemID: 4242, Quantity: 3}}
		}, f.customer.ID, apperr.KindItemUnavailable},
		{"zero quantity", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }, f.customer.ID, apperr.KindInvalidInput},
		{"no items", func(in *CreateOrderInput) { in.Items = nil }, f.customer.ID, apperr.KindInvalidInput},
		{"bad payment method", func(in *CreateOrderInput) { in.PaymentMethod = "BITCOIN" }, f.customer.ID, apperr.KindInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base()
			tc.mutate(&in)
			_, err := f.orders.CreateOrder(ctx, tc.user, in)
			assert.Equal(t, tc.want, apperr.KindOf(err), "%v", err)
		})
	}

	t.Run("closed restaurant", func(t *testing.T) {
		require.NoError(t, f.db.Model(&f.restaurant).Update("is_open", false).Error)
		defer f.db.Model(&f.restaurant).Update("is_open", true)
		_, err := f.orders.CreateOrder(ctx, f.customer.ID, base())
		assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
	})

	t.Run("unapproved restaurant", func(t *testing.T) {
		require.NoError(t, f.db.Model(&f.restaurant).Update("status", models.RestaurantSuspended).Error)
		defer f.db.Model(&f.restaurant).Update("status", models.RestaurantApproved)
		_, err := f.orders.CreateOrder(ctx, f.customer.ID, base())
		assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
	})
}

func TestOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)
	vendor := ident(f.vendor)

	for _, st := range []models.OrderStatus{models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup} {
		updated, err := f.orders.UpdateStatus(ctx, vendor, order.ID, st, "")
		require.NoError(t, err)
		assert.Equal(t, st, updated.Status)
	}

	available, err := f.orders.AvailableDeliveries(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, order.ID, available[0].ID)

	accepted, err := f.orders.AcceptDelivery(ctx, ident(f.rider), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOutForDelivery, accepted.Status)
	require.NotNil(t, accepted.RiderID)
	assert.Equal(t, f.rider.ID, *accepted.RiderID)

	delivered, err := f.orders.UpdateStatus(ctx, ident(f.rider), order.ID, models.StatusDelivered, "left at door")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, delivered.Status)
	assert.Equal(t, models.PaymentPaid, delivered.PaymentStatus)
	assert.NotNil(t, delivered.ActualDeliveryTime)
	require.Len(t, delivered.StatusHistory, 6)
	assert.Equal(t, models.StatusOutForDelivery, delivered.StatusHistory[5].FromStatus)
	assert.Equal(t, "left at door", delivered.StatusHistory[5].Note)

	assert.Contains(t, f.publisher.types(), events.DeliveryRequested)

	mine, err := f.orders.RiderDeliveries(ctx, f.rider.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	// terminal
	_, err = f.orders.UpdateStatus(ctx, ident(f.admin), order.ID, models.StatusCancelled, "")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestUpdateStatusChecksTableThenOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)

	_, err := f.orders.UpdateStatus(ctx, ident(f.admin), order.ID, models.StatusDelivered, "")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// skipping ahead is invalid even for the owner
	_, err = f.orders.UpdateStatus(ctx, ident(f.vendor), order.ID, models.StatusPreparing, "")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	_, err = f.orders.UpdateStatus(ctx, ident(f.vendor2), order.ID, models.StatusConfirmed, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.orders.UpdateStatus(ctx, ident(f.rider), order.ID, models.StatusConfirmed, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.orders.UpdateStatus(ctx, ident(f.admin), 9999, models.StatusConfirmed, "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.orders.UpdateStatus(ctx, ident(f.admin), order.ID, "LOST", "")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestUpdateStatusConflictOnStaleRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)

	stale, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	f.advance(t, order.ID, models.StatusConfirmed)

	_, err = f.orders.transition(ctx, ident(f.vendor), stale, models.StatusConfirmed, "")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	loaded, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.StatusHistory, 2, "the losing write adds no history")
}

func TestCustomerCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.placeOrder(t)
	_, err := f.orders.Cancel(ctx, ident(f.customer2), pending.ID, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	cancelled, err := f.orders.Cancel(ctx, ident(f.customer), pending.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancelReason)
	assert.Equal(t, models.PaymentPending, cancelled.PaymentStatus, "unpaid orders are not refunded")

	confirmed := f.placeOrder(t)
	f.advance(t, confirmed.ID, models.StatusConfirmed)
	_, err = f.orders.Cancel(ctx, ident(f.customer), confirmed.ID, "")
	require.NoError(t, err)

	preparing := f.placeOrder(t)
	f.advance(t, preparing.ID, models.StatusConfirmed, models.StatusPreparing)
	_, err = f.orders.Cancel(ctx, ident(f.customer), preparing.ID, "")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// another customer learns nothing about the stage
	_, err = f.orders.Cancel(ctx, ident(f.customer2), preparing.ID, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// the vendor still can
	_, err = f.orders.Cancel(ctx, ident(f.vendor), preparing.ID, "out of buns")
	require.NoError(t, err)
}

func TestCancelPaidOrderRefunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)
	f.advance(t, order.ID, models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup, models.StatusOutForDelivery)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("payment_status", models.PaymentPaid).Error)

	_, err := f.orders.Cancel(ctx, ident(f.vendor), order.ID, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err), "only admins cancel orders on the road")

	cancelled, err := f.orders.Cancel(ctx, ident(f.admin), order.ID, "rider accident")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, cancelled.PaymentStatus)
}

func TestAcceptDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.AcceptDelivery(ctx, ident(f.rider), 9999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	order := f.placeOrder(t)
	_, err = f.orders.AcceptDelivery(ctx, ident(f.rider), order.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	_, err = f.orders.AcceptDelivery(ctx, ident(f.customer), order.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	f.advance(t, order.ID, models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup)
	_, err = f.orders.AcceptDelivery(ctx, ident(f.rider), order.ID)
	require.NoError(t, err)

	_, err = f.orders.AcceptDelivery(ctx, ident(f.rider2), order.ID)
	assert.Equal(t, apperr.KindAlreadyAssigned, apperr.KindOf(err))
}

func TestAcceptDeliveryKeepsExistingRider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)
	f.advance(t, order.ID, models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup)

	// a claim that already landed on the row, still READY_FOR_PICKUP
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("rider_id", f.rider.ID).Error)

	_, err := f.orders.AcceptDelivery(ctx, ident(f.rider2), order.ID)
	assert.Equal(t, apperr.KindAlreadyAssigned, apperr.KindOf(err))

	loaded, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyForPickup, loaded.Status)
	require.NotNil(t, loaded.RiderID)
	assert.Equal(t, f.rider.ID, *loaded.RiderID)
	assert.Len(t, loaded.StatusHistory, 4, "the losing claim adds no history")
}

func TestOutForDeliveryNeedsRider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)
	f.advance(t, order.ID, models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup)

	_, err := f.orders.UpdateStatus(ctx, ident(f.admin), order.ID, models.StatusOutForDelivery, "")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	_, err = f.orders.UpdateStatus(ctx, ident(f.rider), order.ID, models.StatusOutForDelivery, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	loaded, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyForPickup, loaded.Status)

	assigned, err := f.orders.AssignRider(ctx, ident(f.admin), order.ID, f.rider.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOutForDelivery, assigned.Status)

	delivered, err := f.orders.UpdateStatus(ctx, ident(f.rider), order.ID, models.StatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, delivered.Status)
}

func TestAcceptDeliveryRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)
	f.advance(t, order.ID, models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup)

	riders := []models.User{f.rider, f.rider2}
	errs := make([]error, len(riders))
	var wg sync.WaitGroup
	for i, r := range riders {
		wg.Add(1)
		go func(i int, r models.User) {
			defer wg.Done()
			_, errs[i] = f.orders.AcceptDelivery(ctx, ident(r), order.ID)
		}(i, r)
	}
	wg.Wait()

	var wins, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperr.Is(err, apperr.KindAlreadyAssigned):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, lost)

	loaded, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.StatusHistory, 5)
}

func TestAssignRider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)
	admin := ident(f.admin)

	_, err := f.orders.AssignRider(ctx, ident(f.vendor), order.ID, f.rider.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.orders.AssignRider(ctx, admin, order.ID, f.customer.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), "the assignee must be a rider")

	_, err = f.orders.AssignRider(ctx, admin, order.ID, f.rider.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	f.advance(t, order.ID, models.StatusConfirmed, models.StatusPreparing, models.StatusReadyForPickup)
	assigned, err := f.orders.AssignRider(ctx, admin, order.ID, f.rider.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOutForDelivery, assigned.Status)
	assert.Equal(t, f.rider.ID, *assigned.RiderID)

	reassigned, err := f.orders.AssignRider(ctx, admin, order.ID, f.rider2.ID)
	require.NoError(t, err)
	assert.Equal(t, f.rider2.ID, *reassigned.RiderID)
}

func TestOrderVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)

	for _, u := range []models.User{f.customer, f.vendor, f.admin} {
		_, err := f.orders.GetOrderFor(ctx, ident(u), order.ID)
		assert.NoError(t, err, u.Email)
	}
	for _, u := range []models.User{f.customer2, f.vendor2, f.rider} {
		_, err := f.orders.GetOrderFor(ctx, ident(u), order.ID)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err), u.Email)
	}

	list, err := f.orders.RestaurantOrders(ctx, ident(f.vendor), f.restaurant.ID, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = f.orders.RestaurantOrders(ctx, ident(f.vendor2), f.restaurant.ID, nil)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	pending := models.StatusPending
	all, err := f.orders.ListOrders(ctx, &pending)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	mine, err := f.orders.CustomerOrders(ctx, f.customer2.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestQuoteOrder(t *testing.T) {
	r := &models.Restaurant{ID: 1, Name: "R", Status: models.RestaurantApproved, IsOpen: true, DeliveryFee: 2.99, MinimumOrder: 10}
	q, err := QuoteOrder(r, []PricedLine{
		{MenuItem: models.MenuItem{ID: 1, RestaurantID: 1, Name: "A", Price: 2.5, IsAvailable: true}, Quantity: 4},
		{MenuItem: models.MenuItem{ID: 2, RestaurantID: 1, Name: "B", Price: 1.25, IsAvailable: true}, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 12.5, q.Subtotal)
	assert.Equal(t, 1.25, q.Tax)
	assert.Equal(t, 16.74, q.Total)
	require.Len(t, q.Items, 2)

	_, err = QuoteOrder(r, []PricedLine{{MenuItem: models.MenuItem{ID: 3, RestaurantID: 1, Name: "C", Price: 9, IsAvailable: true}, Quantity: 1}})
	assert.Equal(t, apperr.KindBelowMinimum, apperr.KindOf(err))
}
