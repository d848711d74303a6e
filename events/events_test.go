package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starides-api/models"
)

func TestHubFiltersAndDelivers(t *testing.T) {
	hub := NewHub(4)
	ctx := context.Background()

	forSeven, cancel7 := hub.Subscribe(func(ev OrderEvent) bool { return ev.OrderID == 7 })
	defer cancel7()
	everything, cancelAll := hub.Subscribe(nil)
	defer cancelAll()
	assert.Equal(t, 2, hub.Subscribers())

	require.NoError(t, hub.Publish(ctx, OrderEvent{Type: OrderStatusChanged, OrderID: 3}))
	require.NoError(t, hub.Publish(ctx, OrderEvent{Type: OrderStatusChanged, OrderID: 7, Status: models.StatusConfirmed}))

	select {
	case ev := <-forSeven:
		assert.Equal(t, uint(7), ev.OrderID)
		assert.Equal(t, models.StatusConfirmed, ev.Status)
	case <-time.After(time.Second):
		t.Fatal("expected event for order 7")
	}
	assert.Len(t, everything, 2)
	assert.Len(t, forSeven, 0)
}

func TestHubCancelClosesAndUnregisters(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe(nil)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers())
	assert.NoError(t, hub.Publish(context.Background(), OrderEvent{OrderID: 1}))
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub(1)
	_, cancel := hub.Subscribe(nil)
	defer cancel()

	for i := 0; i < 3; i++ {
		require.NoError(t, hub.Publish(context.Background(), OrderEvent{OrderID: uint(i)}))
	}
	assert.Equal(t, uint64(2), hub.Dropped())
}

func TestHubConcurrentPublishAndCancel(t *testing.T) {
	hub := NewHub(8)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		ch, cancel := hub.Subscribe(nil)
		go func() {
			defer wg.Done()
			_ = hub.Publish(context.Background(), OrderEvent{OrderID: 1})
		}()
		go func() {
			defer wg.Done()
			cancel()
			for range ch {
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.Subscribers())
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, OrderEvent) error { return f.err }

func TestMultiJoinsErrors(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe(nil)
	defer cancel()

	boom := errors.New("broker down")
	err := Multi{hub, nil, failingPublisher{boom}, Nop{}}.Publish(context.Background(), OrderEvent{OrderID: 5})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ch, 1, "hub still receives the event")
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "order.ready_for_pickup", RoutingKey(OrderEvent{Status: models.StatusReadyForPickup}))

	o := &models.Order{ID: 4, OrderNumber: "ORD-X", RestaurantID: 2, CustomerID: 9, Status: models.StatusPending}
	ev := NewOrderEvent(OrderCreated, o, time.Unix(0, 0))
	assert.Equal(t, "order.pending", RoutingKey(ev))
	assert.Equal(t, uint(2), ev.RestaurantID)
}
