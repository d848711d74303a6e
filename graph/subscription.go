package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	qerrors "github.com/graph-gophers/graphql-go/errors"

	"starides-api/apperr"

	"starides-api/events"
	"starides-api/middleware"
	"starides-api/models"
)

// subscribeFail is fail for subscription resolvers. graphql-go only keeps
// extensions on subscription errors that are already a *QueryError.
func (r *Resolver) subscribeFail(ctx context.Context, err error) error {
	e := apperr.From(r.fail(ctx, err))
	return &qerrors.QueryError{
		Message:       e.Message,
		Extensions:    e.Extensions(),
		ResolverError: e,
	}
}

// stream forwards hub events accepted by filter as freshly loaded orders
// until ctx is done.
func (r *Resolver) stream(ctx context.Context, filter func(events.OrderEvent) bool) <-chan *orderResolver {
	in, cancel := r.hub.Subscribe(filter)
	out := make(chan *orderResolver)
	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-in:
				if !ok {
					return
				}
				order, err := r.svc.Orders.GetOrder(ctx, ev.OrderID)
				if err != nil {
					r.log.Warn("subscription order load failed", "action", "subscription", "order_id", ev.OrderID, "error", err)
					continue
				}
				select {
				case out <- r.order(order):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (r *Resolver) OrderStatusChanged(ctx context.Context, args struct{ OrderID graphql.ID }) (<-chan *orderResolver, error) {
	ident, err := middleware.RequireAuth(ctx)
	if err != nil {
		return nil, r.subscribeFail(ctx, err)
	}
	id, err := parseID(args.OrderID)
	if err != nil {
		return nil, r.subscribeFail(ctx, err)
	}
	if _, err := r.svc.Orders.GetOrderFor(ctx, ident, id); err != nil {
		return nil, r.subscribeFail(ctx, err)
	}
	return r.stream(ctx, func(ev events.OrderEvent) bool {
		return ev.Type == events.OrderStatusChanged && ev.OrderID == id
	}), nil
}

func (r *Resolver) NewOrder(ctx context.Context, args struct{ RestaurantID graphql.ID }) (<-chan *orderResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor, models.RoleAdmin)
	if err != nil {
		return nil, r.subscribeFail(ctx, err)
	}
	id, err := parseID(args.RestaurantID)
	if err != nil {
		return nil, r.subscribeFail(ctx, err)
	}
	if err := r.svc.Restaurants.CanManage(ctx, ident, id); err != nil {
		return nil, r.subscribeFail(ctx, err)
	}
	return r.stream(ctx, func(ev events.OrderEvent) bool {
		return ev.Type == events.OrderCreated && ev.RestaurantID == id
	}), nil
}

func (r *Resolver) NewDeliveryRequest(ctx context.Context) (<-chan *orderResolver, error) {
	if _, err := middleware.RequireRole(ctx, models.RoleRider, models.RoleAdmin); err != nil {
		return nil, r.subscribeFail(ctx, err)
	}
	return r.stream(ctx, func(ev events.OrderEvent) bool {
		return ev.Type == events.DeliveryRequested
	}), nil
}
