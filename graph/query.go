package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"starides-api/apperr"
	"starides-api/middleware"
	"starides-api/models"
	"starides-api/services"
	"starides-api/statemachine"
)

// ----- Accounts -----

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	ident, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return nil, nil
	}
	return r.lookupUser(ctx, ident.UserID)
}

func (r *Resolver) User(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	if _, err := middleware.RequireAuth(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	u, err := r.svc.Users.Get(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.user(u), nil
}

func (r *Resolver) Users(ctx context.Context, args struct{ Role *string }) ([]*userResolver, error) {
	if _, err := middleware.RequireRole(ctx, models.RoleAdmin); err != nil {
		return nil, r.fail(ctx, err)
	}
	var role *models.UserRole
	if args.Role != nil {
		v := models.UserRole(*args.Role)
		role = &v
	}
	users, err := r.svc.Users.List(ctx, role)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	out := make([]*userResolver, len(users))
	for i := range users {
		out[i] = r.user(&users[i])
	}
	return out, nil
}

func (r *Resolver) Addresses(ctx context.Context) ([]*addressResolver, error) {
	ident, err := middleware.RequireAuth(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	addrs, err := r.svc.Users.Addresses(ctx, ident.UserID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return addresses(addrs), nil
}

// ----- Catalog -----

type restaurantsArgs struct {
	Status   *string
	OwnerID  *graphql.ID
	Cuisine  *string
	Search   *string
	OpenOnly *bool
}

func (r *Resolver) Restaurants(ctx context.Context, args restaurantsArgs) ([]*restaurantResolver, error) {
	var f services.RestaurantFilter
	if args.Status != nil {
		st := models.RestaurantStatus(*args.Status)
		f.Status = &st
	}
	if args.OwnerID != nil {
		id, err := parseID(*args.OwnerID)
		if err != nil {
			return nil, r.fail(ctx, err)
		}
		f.OwnerID = &id
	}
	f.Cuisine = deref(args.Cuisine)
	f.Search = deref(args.Search)
	f.OpenOnly = deref(args.OpenOnly)

	list, err := r.svc.Restaurants.List(ctx, f)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.restaurantList(list), nil
}

func (r *Resolver) Restaurant(ctx context.Context, args struct{ ID graphql.ID }) (*restaurantResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	rs, err := r.svc.Restaurants.Get(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.restaurant(rs), nil
}

func (r *Resolver) MyRestaurant(ctx context.Context) (*restaurantResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	rs, err := r.svc.Restaurants.ForOwner(ctx, ident.UserID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.restaurant(rs), nil
}

type nearbyArgs struct {
	Latitude  float64
	Longitude float64
	Radius    *float64
}

func (r *Resolver) NearbyRestaurants(ctx context.Context, args nearbyArgs) ([]*nearbyResolver, error) {
	radius := services.DefaultNearbyRadiusKm
	if args.Radius != nil {
		radius = *args.Radius
	}
	list, err := r.svc.Restaurants.Nearby(ctx, args.Latitude, args.Longitude, radius)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	out := make([]*nearbyResolver, len(list))
	for i := range list {
		out[i] = &nearbyResolver{r: r, n: list[i]}
	}
	return out, nil
}

func (r *Resolver) MenuItems(ctx context.Context, args struct{ RestaurantID graphql.ID }) ([]*menuItemResolver, error) {
	id, err := parseID(args.RestaurantID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	items, err := r.svc.Menu.ForRestaurant(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return menuItems(items), nil
}

func (r *Resolver) MenuItem(ctx context.Context, args struct{ ID graphql.ID }) (*menuItemResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	item, err := r.svc.Menu.Get(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &menuItemResolver{m: item}, nil
}

// ----- Orders -----

func orderStatusArg(s *string) *models.OrderStatus {
	if s == nil {
		return nil
	}
	st := models.OrderStatus(*s)
	return &st
}

func (r *Resolver) Orders(ctx context.Context, args struct{ Status *string }) ([]*orderResolver, error) {
	if _, err := middleware.RequireRole(ctx, models.RoleAdmin); err != nil {
		return nil, r.fail(ctx, err)
	}
	orders, err := r.svc.Orders.ListOrders(ctx, orderStatusArg(args.Status))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.orderList(orders), nil
}

func (r *Resolver) Order(ctx context.Context, args struct{ ID graphql.ID }) (*orderResolver, error) {
	ident, err := middleware.RequireAuth(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	order, err := r.svc.Orders.GetOrderFor(ctx, ident, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.order(order), nil
}

func (r *Resolver) MyOrders(ctx context.Context) ([]*orderResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleCustomer)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	orders, err := r.svc.Orders.CustomerOrders(ctx, ident.UserID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.orderList(orders), nil
}

type restaurantOrdersArgs struct {
	RestaurantID graphql.ID
	Status       *string
}

func (r *Resolver) RestaurantOrders(ctx context.Context, args restaurantOrdersArgs) ([]*orderResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor, models.RoleAdmin)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.RestaurantID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	orders, err := r.svc.Orders.RestaurantOrders(ctx, ident, id, orderStatusArg(args.Status))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.orderList(orders), nil
}

func (r *Resolver) AvailableDeliveries(ctx context.Context) ([]*orderResolver, error) {
	if _, err := middleware.RequireRole(ctx, models.RoleRider); err != nil {
		return nil, r.fail(ctx, err)
	}
	orders, err := r.svc.Orders.AvailableDeliveries(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.orderList(orders), nil
}

func (r *Resolver) MyDeliveries(ctx context.Context) ([]*orderResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleRider)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	orders, err := r.svc.Orders.RiderDeliveries(ctx, ident.UserID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.orderList(orders), nil
}

// ----- Reviews -----

func (r *Resolver) Reviews(ctx context.Context, args struct{ RestaurantID graphql.ID }) ([]*reviewResolver, error) {
	id, err := parseID(args.RestaurantID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	reviews, err := r.svc.Reviews.ForRestaurant(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.reviewList(reviews), nil
}

func (r *Resolver) Review(ctx context.Context, args struct{ ID graphql.ID }) (*reviewResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	rv, err := r.svc.Reviews.Get(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.review(rv), nil
}

// ----- Stats -----

func (r *Resolver) AdminStats(ctx context.Context) (*statsResolver, error) {
	if _, err := middleware.RequireRole(ctx, models.RoleAdmin); err != nil {
		return nil, r.fail(ctx, err)
	}
	st, err := r.svc.Stats.AdminStats(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &statsResolver{s: st}, nil
}

func (r *Resolver) RestaurantStats(ctx context.Context, args struct{ RestaurantID graphql.ID }) (*statsResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor, models.RoleAdmin)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.RestaurantID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	st, err := r.svc.Stats.RestaurantStats(ctx, ident, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &statsResolver{s: st}, nil
}

func (r *Resolver) StateMachine() []*transitionResolver {
	all := statemachine.GetAllTransitions()
	out := make([]*transitionResolver, len(all))
	for i, t := range all {
		out[i] = &transitionResolver{t: t}
	}
	return out
}
