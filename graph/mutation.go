package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"starides-api/middleware"
	"starides-api/models"
	"starides-api/services"
)

// ----- Accounts -----

type registerInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
}

func (r *Resolver) Register(ctx context.Context, args struct{ Input registerInput }) (*authPayloadResolver, error) {
	in := args.Input
	payload, err := r.svc.Users.Register(ctx, services.RegisterInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      models.UserRole(in.Role),
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &authPayloadResolver{r: r, p: payload}, nil
}

type loginInput struct {
	Email    string
	Password string
}

func (r *Resolver) Login(ctx context.Context, args struct{ Input loginInput }) (*authPayloadResolver, error) {
	payload, err := r.svc.Users.Login(ctx, services.LoginInput{Email: args.Input.Email, Password: args.Input.Password})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &authPayloadResolver{r: r, p: payload}, nil
}

type profileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Avatar    *string
}

func (r *Resolver) UpdateProfile(ctx context.Context, args struct{ Input profileInput }) (*userResolver, error) {
	ident, err := middleware.RequireAuth(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	in := args.Input
	u, err := r.svc.Users.UpdateProfile(ctx, ident.UserID, services.ProfileInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Avatar:    in.Avatar,
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.user(u), nil
}

type addressInput struct {
	Label     *string
	Street    string
	City      string
	State     string
	ZipCode   string
	Latitude  *float64
	Longitude *float64
	IsDefault *bool
}

func (r *Resolver) AddAddress(ctx context.Context, args struct{ Input addressInput }) (*addressResolver, error) {
	ident, err := middleware.RequireAuth(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	in := args.Input
	addr, err := r.svc.Users.AddAddress(ctx, ident.UserID, services.AddressInput{
		Label:     deref(in.Label),
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		Latitude:  deref(in.Latitude),
		Longitude: deref(in.Longitude),
		IsDefault: deref(in.IsDefault),
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &addressResolver{a: *addr}, nil
}

func (r *Resolver) UpdateRiderAvailability(ctx context.Context, args struct{ IsAvailable bool }) (*userResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleRider)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	u, err := r.svc.Users.SetRiderAvailability(ctx, ident, args.IsAvailable)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.user(u), nil
}

func (r *Resolver) RequestPasswordReset(ctx context.Context, args struct{ Email string }) (bool, error) {
	if err := r.svc.Resets.RequestReset(ctx, args.Email); err != nil {
		return false, r.fail(ctx, err)
	}
	return true, nil
}

func (r *Resolver) ResetPassword(ctx context.Context, args struct {
	Token       string
	NewPassword string
}) (bool, error) {
	if err := r.svc.Resets.ResetPassword(ctx, args.Token, args.NewPassword); err != nil {
		return false, r.fail(ctx, err)
	}
	return true, nil
}

// ----- Catalog -----

type openingHourInput struct {
	Day   string
	Open  string
	Close string
}

type restaurantInput struct {
	Name                  string
	Description           string
	Cuisine               *[]string
	Street                string
	City                  string
	State                 string
	ZipCode               string
	Latitude              float64
	Longitude             float64
	Phone                 string
	Email                 string
	DeliveryFee           float64
	MinimumOrder          float64
	EstimatedDeliveryTime int32
	OpeningHours          *[]openingHourInput
}

func (in restaurantInput) toService() services.RestaurantInput {
	out := services.RestaurantInput{
		Name:                  in.Name,
		Description:           in.Description,
		Cuisine:               deref(in.Cuisine),
		Street:                in.Street,
		City:                  in.City,
		State:                 in.State,
		ZipCode:               in.ZipCode,
		Latitude:              in.Latitude,
		Longitude:             in.Longitude,
		Phone:                 in.Phone,
		Email:                 in.Email,
		DeliveryFee:           in.DeliveryFee,
		MinimumOrder:          in.MinimumOrder,
		EstimatedDeliveryTime: int(in.EstimatedDeliveryTime),
	}
	if in.OpeningHours != nil {
		out.OpeningHours = make([]models.OpeningHour, len(*in.OpeningHours))
		for i, h := range *in.OpeningHours {
			out.OpeningHours[i] = models.OpeningHour{Day: h.Day, Open: h.Open, Close: h.Close}
		}
	}
	return out
}

func (r *Resolver) CreateRestaurant(ctx context.Context, args struct{ Input restaurantInput }) (*restaurantResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	rs, err := r.svc.Restaurants.Create(ctx, ident, args.Input.toService())
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.restaurant(rs), nil
}

func (r *Resolver) UpdateRestaurant(ctx context.Context, args struct {
	ID    graphql.ID
	Input restaurantInput
}) (*restaurantResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor, models.RoleAdmin)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	rs, err := r.svc.Restaurants.Update(ctx, ident, id, args.Input.toService())
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.restaurant(rs), nil
}

func (r *Resolver) UpdateRestaurantStatus(ctx context.Context, args struct {
	ID     graphql.ID
	Status string
}) (*restaurantResolver, error) {
	if _, err := middleware.RequireRole(ctx, models.RoleAdmin); err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	rs, err := r.svc.Restaurants.UpdateStatus(ctx, id, models.RestaurantStatus(args.Status))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.restaurant(rs), nil
}

func (r *Resolver) ToggleRestaurantOpen(ctx context.Context, args struct{ ID graphql.ID }) (*restaurantResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	rs, err := r.svc.Restaurants.ToggleOpen(ctx, ident, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.restaurant(rs), nil
}

type menuItemInput struct {
	Name            string
	Description     *string
	Category        string
	Price           float64
	IsVegetarian    *bool
	IsVegan         *bool
	IsGlutenFree    *bool
	SpicyLevel      *int32
	PreparationTime *int32
	Calories        *int32
	Ingredients     *[]string
	Allergens       *[]string
}

func (in menuItemInput) toService() services.MenuItemInput {
	out := services.MenuItemInput{
		Name:            in.Name,
		Description:     deref(in.Description),
		Category:        models.MenuItemCategory(in.Category),
		Price:           in.Price,
		IsVegetarian:    deref(in.IsVegetarian),
		IsVegan:         deref(in.IsVegan),
		IsGlutenFree:    deref(in.IsGlutenFree),
		SpicyLevel:      int(deref(in.SpicyLevel)),
		PreparationTime: int(deref(in.PreparationTime)),
		Ingredients:     deref(in.Ingredients),
		Allergens:       deref(in.Allergens),
	}
	if in.Calories != nil {
		c := int(*in.Calories)
		out.Calories = &c
	}
	return out
}

func (r *Resolver) CreateMenuItem(ctx context.Context, args struct {
	RestaurantID graphql.ID
	Input        menuItemInput
}) (*menuItemResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	rid, err := parseID(args.RestaurantID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	item, err := r.svc.Menu.Create(ctx, ident, rid, args.Input.toService())
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &menuItemResolver{m: item}, nil
}

func (r *Resolver) UpdateMenuItem(ctx context.Context, args struct {
	ID    graphql.ID
	Input menuItemInput
}) (*menuItemResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	item, err := r.svc.Menu.Update(ctx, ident, id, args.Input.toService())
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &menuItemResolver{m: item}, nil
}

func (r *Resolver) DeleteMenuItem(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor)
	if err != nil {
		return false, r.fail(ctx, err)
	}
	id, err := parseID(args.ID)
	if err != nil {
		return false, r.fail(ctx, err)
	}
	if err := r.svc.Menu.Delete(ctx, ident, id); err != nil {
		return false, r.fail(ctx, err)
	}
	return true, nil
}

func (r *Resolver) ToggleMenuItemAvailability(ctx context.Context, args struct{ ID graphql.ID }) (*menuItemResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	item, err := r.svc.Menu.ToggleAvailability(ctx, ident, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &menuItemResolver{m: item}, nil
}

// ----- Orders -----

type orderLineInput struct {
	MenuItemID          graphql.ID
	Quantity            int32
	SpecialInstructions *string
}

type createOrderInput struct {
	RestaurantID        graphql.ID
	Items               []orderLineInput
	PaymentMethod       string
	AddressID           graphql.ID
	SpecialInstructions *string
}

func (in createOrderInput) toService() (services.CreateOrderInput, error) {
	rid, err := parseID(in.RestaurantID)
	if err != nil {
		return services.CreateOrderInput{}, err
	}
	aid, err := parseID(in.AddressID)
	if err != nil {
		return services.CreateOrderInput{}, err
	}
	out := services.CreateOrderInput{
		RestaurantID:        rid,
		Items:               make([]services.OrderLineInput, len(in.Items)),
		PaymentMethod:       models.PaymentMethod(in.PaymentMethod),
		AddressID:           aid,
		SpecialInstructions: deref(in.SpecialInstructions),
	}
	for i, line := range in.Items {
		mid, err := parseID(line.MenuItemID)
		if err != nil {
			return services.CreateOrderInput{}, err
		}
		out.Items[i] = services.OrderLineInput{
			MenuItemID:          mid,
			Quantity:            int(line.Quantity),
			SpecialInstructions: deref(line.SpecialInstructions),
		}
	}
	return out, nil
}

func (r *Resolver) CreateOrder(ctx context.Context, args struct{ Input createOrderInput }) (*orderResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleCustomer)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	in, err := args.Input.toService()
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	order, err := r.svc.Orders.CreateOrder(ctx, ident.UserID, in)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.order(order), nil
}

func (r *Resolver) UpdateOrderStatus(ctx context.Context, args struct {
	ID     graphql.ID
	Status string
	Note   *string
}) (*orderResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor, models.RoleRider, models.RoleAdmin)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	order, err := r.svc.Orders.UpdateStatus(ctx, ident, id, models.OrderStatus(args.Status), deref(args.Note))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.order(order), nil
}

func (r *Resolver) CancelOrder(ctx context.Context, args struct {
	ID     graphql.ID
	Reason *string
}) (*orderResolver, error) {
	ident, err := middleware.RequireAuth(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	order, err := r.svc.Orders.Cancel(ctx, ident, id, deref(args.Reason))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.order(order), nil
}

func (r *Resolver) AssignRider(ctx context.Context, args struct {
	OrderID graphql.ID
	RiderID graphql.ID
}) (*orderResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	orderID, err := parseID(args.OrderID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	riderID, err := parseID(args.RiderID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	order, err := r.svc.Orders.AssignRider(ctx, ident, orderID, riderID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.order(order), nil
}

func (r *Resolver) AcceptDelivery(ctx context.Context, args struct{ OrderID graphql.ID }) (*orderResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleRider)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.OrderID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	order, err := r.svc.Orders.AcceptDelivery(ctx, ident, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.order(order), nil
}

// ----- Reviews -----

type createReviewInput struct {
	OrderID          graphql.ID
	RestaurantRating int32
	RiderRating      *int32
	FoodQuality      int32
	DeliverySpeed    int32
	Comment          *string
}

func (r *Resolver) CreateReview(ctx context.Context, args struct{ Input createReviewInput }) (*reviewResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleCustomer)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	in := args.Input
	orderID, err := parseID(in.OrderID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	svcIn := services.CreateReviewInput{
		OrderID:          orderID,
		RestaurantRating: int(in.RestaurantRating),
		FoodQuality:      int(in.FoodQuality),
		DeliverySpeed:    int(in.DeliverySpeed),
		Comment:          deref(in.Comment),
	}
	if in.RiderRating != nil {
		v := int(*in.RiderRating)
		svcIn.RiderRating = &v
	}
	rv, err := r.svc.Reviews.CreateReview(ctx, ident.UserID, svcIn)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.review(rv), nil
}

func (r *Resolver) RespondToReview(ctx context.Context, args struct {
	ReviewID graphql.ID
	Response string
}) (*reviewResolver, error) {
	ident, err := middleware.RequireRole(ctx, models.RoleVendor)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := parseID(args.ReviewID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	rv, err := r.svc.Reviews.RespondToReview(ctx, ident, id, args.Response)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.review(rv), nil
}

// ----- Chat -----

func (r *Resolver) SendMessage(ctx context.Context, args struct{ Text string }) (*chatMessageResolver, error) {
	if _, err := middleware.RequireAuth(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	return &chatMessageResolver{m: r.svc.Chat.Reply(args.Text)}, nil
}
