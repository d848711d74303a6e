package graph

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"starides-api/apperr"
	"starides-api/middleware"
	"starides-api/models"
	"starides-api/services"
	"starides-api/statemachine"
)

// ----- User -----

type userResolver struct {
	r *Resolver
	u *models.User
}

func (r *Resolver) user(u *models.User) *userResolver { return &userResolver{r: r, u: u} }

func (u *userResolver) ID() graphql.ID            { return idOf(u.u.ID) }
func (u *userResolver) Email() string             { return u.u.Email }
func (u *userResolver) FirstName() string         { return u.u.FirstName }
func (u *userResolver) LastName() string          { return u.u.LastName }
func (u *userResolver) Phone() string             { return u.u.Phone }
func (u *userResolver) Role() string              { return string(u.u.Role) }
func (u *userResolver) Avatar() *string           { return optString(u.u.Avatar) }
func (u *userResolver) IsActive() bool            { return u.u.IsActive }
func (u *userResolver) IsVerified() bool          { return u.u.IsVerified }
func (u *userResolver) RestaurantID() *graphql.ID { return optID(u.u.RestaurantID) }
func (u *userResolver) VehicleType() *string      { return optString(u.u.VehicleType) }
func (u *userResolver) VehicleNumber() *string    { return optString(u.u.VehicleNumber) }
func (u *userResolver) IsAvailable() bool         { return u.u.IsAvailable }
func (u *userResolver) CreatedAt() graphql.Time   { return graphql.Time{Time: u.u.CreatedAt} }

// Addresses are private: other callers get an empty list.
func (u *userResolver) Addresses(ctx context.Context) ([]*addressResolver, error) {
	ident, ok := middleware.IdentityFrom(ctx)
	if !ok || (ident.UserID != u.u.ID && ident.Role != models.RoleAdmin) {
		return []*addressResolver{}, nil
	}
	addrs, err := u.r.svc.Users.Addresses(ctx, u.u.ID)
	if err != nil {
		return nil, u.r.fail(ctx, err)
	}
	return addresses(addrs), nil
}

type addressResolver struct {
	a models.Address
}

func addresses(in []models.Address) []*addressResolver {
	out := make([]*addressResolver, len(in))
	for i := range in {
		out[i] = &addressResolver{a: in[i]}
	}
	return out
}

func (a *addressResolver) ID() graphql.ID     { return idOf(a.a.ID) }
func (a *addressResolver) Label() string      { return a.a.Label }
func (a *addressResolver) Street() string     { return a.a.Street }
func (a *addressResolver) City() string       { return a.a.City }
func (a *addressResolver) State() string      { return a.a.State }
func (a *addressResolver) ZipCode() string    { return a.a.ZipCode }
func (a *addressResolver) Latitude() float64  { return a.a.Latitude }
func (a *addressResolver) Longitude() float64 { return a.a.Longitude }
func (a *addressResolver) IsDefault() bool    { return a.a.IsDefault }

type authPayloadResolver struct {
	r *Resolver
	p *services.AuthPayload
}

func (p *authPayloadResolver) Token() string       { return p.p.Token }
func (p *authPayloadResolver) User() *userResolver { return p.r.user(p.p.User) }

// ----- Catalog -----

type restaurantResolver struct {
	r  *Resolver
	rs *models.Restaurant
}

func (r *Resolver) restaurant(rs *models.Restaurant) *restaurantResolver {
	return &restaurantResolver{r: r, rs: rs}
}

func (r *Resolver) restaurantList(in []models.Restaurant) []*restaurantResolver {
	out := make([]*restaurantResolver, len(in))
	for i := range in {
		out[i] = r.restaurant(&in[i])
	}
	return out
}

func (x *restaurantResolver) ID() graphql.ID               { return idOf(x.rs.ID) }
func (x *restaurantResolver) OwnerID() graphql.ID          { return idOf(x.rs.OwnerID) }
func (x *restaurantResolver) Name() string                 { return x.rs.Name }
func (x *restaurantResolver) Description() string          { return x.rs.Description }
func (x *restaurantResolver) Cuisine() []string            { return strs(x.rs.Cuisine) }
func (x *restaurantResolver) Street() string               { return x.rs.Street }
func (x *restaurantResolver) City() string                 { return x.rs.City }
func (x *restaurantResolver) State() string                { return x.rs.State }
func (x *restaurantResolver) ZipCode() string              { return x.rs.ZipCode }
func (x *restaurantResolver) Latitude() float64            { return x.rs.Latitude }
func (x *restaurantResolver) Longitude() float64           { return x.rs.Longitude }
func (x *restaurantResolver) Phone() string                { return x.rs.Phone }
func (x *restaurantResolver) Email() string                { return x.rs.Email }
func (x *restaurantResolver) Logo() *string                { return optString(x.rs.Logo) }
func (x *restaurantResolver) CoverImage() *string          { return optString(x.rs.CoverImage) }
func (x *restaurantResolver) Status() string               { return string(x.rs.Status) }
func (x *restaurantResolver) Rating() float64              { return x.rs.Rating }
func (x *restaurantResolver) TotalReviews() int32          { return int32(x.rs.TotalReviews) }
func (x *restaurantResolver) IsOpen() bool                 { return x.rs.IsOpen }
func (x *restaurantResolver) DeliveryFee() float64         { return x.rs.DeliveryFee }
func (x *restaurantResolver) MinimumOrder() float64        { return x.rs.MinimumOrder }
func (x *restaurantResolver) EstimatedDeliveryTime() int32 { return int32(x.rs.EstimatedDeliveryTime) }
func (x *restaurantResolver) CreatedAt() graphql.Time      { return graphql.Time{Time: x.rs.CreatedAt} }

func (x *restaurantResolver) OpeningHours() []*openingHourResolver {
	out := make([]*openingHourResolver, len(x.rs.OpeningHours))
	for i, h := range x.rs.OpeningHours {
		out[i] = &openingHourResolver{h: h}
	}
	return out
}

func (x *restaurantResolver) Owner(ctx context.Context) (*userResolver, error) {
	u, err := x.r.svc.Users.Get(ctx, x.rs.OwnerID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, x.r.fail(ctx, err)
	}
	return x.r.user(u), nil
}

func (x *restaurantResolver) MenuItems(ctx context.Context) ([]*menuItemResolver, error) {
	items, err := x.r.svc.Menu.ForRestaurant(ctx, x.rs.ID)
	if err != nil {
		return nil, x.r.fail(ctx, err)
	}
	return menuItems(items), nil
}

func (x *restaurantResolver) Reviews(ctx context.Context) ([]*reviewResolver, error) {
	reviews, err := x.r.svc.Reviews.ForRestaurant(ctx, x.rs.ID)
	if err != nil {
		return nil, x.r.fail(ctx, err)
	}
	return x.r.reviewList(reviews), nil
}

type openingHourResolver struct {
	h models.OpeningHour
}

func (o *openingHourResolver) Day() string   { return o.h.Day }
func (o *openingHourResolver) Open() string  { return o.h.Open }
func (o *openingHourResolver) Close() string { return o.h.Close }

type nearbyResolver struct {
	r *Resolver
	n services.NearbyRestaurant
}

func (n *nearbyResolver) Restaurant() *restaurantResolver { return n.r.restaurant(&n.n.Restaurant) }
func (n *nearbyResolver) DistanceKm() float64             { return n.n.DistanceKm }

type menuItemResolver struct {
	m *models.MenuItem
}

func menuItems(in []models.MenuItem) []*menuItemResolver {
	out := make([]*menuItemResolver, len(in))
	for i := range in {
		out[i] = &menuItemResolver{m: &in[i]}
	}
	return out
}

func (m *menuItemResolver) ID() graphql.ID           { return idOf(m.m.ID) }
func (m *menuItemResolver) RestaurantID() graphql.ID { return idOf(m.m.RestaurantID) }
func (m *menuItemResolver) Name() string             { return m.m.Name }
func (m *menuItemResolver) Description() string      { return m.m.Description }
func (m *menuItemResolver) Category() string         { return string(m.m.Category) }
func (m *menuItemResolver) Price() float64           { return m.m.Price }
func (m *menuItemResolver) Image() *string           { return optString(m.m.Image) }
func (m *menuItemResolver) IsAvailable() bool        { return m.m.IsAvailable }
func (m *menuItemResolver) IsVegetarian() bool       { return m.m.IsVegetarian }
func (m *menuItemResolver) IsVegan() bool            { return m.m.IsVegan }
func (m *menuItemResolver) IsGlutenFree() bool       { return m.m.IsGlutenFree }
func (m *menuItemResolver) SpicyLevel() int32        { return int32(m.m.SpicyLevel) }
func (m *menuItemResolver) PreparationTime() int32   { return int32(m.m.PreparationTime) }
func (m *menuItemResolver) Ingredients() []string    { return strs(m.m.Ingredients) }
func (m *menuItemResolver) Allergens() []string      { return strs(m.m.Allergens) }

func (m *menuItemResolver) Calories() *int32 {
	if m.m.Calories == nil {
		return nil
	}
	v := int32(*m.m.Calories)
	return &v
}

// ----- Orders -----

type orderResolver struct {
	r *Resolver
	o *models.Order
}

func (r *Resolver) order(o *models.Order) *orderResolver { return &orderResolver{r: r, o: o} }

func (r *Resolver) orderList(in []models.Order) []*orderResolver {
	out := make([]*orderResolver, len(in))
	for i := range in {
		out[i] = r.order(&in[i])
	}
	return out
}

func (o *orderResolver) ID() graphql.ID                       { return idOf(o.o.ID) }
func (o *orderResolver) OrderNumber() string                  { return o.o.OrderNumber }
func (o *orderResolver) Subtotal() float64                    { return o.o.Subtotal }
func (o *orderResolver) DeliveryFee() float64                 { return o.o.DeliveryFee }
func (o *orderResolver) Tax() float64                         { return o.o.Tax }
func (o *orderResolver) Total() float64                       { return o.o.Total }
func (o *orderResolver) Status() string                       { return string(o.o.Status) }
func (o *orderResolver) PaymentMethod() string                { return string(o.o.PaymentMethod) }
func (o *orderResolver) PaymentStatus() string                { return string(o.o.PaymentStatus) }
func (o *orderResolver) SpecialInstructions() *string         { return optString(o.o.SpecialInstructions) }
func (o *orderResolver) CancelReason() *string                { return optString(o.o.CancelReason) }
func (o *orderResolver) EstimatedDeliveryTime() *graphql.Time { return optTime(o.o.EstimatedDeliveryTime) }
func (o *orderResolver) ActualDeliveryTime() *graphql.Time    { return optTime(o.o.ActualDeliveryTime) }
func (o *orderResolver) CreatedAt() graphql.Time              { return graphql.Time{Time: o.o.CreatedAt} }
func (o *orderResolver) UpdatedAt() graphql.Time              { return graphql.Time{Time: o.o.UpdatedAt} }

func (o *orderResolver) DeliveryAddress() *deliveryAddressResolver { return &deliveryAddressResolver{a: o.o.DeliveryAddress} }

func (o *orderResolver) Items() []*orderItemResolver {
	out := make([]*orderItemResolver, len(o.o.Items))
	for i := range o.o.Items {
		out[i] = &orderItemResolver{r: o.r, it: &o.o.Items[i]}
	}
	return out
}

func (o *orderResolver) History() []*statusChangeResolver {
	out := make([]*statusChangeResolver, len(o.o.StatusHistory))
	for i := range o.o.StatusHistory {
		out[i] = &statusChangeResolver{h: &o.o.StatusHistory[i]}
	}
	return out
}

func (o *orderResolver) Customer(ctx context.Context) (*userResolver, error) {
	return o.r.lookupUser(ctx, o.o.CustomerID)
}

func (o *orderResolver) Rider(ctx context.Context) (*userResolver, error) {
	if o.o.RiderID == nil {
		return nil, nil
	}
	return o.r.lookupUser(ctx, *o.o.RiderID)
}

func (o *orderResolver) Restaurant(ctx context.Context) (*restaurantResolver, error) {
	rs, err := o.r.svc.Restaurants.Get(ctx, o.o.RestaurantID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, o.r.fail(ctx, err)
	}
	return o.r.restaurant(rs), nil
}

func (r *Resolver) lookupUser(ctx context.Context, id uint) (*userResolver, error) {
	u, err := r.svc.Users.Get(ctx, id)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return r.user(u), nil
}

type deliveryAddressResolver struct {
	a models.DeliveryAddress
}

func (d *deliveryAddressResolver) Street() string     { return d.a.Street }
func (d *deliveryAddressResolver) City() string       { return d.a.City }
func (d *deliveryAddressResolver) State() string      { return d.a.State }
func (d *deliveryAddressResolver) ZipCode() string    { return d.a.ZipCode }
func (d *deliveryAddressResolver) Latitude() float64  { return d.a.Latitude }
func (d *deliveryAddressResolver) Longitude() float64 { return d.a.Longitude }

type orderItemResolver struct {
	r  *Resolver
	it *models.OrderItem
}

func (i *orderItemResolver) ID() graphql.ID               { return idOf(i.it.ID) }
func (i *orderItemResolver) MenuItemID() graphql.ID       { return idOf(i.it.MenuItemID) }
func (i *orderItemResolver) Name() string                 { return i.it.Name }
func (i *orderItemResolver) Price() float64               { return i.it.Price }
func (i *orderItemResolver) Quantity() int32              { return int32(i.it.Quantity) }
func (i *orderItemResolver) SpecialInstructions() *string { return optString(i.it.SpecialInstructions) }

func (i *orderItemResolver) MenuItem(ctx context.Context) (*menuItemResolver, error) {
	m, err := i.r.svc.Menu.Get(ctx, i.it.MenuItemID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, i.r.fail(ctx, err)
	}
	return &menuItemResolver{m: m}, nil
}

type statusChangeResolver struct {
	h *models.OrderStatusHistory
}

func (s *statusChangeResolver) ID() graphql.ID          { return idOf(s.h.ID) }
func (s *statusChangeResolver) From() *string           { return optString(string(s.h.FromStatus)) }
func (s *statusChangeResolver) To() string              { return string(s.h.ToStatus) }
func (s *statusChangeResolver) ChangedBy() graphql.ID   { return idOf(s.h.ChangedBy) }
func (s *statusChangeResolver) Note() string            { return s.h.Note }
func (s *statusChangeResolver) CreatedAt() graphql.Time { return graphql.Time{Time: s.h.CreatedAt} }

// ----- Reviews -----

type reviewResolver struct {
	r  *Resolver
	rv *models.Review
}

func (r *Resolver) review(rv *models.Review) *reviewResolver { return &reviewResolver{r: r, rv: rv} }

func (r *Resolver) reviewList(in []models.Review) []*reviewResolver {
	out := make([]*reviewResolver, len(in))
	for i := range in {
		out[i] = r.review(&in[i])
	}
	return out
}

func (v *reviewResolver) ID() graphql.ID             { return idOf(v.rv.ID) }
func (v *reviewResolver) OrderID() graphql.ID        { return idOf(v.rv.OrderID) }
func (v *reviewResolver) RestaurantID() graphql.ID   { return idOf(v.rv.RestaurantID) }
func (v *reviewResolver) RiderID() *graphql.ID       { return optID(v.rv.RiderID) }
func (v *reviewResolver) RestaurantRating() int32    { return int32(v.rv.RestaurantRating) }
func (v *reviewResolver) FoodQuality() int32         { return int32(v.rv.FoodQuality) }
func (v *reviewResolver) DeliverySpeed() int32       { return int32(v.rv.DeliverySpeed) }
func (v *reviewResolver) Comment() *string           { return optString(v.rv.Comment) }
func (v *reviewResolver) Response() *string          { return v.rv.ResponseText }
func (v *reviewResolver) RespondedAt() *graphql.Time { return optTime(v.rv.RespondedAt) }
func (v *reviewResolver) CreatedAt() graphql.Time    { return graphql.Time{Time: v.rv.CreatedAt} }

func (v *reviewResolver) RiderRating() *int32 {
	if v.rv.RiderRating == nil {
		return nil
	}
	n := int32(*v.rv.RiderRating)
	return &n
}

func (v *reviewResolver) Customer(ctx context.Context) (*userResolver, error) {
	return v.r.lookupUser(ctx, v.rv.CustomerID)
}

// ----- Misc -----

type statsResolver struct {
	s *services.Stats
}

func (s *statsResolver) TotalOrders() int32         { return int32(s.s.TotalOrders) }
func (s *statsResolver) TotalRevenue() float64      { return s.s.TotalRevenue }
func (s *statsResolver) AverageOrderValue() float64 { return s.s.AverageOrderValue }
func (s *statsResolver) TotalCustomers() int32      { return int32(s.s.TotalCustomers) }

type chatMessageResolver struct {
	m services.ChatMessage
}

func (c *chatMessageResolver) ID() graphql.ID    { return graphql.ID(c.m.ID) }
func (c *chatMessageResolver) Sender() string    { return c.m.Sender }
func (c *chatMessageResolver) Text() string      { return c.m.Text }
func (c *chatMessageResolver) Timestamp() string { return c.m.Timestamp.Format(time.RFC3339) }
func (c *chatMessageResolver) IsBot() bool       { return c.m.IsBot }

type transitionResolver struct {
	t statemachine.Transition
}

func (t *transitionResolver) From() string { return string(t.t.From) }
func (t *transitionResolver) To() string   { return string(t.t.To) }

func (t *transitionResolver) Roles() []string {
	out := make([]string, len(t.t.Roles))
	for i, role := range t.t.Roles {
		out[i] = string(role)
	}
	return out
}
