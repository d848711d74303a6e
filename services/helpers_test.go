package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"starides-api/cache"
	"starides-api/config"
	"starides-api/events"
	"starides-api/logger"
	"starides-api/middleware"
	"starides-api/models"
	"starides-api/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "starides_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

type sentMail struct {
	Kind, To, Token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) record(s sentMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, s)
	return nil
}

func (m *fakeMailer) SendPasswordReset(to, token string) error {
	return m.record(sentMail{Kind: "reset", To: to, Token: token})
}

func (m *fakeMailer) SendPasswordResetConfirmation(to string) error {
	return m.record(sentMail{Kind: "reset_confirmation", To: to})
}

func (m *fakeMailer) SendOrderConfirmation(to, orderNumber string, _ float64) error {
	return m.record(sentMail{Kind: "order", To: to, Token: orderNumber})
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// fixture is a small marketplace: one approved restaurant with a menu and
// one user per role.
type fixture struct {
	db         *gorm.DB
	customer   models.User
	customer2  models.User
	vendor     models.User
	vendor2    models.User
	rider      models.User
	rider2     models.User
	admin      models.User
	restaurant models.Restaurant
	other      models.Restaurant
	burger     models.MenuItem
	fries      models.MenuItem
	soldOut    models.MenuItem
	foreign    models.MenuItem
	address    models.Address

	mailer    *fakeMailer
	publisher *recordingPublisher
	orders    *OrderService
	reviews   *ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{db: db, mailer: &fakeMailer{}, publisher: &recordingPublisher{}}

	mkUser := func(email string, role models.UserRole) models.User {
		u := models.User{Email: email, PasswordHash: "x", FirstName: "Test", LastName: string(role), Role: role, IsActive: true}
		require.NoError(t, db.Create(&u).Error)
		return u
	}
	f.customer = mkUser("customer@starides.test", models.RoleCustomer)
	f.customer2 = mkUser("customer2@starides.test", models.RoleCustomer)
	f.vendor = mkUser("vendor@starides.test", models.RoleVendor)
	f.vendor2 = mkUser("vendor2@starides.test", models.RoleVendor)
	f.rider = mkUser("rider@starides.test", models.RoleRider)
	f.rider2 = mkUser("rider2@starides.test", models.RoleRider)
	f.admin = mkUser("admin@starides.test", models.RoleAdmin)

	f.restaurant = models.Restaurant{
		OwnerID: f.vendor.ID, Name: "Burger Barn", Status: models.RestaurantApproved, IsOpen: true,
		DeliveryFee: 5, MinimumOrder: 15, EstimatedDeliveryTime: 30,
		Latitude: 40.7128, Longitude: -74.0060,
	}
	require.NoError(t, db.Create(&f.restaurant).Error)
	f.other = models.Restaurant{
		OwnerID: f.vendor2.ID, Name: "Taco Town", Status: models.RestaurantApproved, IsOpen: true,
		DeliveryFee: 3, MinimumOrder: 0, EstimatedDeliveryTime: 20,
		Latitude: 40.7306, Longitude: -73.9352,
	}
	require.NoError(t, db.Create(&f.other).Error)

	mkItem := func(r models.Restaurant, name string, price float64, available bool) models.MenuItem {
		m := models.MenuItem{RestaurantID: r.ID, Name: name, Category: models.CategoryMainCourse, Price: price, IsAvailable: true}
		require.NoError(t, db.Create(&m).Error)
		if !available {
			require.NoError(t, db.Model(&m).Update("is_available", false).Error)
			m.IsAvailable = false
		}
		return m
	}
	f.burger = mkItem(f.restaurant, "Classic Burger", 6, true)
	f.fries = mkItem(f.restaurant, "Fries", 3.5, true)
	f.soldOut = mkItem(f.restaurant, "Truffle Burger", 19, false)
	f.foreign = mkItem(f.other, "Taco", 4, true)

	f.address = models.Address{UserID: f.customer.ID, Street: "1 Main St", City: "New York", State: "NY", ZipCode: "10001", IsDefault: true}
	require.NoError(t, db.Create(&f.address).Error)

	log := logger.Discard()
	f.orders = NewOrderService(db, f.publisher, f.mailer, log)
	f.reviews = NewReviewService(db, cache.NewRestaurantCache(nil, 0, log), log)
	return f
}

func ident(u models.User) *models.Identity {
	return &models.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// placeOrder creates a valid 3 x burger order for the fixture customer.
func (f *fixture) placeOrder(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), f.customer.ID, CreateOrderInput{
		RestaurantID:  f.restaurant.ID,
		Items:         []OrderLineInput{{MenuItemID: f.burger.ID, Quantity: 3}},
		PaymentMethod: models.PaymentCard,
		AddressID:     f.address.ID,
	})
	require.NoError(t, err)
	return order
}

// advance walks an order through the given statuses as admin. Going out for
// delivery assigns the fixture rider.
func (f *fixture) advance(t *testing.T, orderID uint, statuses ...models.OrderStatus) *models.Order {
	t.Helper()
	var order *models.Order
	var err error
	for _, st := range statuses {
		if st == models.StatusOutForDelivery {
			order, err = f.orders.AssignRider(context.Background(), ident(f.admin), orderID, f.rider.ID)
		} else {
			order, err = f.orders.UpdateStatus(context.Background(), ident(f.admin), orderID, st, "")
		}
		require.NoError(t, err, "advance to %s", st)
	}
	return order
}

func newTestUserService(t *testing.T, db *gorm.DB) *UserService {
	t.Helper()
	return NewUserService(db, middleware.NewAuthenticator("test-secret", time.Hour), logger.Discard())
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := utils.HashPassword(pw)
	require.NoError(t, err)
	return h
}
