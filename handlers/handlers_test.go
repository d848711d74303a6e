package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"starides-api/cache"
	"starides-api/config"
	"starides-api/events"
	"starides-api/logger"
	"starides-api/middleware"
	"starides-api/models"
	"starides-api/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router     *gin.Engine
	db         *gorm.DB
	auth       *middleware.Authenticator
	customer   models.User
	vendor     models.User
	restaurant models.Restaurant
	burger     models.MenuItem
	address    models.Address
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "handlers_test.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	s := &testServer{db: db, auth: middleware.NewAuthenticator("test-secret", time.Hour)}
	s.customer = models.User{Email: "customer@starides.test", PasswordHash: "x", FirstName: "Cara", LastName: "Customer", Role: models.RoleCustomer, IsActive: true}
	require.NoError(t, db.Create(&s.customer).Error)
	s.vendor = models.User{Email: "vendor@starides.test", PasswordHash: "x", FirstName: "Vic", LastName: "Vendor", Role: models.RoleVendor, IsActive: true}
	require.NoError(t, db.Create(&s.vendor).Error)
	s.restaurant = models.Restaurant{
		OwnerID: s.vendor.ID, Name: "Burger Barn", Status: models.RestaurantApproved, IsOpen: true,
		DeliveryFee: 5, MinimumOrder: 15, EstimatedDeliveryTime: 30,
	}
	require.NoError(t, db.Create(&s.restaurant).Error)
	s.burger = models.MenuItem{RestaurantID: s.restaurant.ID, Name: "Classic Burger", Category: models.CategoryMainCourse, Price: 6, IsAvailable: true}
	require.NoError(t, db.Create(&s.burger).Error)
	s.address = models.Address{UserID: s.customer.ID, Street: "1 Main St", City: "New York", State: "NY", ZipCode: "10001", IsDefault: true}
	require.NoError(t, db.Create(&s.address).Error)

	log := logger.Discard()
	rc := cache.NewRestaurantCache(nil, 0, log)
	h := New(Deps{
		DB:          db,
		Users:       services.NewUserService(db, s.auth, log),
		Restaurants: services.NewRestaurantService(db, rc, log),
		Menu:        services.NewMenuService(db, rc, log),
		Orders:      services.NewOrderService(db, events.Nop{}, nil, log),
		Reviews:     services.NewReviewService(db, rc, log),
		Stats:       services.NewStatsService(db),
		Log:         log,
	})

	r := gin.New()
	r.Use(middleware.RequestID(), s.auth.Authenticate())
	r.GET("/health", h.Health)
	r.GET("/health/ready", h.Ready)
	r.GET("/api/state-machine", h.GetStateMachine)
	r.GET("/api/restaurants/:id/menu", h.GetMenu)
	customer := r.Group("/api/customer", middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	customer.POST("/orders", h.PlaceOrder)
	customer.GET("/orders", h.GetMyOrders)
	vendor := r.Group("/api/vendor", middleware.AuthRequired(), middleware.RoleRequired(models.RoleVendor))
	vendor.PUT("/orders/:id/status", h.UpdateOrderStatus)
	vendor.POST("/restaurants/:id/logo", h.UploadRestaurantLogo)
	s.router = r
	return s
}

func (s *testServer) token(t *testing.T, u models.User) string {
	t.Helper()
	tok, err := s.auth.GenerateToken(&u)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path string, as *models.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(t, *as))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) orderBody(quantity int) services.CreateOrderInput {
	return services.CreateOrderInput{
		RestaurantID:  s.restaurant.ID,
		Items:         []services.OrderLineInput{{MenuItemID: s.burger.ID, Quantity: quantity}},
		PaymentMethod: models.PaymentCard,
		AddressID:     s.address.ID,
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "up", body["database"])
	assert.Equal(t, "disabled", body["redis"])

	w = s.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = s.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "degraded", decode[map[string]interface{}](t, w)["status"])
}

func TestPlaceOrder(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/customer/orders", &s.customer, s.orderBody(3))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decode[envelope](t, w)
	assert.True(t, env.Success)

	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, models.StatusPending, order.Status)
	assert.InDelta(t, 24.8, order.Total, 1e-9)

	w = s.do(t, http.MethodGet, "/api/customer/orders", &s.customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Count int            `json:"count"`
		Items []models.Order `json:"items"`
	}
	require.NoError(t, json.Unmarshal(decode[envelope](t, w).Data, &listed))
	assert.Equal(t, 1, listed.Count)
	assert.Equal(t, order.ID, listed.Items[0].ID)
}

func TestPlaceOrderErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/customer/orders", &s.customer, s.orderBody(1))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	e := decode[models.ErrorResponse](t, w)
	assert.False(t, e.Success)
	assert.Equal(t, "BELOW_MINIMUM", e.Code)
	assert.EqualValues(t, 15, e.Details["minimum"])
	assert.EqualValues(t, 6, e.Details["subtotal"])

	w = s.do(t, http.MethodPost, "/api/customer/orders", &s.customer, map[string]interface{}{"items": []interface{}{}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decode[models.ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodPost, "/api/customer/orders", nil, s.orderBody(3))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/customer/orders", &s.vendor, s.orderBody(3))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/customer/orders", &s.customer, s.orderBody(3))
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(decode[envelope](t, w).Data, &order))
	path := fmt.Sprintf("/api/vendor/orders/%d/status", order.ID)

	w = s.do(t, http.MethodPut, path, &s.vendor, UpdateStatusRequest{Status: models.StatusDelivered})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_STATE", decode[models.ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodPut, path, &s.vendor, UpdateStatusRequest{Status: models.StatusConfirmed, Note: "on it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(decode[envelope](t, w).Data, &order))
	assert.Equal(t, models.StatusConfirmed, order.Status)

	w = s.do(t, http.MethodPut, "/api/vendor/orders/abc/status", &s.vendor, UpdateStatusRequest{Status: models.StatusPreparing})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMenuFilters(t *testing.T) {
	s := newTestServer(t)
	salad := models.MenuItem{RestaurantID: s.restaurant.ID, Name: "Garden Salad", Category: models.CategoryAppetizer, Price: 5, IsAvailable: true, IsVegetarian: true}
	require.NoError(t, s.db.Create(&salad).Error)

	menu := func(query string) []models.MenuItem {
		w := s.do(t, http.MethodGet, fmt.Sprintf("/api/restaurants/%d/menu%s", s.restaurant.ID, query), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out struct {
			Items []models.MenuItem `json:"items"`
		}
		require.NoError(t, json.Unmarshal(decode[envelope](t, w).Data, &out))
		return out.Items
	}
	assert.Len(t, menu(""), 2)
	veg := menu("?vegetarian=true")
	require.Len(t, veg, 1)
	assert.Equal(t, "Garden Salad", veg[0].Name)
	mains := menu("?category=MAIN_COURSE")
	require.Len(t, mains, 1)
	assert.Equal(t, "Classic Burger", mains[0].Name)

	w := s.do(t, http.MethodGet, "/api/restaurants/9999/menu", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStateMachineEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/state-machine", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Transitions []struct {
			From  string   `json:"from"`
			To    string   `json:"to"`
			Roles []string `json:"roles"`
		} `json:"transitions"`
		TerminalStates []string `json:"terminal_states"`
	}
	require.NoError(t, json.Unmarshal(decode[envelope](t, w).Data, &out))
	assert.NotEmpty(t, out.Transitions)
	assert.ElementsMatch(t, []string{"DELIVERED", "CANCELLED"}, out.TerminalStates)
}

func TestUploadWithoutMedia(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "logo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/vendor/restaurants/%d/logo", s.restaurant.ID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(t, s.vendor))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "UNAVAILABLE", decode[models.ErrorResponse](t, w).Code)
}
