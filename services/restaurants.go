package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"starides-api/apperr"
	"starides-api/cache"
	"starides-api/models"
	"starides-api/utils"
)

const DefaultNearbyRadiusKm = 10.0

type RestaurantService struct {
	db    *gorm.DB
	cache *cache.RestaurantCache
	log   *slog.Logger
}

func NewRestaurantService(db *gorm.DB, c *cache.RestaurantCache, log *slog.Logger) *RestaurantService {
	return &RestaurantService{db: db, cache: c, log: log}
}

type RestaurantInput struct {
	Name                  string               `json:"name" binding:"required,max=120"`
	Description           string               `json:"description" binding:"required"`
	Cuisine               []string             `json:"cuisine"`
	Street                string               `json:"street" binding:"required"`
	City                  string               `json:"city" binding:"required"`
	State                 string               `json:"state" binding:"required"`
	ZipCode               string               `json:"zip_code" binding:"required"`
	Latitude              float64              `json:"latitude" binding:"min=-90,max=90"`
	Longitude             float64              `json:"longitude" binding:"min=-180,max=180"`
	Phone                 string               `json:"phone" binding:"required"`
	Email                 string               `json:"email" binding:"required,email"`
	DeliveryFee           float64              `json:"delivery_fee" binding:"min=0"`
	MinimumOrder          float64              `json:"minimum_order" binding:"min=0"`
	EstimatedDeliveryTime int                  `json:"estimated_delivery_time" binding:"min=0"`
	OpeningHours          []models.OpeningHour `json:"opening_hours"`
}

func (in RestaurantInput) apply(r *models.Restaurant) {
	r.Name = strings.TrimSpace(in.Name)
	r.Description = in.Description
	r.Cuisine = datatypes.JSONSlice[string](in.Cuisine)
	r.Street = in.Street
	r.City = in.City
	r.State = in.State
	r.ZipCode = in.ZipCode
	r.Latitude = in.Latitude
	r.Longitude = in.Longitude
	r.Phone = in.Phone
	r.Email = strings.ToLower(strings.TrimSpace(in.Email))
	r.DeliveryFee = in.DeliveryFee
	r.MinimumOrder = in.MinimumOrder
	r.EstimatedDeliveryTime = in.EstimatedDeliveryTime
	if in.OpeningHours != nil {
		r.OpeningHours = datatypes.JSONSlice[models.OpeningHour](in.OpeningHours)
	}
}

var restaurantInputColumns = []string{
	"name", "description", "cuisine", "street", "city", "state", "zip_code",
	"latitude", "longitude", "phone", "email", "delivery_fee", "minimum_order",
	"estimated_delivery_time", "opening_hours",
}

type RestaurantFilter struct {
	Status   *models.RestaurantStatus
	OwnerID  *uint
	Cuisine  string
	Search   string
	OpenOnly bool
}

func (s *RestaurantService) List(ctx context.Context, f RestaurantFilter) ([]models.Restaurant, error) {
	q := s.db.WithContext(ctx).Model(&models.Restaurant{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.OpenOnly {
		q = q.Where("is_open = ?", true)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	var restaurants []models.Restaurant
	if err := q.Order("rating DESC, id ASC").Find(&restaurants).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if f.Cuisine == "" {
		return restaurants, nil
	}
	// cuisine is a JSON column; match in memory so the query stays portable
	want := strings.ToLower(f.Cuisine)
	filtered := restaurants[:0]
	for _, r := range restaurants {
		for _, c := range r.Cuisine {
			if strings.ToLower(c) == want {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered, nil
}

// Get reads through the cache.
func (s *RestaurantService) Get(ctx context.Context, id uint) (*models.Restaurant, error) {
	if r, ok := s.cache.GetRestaurant(ctx, id); ok {
		return r, nil
	}
	var r models.Restaurant
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, dbError(err, "restaurant")
	}
	s.cache.SetRestaurant(ctx, &r)
	return &r, nil
}

func (s *RestaurantService) ForOwner(ctx context.Context, ownerID uint) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&r).Error; err != nil {
		return nil, dbError(err, "restaurant")
	}
	return &r, nil
}

// CanManage reports FORBIDDEN unless ident is an admin or the owning vendor.
func (s *RestaurantService) CanManage(ctx context.Context, ident *models.Identity, id uint) error {
	return canManageRestaurant(ctx, s.db, ident, id)
}

// NearbyRestaurant pairs a restaurant with its distance from the search point.
type NearbyRestaurant struct {
	Restaurant models.Restaurant
	DistanceKm float64
}

// Nearby returns approved restaurants within radiusKm, nearest first.
func (s *RestaurantService) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]NearbyRestaurant, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, apperr.InvalidInput("coordinates out of range")
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	var all []models.Restaurant
	err := s.db.WithContext(ctx).Where("status = ?", models.RestaurantApproved).Find(&all).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	var out []NearbyRestaurant
	for _, r := range all {
		d := utils.DistanceKm(lat, lon, r.Latitude, r.Longitude)
		if d <= radiusKm {
			out = append(out, NearbyRestaurant{Restaurant: r, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

// Create registers the vendor's restaurant. A vendor owns at most one; it
// starts PENDING until an admin approves it.
func (s *RestaurantService) Create(ctx context.Context, ident *models.Identity, in RestaurantInput) (*models.Restaurant, error) {
	if ident.Role != models.RoleVendor {
		return nil, apperr.Forbidden("only vendors can create restaurants")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Restaurant{}).Where("owner_id = ?", ident.UserID).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if count > 0 {
		return nil, apperr.Conflict("you already have a restaurant")
	}

	r := models.Restaurant{
		OwnerID:      ident.UserID,
		Status:       models.RestaurantPending,
		IsOpen:       true,
		OpeningHours: datatypes.JSONSlice[models.OpeningHour]{},
	}
	in.apply(&r)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", ident.UserID).Update("restaurant_id", r.ID).Error
	})
	if err != nil {
		return nil, dbError(err, "restaurant")
	}
	s.log.Info("restaurant created", "action", "create_restaurant", "restaurant_id", r.ID, "owner_id", ident.UserID)
	return &r, nil
}

func (s *RestaurantService) Update(ctx context.Context, ident *models.Identity, id uint, in RestaurantInput) (*models.Restaurant, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := canManageRestaurant(ctx, s.db, ident, id); err != nil {
		return nil, err
	}
	var r models.Restaurant
	db := s.db.WithContext(ctx)
	if err := db.First(&r, id).Error; err != nil {
		return nil, dbError(err, "restaurant")
	}
	in.apply(&r)
	// only the input's columns, so a concurrent rating recompute is kept
	if err := db.Model(&r).Select(restaurantInputColumns).Updates(&r).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	s.cache.Invalidate(ctx, id)
	if err := db.First(&r, id).Error; err != nil {
		return nil, dbError(err, "restaurant")
	}
	return &r, nil
}

func (s *RestaurantService) UpdateStatus(ctx context.Context, id uint, status models.RestaurantStatus) (*models.Restaurant, error) {
	if !status.Valid() {
		return nil, apperr.InvalidInput("unknown restaurant status " + string(status))
	}
	return s.update(ctx, id, map[string]interface{}{"status": status})
}

// ToggleOpen flips is_open for the owning vendor.
func (s *RestaurantService) ToggleOpen(ctx context.Context, ident *models.Identity, id uint) (*models.Restaurant, error) {
	if err := canManageRestaurant(ctx, s.db, ident, id); err != nil {
		return nil, err
	}
	var r models.Restaurant
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, dbError(err, "restaurant")
	}
	return s.update(ctx, id, map[string]interface{}{"is_open": !r.IsOpen})
}

// SetLogo stores a new logo and returns the previous asset's public id.
func (s *RestaurantService) SetLogo(ctx context.Context, ident *models.Identity, id uint, url, publicID string) (string, error) {
	if err := canManageRestaurant(ctx, s.db, ident, id); err != nil {
		return "", err
	}
	var r models.Restaurant
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return "", dbError(err, "restaurant")
	}
	if _, err := s.update(ctx, id, map[string]interface{}{"logo": url, "logo_public_id": publicID}); err != nil {
		return "", err
	}
	return r.LogoPublicID, nil
}

func (s *RestaurantService) update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Restaurant, error) {
	db := s.db.WithContext(ctx)
	res := db.Model(&models.Restaurant{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("restaurant")
	}
	s.cache.Invalidate(ctx, id)
	var r models.Restaurant
	if err := db.First(&r, id).Error; err != nil {
		return nil, dbError(err, "restaurant")
	}
	return &r, nil
}
