package services

import (
	"context"
	"log/slog"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"starides-api/apperr"
	"starides-api/cache"
	"starides-api/models"
)

type MenuService struct {
	db    *gorm.DB
	cache *cache.RestaurantCache
	log   *slog.Logger
}

func NewMenuService(db *gorm.DB, c *cache.RestaurantCache, log *slog.Logger) *MenuService {
	return &MenuService{db: db, cache: c, log: log}
}

type MenuItemInput struct {
	Name            string                  `json:"name" binding:"required,max=120"`
	Description     string                  `json:"description"`
	Category        models.MenuItemCategory `json:"category" binding:"required,oneof=APPETIZER MAIN_COURSE DESSERT BEVERAGE SIDE_DISH"`
	Price           float64                 `json:"price" binding:"gt=0"`
	IsVegetarian    bool                    `json:"is_vegetarian"`
	IsVegan         bool                    `json:"is_vegan"`
	IsGlutenFree    bool                    `json:"is_gluten_free"`
	SpicyLevel      int                     `json:"spicy_level" binding:"min=0,max=5"`
	PreparationTime int                     `json:"preparation_time" binding:"min=0"`
	Calories        *int                    `json:"calories" binding:"omitempty,min=0"`
	Ingredients     []string                `json:"ingredients"`
	Allergens       []string                `json:"allergens"`
}

var menuItemInputColumns = []string{
	"name", "description", "category", "price", "is_vegetarian", "is_vegan",
	"is_gluten_free", "spicy_level", "preparation_time", "calories",
	"ingredients", "allergens",
}

func (in MenuItemInput) apply(m *models.MenuItem) {
	m.Name = strings.TrimSpace(in.Name)
	m.Description = in.Description
	m.Category = in.Category
	m.Price = round2(in.Price)
	m.IsVegetarian = in.IsVegetarian
	m.IsVegan = in.IsVegan
	m.IsGlutenFree = in.IsGlutenFree
	m.SpicyLevel = in.SpicyLevel
	m.PreparationTime = in.PreparationTime
	m.Calories = in.Calories
	m.Ingredients = datatypes.JSONSlice[string](in.Ingredients)
	m.Allergens = datatypes.JSONSlice[string](in.Allergens)
}

// ForRestaurant reads through the cache.
func (s *MenuService) ForRestaurant(ctx context.Context, restaurantID uint) ([]models.MenuItem, error) {
	if items, ok := s.cache.GetMenu(ctx, restaurantID); ok {
		return items, nil
	}
	var items []models.MenuItem
	err := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).
		Order("category ASC, name ASC").Find(&items).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.cache.SetMenu(ctx, restaurantID, items)
	return items, nil
}

func (s *MenuService) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, dbError(err, "menu item")
	}
	return &item, nil
}

func (s *MenuService) Create(ctx context.Context, ident *models.Identity, restaurantID uint, in MenuItemInput) (*models.MenuItem, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", restaurantID).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if count == 0 {
		return nil, apperr.NotFound("restaurant")
	}
	if err := canManageRestaurant(ctx, s.db, ident, restaurantID); err != nil {
		return nil, err
	}

	item := models.MenuItem{RestaurantID: restaurantID, IsAvailable: true}
	in.apply(&item)
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, dbError(err, "menu item")
	}
	s.cache.Invalidate(ctx, restaurantID)
	return &item, nil
}

// owned loads a menu item the caller may manage.
func (s *MenuService) owned(ctx context.Context, ident *models.Identity, id uint) (*models.MenuItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canManageRestaurant(ctx, s.db, ident, item.RestaurantID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MenuService) Update(ctx context.Context, ident *models.Identity, id uint, in MenuItemInput) (*models.MenuItem, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	item, err := s.owned(ctx, ident, id)
	if err != nil {
		return nil, err
	}
	in.apply(item)
	err = s.db.WithContext(ctx).Model(item).Select(menuItemInputColumns).Updates(item).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.cache.Invalidate(ctx, item.RestaurantID)
	return item, nil
}

// Delete removes the item. Existing orders keep their snapshotted lines.
func (s *MenuService) Delete(ctx context.Context, ident *models.Identity, id uint) error {
	item, err := s.owned(ctx, ident, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.MenuItem{}, item.ID).Error; err != nil {
		return apperr.Internal(err)
	}
	s.cache.Invalidate(ctx, item.RestaurantID)
	return nil
}

func (s *MenuService) ToggleAvailability(ctx context.Context, ident *models.Identity, id uint) (*models.MenuItem, error) {
	item, err := s.owned(ctx, ident, id)
	if err != nil {
		return nil, err
	}
	item.IsAvailable = !item.IsAvailable
	if err := s.db.WithContext(ctx).Model(item).Update("is_available", item.IsAvailable).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	s.cache.Invalidate(ctx, item.RestaurantID)
	return item, nil
}

// SetImage stores a new photo and returns the previous asset's public id.
func (s *MenuService) SetImage(ctx context.Context, ident *models.Identity, id uint, url, publicID string) (string, error) {
	item, err := s.owned(ctx, ident, id)
	if err != nil {
		return "", err
	}
	old := item.ImagePublicID
	err = s.db.WithContext(ctx).Model(item).Updates(map[string]interface{}{
		"image":           url,
		"image_public_id": publicID,
	}).Error
	if err != nil {
		return "", apperr.Internal(err)
	}
	s.cache.Invalidate(ctx, item.RestaurantID)
	return old, nil
}
