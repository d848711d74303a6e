package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"starides-api/apperr"
	"starides-api/models"
	"starides-api/utils"
)

type UserService struct {
	db     *gorm.DB
	tokens TokenIssuer
	log    *slog.Logger
}

func NewUserService(db *gorm.DB, tokens TokenIssuer, log *slog.Logger) *UserService {
	return &UserService{db: db, tokens: tokens, log: log}
}

type RegisterInput struct {
	Email     string          `json:"email" binding:"required,email"`
	Password  string          `json:"password" binding:"required,min=6"`
	FirstName string          `json:"first_name" binding:"required"`
	LastName  string          `json:"last_name" binding:"required"`
	Phone     string          `json:"phone" binding:"required"`
	Role      models.UserRole `json:"role" binding:"required,oneof=CUSTOMER VENDOR RIDER ADMIN"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a CUSTOMER, VENDOR or RIDER account. Admin accounts are
// only ever seeded.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthPayload, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Role == models.RoleAdmin {
		return nil, apperr.Forbidden("admin accounts cannot be self-registered")
	}
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if count > 0 {
		return nil, apperr.Conflict("a user with this email already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := models.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        in.Phone,
		Role:         in.Role,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, dbError(err, "user")
	}
	s.log.Info("user registered", "action", "register", "user_id", user.ID, "role", user.Role)
	return s.issue(&user)
}

// Login verifies credentials. Legacy bcrypt hashes are upgraded to argon2.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthPayload, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", in.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated("invalid email or password")
		}
		return nil, apperr.Internal(err)
	}
	ok, err := utils.VerifyPassword(user.PasswordHash, in.Password)
	if err != nil || !ok {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated("account is deactivated")
	}

	if utils.IsLegacyHash(user.PasswordHash) {
		if hash, err := utils.HashPassword(in.Password); err == nil {
			if err := db.Model(&user).Update("password_hash", hash).Error; err != nil {
				s.log.Warn("password rehash failed", "action", "login", "user_id", user.ID, "error", err)
			} else {
				user.PasswordHash = hash
			}
		}
	}
	return s.issue(&user)
}

func (s *UserService) issue(user *models.User) (*AuthPayload, error) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthPayload{Token: token, User: user}, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, dbError(err, "user")
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, role *models.UserRole) ([]models.User, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if role != nil {
		q = q.Where("role = ?", *role)
	}
	var users []models.User
	if err := q.Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

type ProfileInput struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar" binding:"omitempty,url"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if in.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(fields)
		if res.Error != nil {
			return nil, apperr.Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.NotFound("user")
		}
	}
	return s.Get(ctx, userID)
}

type AddressInput struct {
	Label     string  `json:"label"`
	Street    string  `json:"street" binding:"required"`
	City      string  `json:"city" binding:"required"`
	State     string  `json:"state" binding:"required"`
	ZipCode   string  `json:"zip_code" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
	IsDefault bool    `json:"is_default"`
}

// AddAddress saves a delivery address. The first address, or one flagged
// default, becomes the only default.
func (s *UserService) AddAddress(ctx context.Context, userID uint, in AddressInput) (*models.Address, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	addr := models.Address{
		UserID:    userID,
		Label:     in.Label,
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		IsDefault: in.IsDefault,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			addr.IsDefault = true
		}
		if addr.IsDefault && count > 0 {
			if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&addr).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &addr, nil
}

func (s *UserService) Addresses(ctx context.Context, userID uint) ([]models.Address, error) {
	var addrs []models.Address
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").Find(&addrs).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return addrs, nil
}

func (s *UserService) SetRiderAvailability(ctx context.Context, ident *models.Identity, available bool) (*models.User, error) {
	if ident.Role != models.RoleRider {
		return nil, apperr.Forbidden("only riders have an availability flag")
	}
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", ident.UserID).
		Update("is_available", available).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.Get(ctx, ident.UserID)
}
