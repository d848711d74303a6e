package config

import (
	"context"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"starides-api/models"
	"starides-api/utils"
)

// SeedAdmin creates the ADMIN account named by ADMIN_EMAIL/ADMIN_PASSWORD if it
// does not exist. Admins cannot self-register, so this is the only way in.
func SeedAdmin(ctx context.Context, db *gorm.DB, cfg Config, log *slog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		log.Info("skip seeding admin: missing ADMIN_EMAIL/ADMIN_PASSWORD", "action", "seed_admin")
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin already exists", "action", "seed_admin", "email", email)
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "Seed",
		Role:         models.RoleAdmin,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}
	log.Info("admin seeded", "action", "seed_admin", "email", email)
	return nil
}
