package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"starides-api/apperr"
	"starides-api/models"
	"starides-api/utils"
)

const resetTokenTTL = time.Hour

type PasswordResetService struct {
	db     *gorm.DB
	mailer Mailer
	log    *slog.Logger
	now    func() time.Time
}

func NewPasswordResetService(db *gorm.DB, mailer Mailer, log *slog.Logger) *PasswordResetService {
	return &PasswordResetService{db: db, mailer: mailer, log: log, now: time.Now}
}

// RequestReset emails a reset link if the address belongs to a user. It
// reports success either way so callers cannot probe for accounts.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperr.Internal(err)
	}

	token, digest, err := utils.NewResetToken()
	if err != nil {
		return apperr.Internal(err)
	}
	expires := s.now().UTC().Add(resetTokenTTL)
	err = db.Model(&user).Updates(map[string]interface{}{
		"reset_password_token":   digest,
		"reset_password_expires": expires,
	}).Error
	if err != nil {
		return apperr.Internal(err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(user.Email, token); err != nil {
			s.log.Warn("password reset email failed", "action", "request_password_reset", "user_id", user.ID, "error", err)
		}
	}
	s.log.Info("password reset requested", "action", "request_password_reset", "user_id", user.ID)
	return nil
}

func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.InvalidInput("password must be at least 6 characters long")
	}
	if token == "" {
		return apperr.InvalidInput("invalid or expired password reset token")
	}
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("reset_password_token = ? AND reset_password_expires > ?", utils.HashToken(token), s.now().UTC()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.InvalidInput("invalid or expired password reset token")
		}
		return apperr.Internal(err)
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	err = db.Model(&user).Updates(map[string]interface{}{
		"password_hash":          hash,
		"reset_password_token":   nil,
		"reset_password_expires": nil,
	}).Error
	if err != nil {
		return apperr.Internal(err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetConfirmation(user.Email); err != nil {
			s.log.Warn("password reset confirmation failed", "action", "reset_password", "user_id", user.ID, "error", err)
		}
	}
	s.log.Info("password reset", "action", "reset_password", "user_id", user.ID)
	return nil
}
