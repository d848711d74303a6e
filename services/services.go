package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"starides-api/apperr"
	"starides-api/events"
	"starides-api/models"
)

// validate checks the same `binding` tags gin uses for REST bodies, so
// GraphQL inputs are held to identical rules.
var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.InvalidInput(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return apperr.InvalidInput("invalid input: " + strings.Join(msgs, ", "))
}

// dbError maps gorm errors onto the shared error kinds.
func dbError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(entity + " already exists")
	default:
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperr.Internal(err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Mailer is the subset of the mail service the domain depends on.
type Mailer interface {
	SendPasswordReset(to, token string) error
	SendPasswordResetConfirmation(to string) error
	SendOrderConfirmation(to, orderNumber string, total float64) error
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(user *models.User) (string, error)
}

// ownsRestaurant reports whether userID owns restaurantID.
func ownsRestaurant(ctx context.Context, db *gorm.DB, userID, restaurantID uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("id = ? AND owner_id = ?", restaurantID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internal(err)
	}
	return count > 0, nil
}

// canManageRestaurant allows admins and the owning vendor.
func canManageRestaurant(ctx context.Context, db *gorm.DB, ident *models.Identity, restaurantID uint) error {
	if ident.Role == models.RoleAdmin {
		return nil
	}
	if ident.Role != models.RoleVendor {
		return apperr.Forbidden("only the restaurant owner can do this")
	}
	owns, err := ownsRestaurant(ctx, db, ident.UserID, restaurantID)
	if err != nil {
		return err
	}
	if !owns {
		return apperr.Forbidden("this restaurant does not belong to you")
	}
	return nil
}

func publish(ctx context.Context, log *slog.Logger, pub events.Publisher, ev events.OrderEvent) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn("event publish failed", "action", "publish_event", "type", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}
