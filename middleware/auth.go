package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"starides-api/apperr"
	"starides-api/models"
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and decodes HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken creates a signed JWT for a given user
func (a *Authenticator) GenerateToken(user *models.User) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseToken verifies signature and expiry and returns the caller identity.
func (a *Authenticator) ParseToken(tokenStr string) (*models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}
	if claims.UserID == 0 || !claims.Role.Valid() {
		return nil, apperr.Unauthenticated("invalid token claims")
	}
	return &models.Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// Authenticate never rejects a request. A valid bearer token (or ?token= on
// websocket upgrades) attaches an identity to the request context; anything
// else leaves the request anonymous.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" && isWebsocketUpgrade(c.Request) {
			tokenStr = c.Query("token")
		}
		if tokenStr != "" {
			if ident, err := a.ParseToken(tokenStr); err == nil {
				c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), ident))
			}
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func isWebsocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

type identityKey struct{}

func WithIdentity(ctx context.Context, ident *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	ident, ok := ctx.Value(identityKey{}).(*models.Identity)
	return ident, ok && ident != nil
}

// RequireAuth fails with UNAUTHENTICATED when the context carries no identity.
func RequireAuth(ctx context.Context) (*models.Identity, error) {
	ident, ok := IdentityFrom(ctx)
	if !ok {
		return nil, apperr.Unauthenticated("authentication required")
	}
	return ident, nil
}

// RequireRole fails with UNAUTHENTICATED when anonymous and FORBIDDEN when
// the caller's role is not listed.
func RequireRole(ctx context.Context, roles ...models.UserRole) (*models.Identity, error) {
	ident, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if ident.Role == r {
			return ident, nil
		}
	}
	return nil, apperr.Forbidden("access denied. Required role(s): " + rolesString(roles))
}

// AuthRequired aborts anonymous REST requests with 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := RequireAuth(c.Request.Context()); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := RequireRole(c.Request.Context(), roles...); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func rolesString(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// GetIdentity extracts the caller from a request that passed AuthRequired.
func GetIdentity(c *gin.Context) *models.Identity {
	ident, _ := IdentityFrom(c.Request.Context())
	return ident
}

func abortWithError(c *gin.Context, err error) {
	e := apperr.From(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(e.Kind), models.ErrorResponse{
		Success: false,
		Code:    string(e.Kind),
		Message: e.Message,
	})
}
