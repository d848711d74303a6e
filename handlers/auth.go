package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"starides-api/middleware"
	"starides-api/services"
)

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Register godoc
// @Summary Register new user
// @Description Create a CUSTOMER, VENDOR or RIDER account and return a session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body services.RegisterInput true "Register Request"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !h.bindJSON(c, &req) {
		return
	}
	payload, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Account created successfully", payload)
}

// Login godoc
// @Summary User login
// @Description Login with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body services.LoginInput true "Login Request"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req services.LoginInput
	if !h.bindJSON(c, &req) {
		return
	}
	payload, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", payload)
}

// ForgotPassword godoc
// @Summary Request password reset
// @Description Mails a single-use reset link. Always answers 200 so accounts cannot be probed.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Email"
// @Success 200 {object} models.Response
// @Router /auth/forgot-password [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.resets.RequestReset(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "If the email is registered, a reset link has been sent", nil)
}

// ResetPassword godoc
// @Summary Reset password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.resets.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Password has been reset", nil)
}

// GetProfile godoc
// @Summary Get user profile
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	user, err := h.users.Get(c.Request.Context(), ident.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved", user)
}

// UpdateProfile godoc
// @Summary Update profile
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.ProfileInput true "Fields to change"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /profile [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req services.ProfileInput
	if !h.bindJSON(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	user, err := h.users.UpdateProfile(c.Request.Context(), ident.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated", user)
}
