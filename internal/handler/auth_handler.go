package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"planner/internal/auth"
	"planner/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type AuthHandler struct {
	base
	svc AuthService
}

func NewAuthHandler(svc AuthService, sessions Sessions, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{base: newBase(sessions, logger), svc: svc}
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func authResponse(s *auth.Session) AuthResponse {
	return AuthResponse{Token: s.Token, User: UserResponse{ID: s.User.ID, Email: s.User.Email}}
}

// SignUp godoc
// @Summary  Create an account
// @Tags     Auth
// @Accept   json
// @Produce  json
// @Param    body body CredentialsRequest true "Credentials"
// @Success  201 {object} AuthResponse
// @Failure  400,409 {object} map[string]string
// @Router   /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	s, err := h.svc.SignUp(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("sign up failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, authResponse(s))
}

// SignIn godoc
// @Summary  Sign in and start a session
// @Tags     Auth
// @Accept   json
// @Produce  json
// @Param    body body CredentialsRequest true "Credentials"
// @Success  200 {object} AuthResponse
// @Failure  401 {object} map[string]string
// @Router   /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	s, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		h.logger.Error("sign in failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	// a failed load is retried on the next request
	if _, err := h.sessions.Get(c.Request.Context(), s.User.ID); err != nil {
		h.logger.Warn("session start deferred", "user_id", s.User.ID, "error", err)
	}
	c.JSON(http.StatusOK, authResponse(s))
}

// SignOut godoc
// @Summary   End the session
// @Tags      Auth
// @Security  BearerAuth
// @Success   204
// @Router    /auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	h.sessions.Stop(userID)
	c.Status(http.StatusNoContent)
}

// Session godoc
// @Summary   Current session
// @Tags      Auth
// @Security  BearerAuth
// @Produce   json
// @Success   200 {object} map[string]any
// @Router    /session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": s.UserID,
		"unread":  s.Store.UnreadCount(),
	})
}

// RequestPasswordReset godoc
// @Summary  Send a password reset token
// @Tags     Auth
// @Accept   json
// @Param    body body PasswordResetRequest true "Email"
// @Success  202
// @Router   /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := h.svc.RequestPasswordReset(c.Request.Context(), req.Email)
	if errors.Is(err, auth.ErrInvalidEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("password reset request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset link"})
		return
	}
	c.Status(http.StatusAccepted)
}

// ConfirmPasswordReset godoc
// @Summary  Set a new password with a reset token
// @Tags     Auth
// @Accept   json
// @Param    body body PasswordResetConfirmRequest true "Token and new password"
// @Success  204
// @Failure  400 {object} map[string]string
// @Router   /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	case errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("password reset failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	c.Status(http.StatusNoContent)
}
