package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbook/internal/auth"
	"budgetbook/internal/models"
	"budgetbook/internal/storage"
)

type AuthHandler struct {
	authn auth.Authenticator
	jwt   *auth.JWTManager
	users storage.UserStore
}

func NewAuthHandler(authn auth.Authenticator, jwt *auth.JWTManager, users storage.UserStore) *AuthHandler {
	return &AuthHandler{authn: authn, jwt: jwt, users: users}
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,notblank"`
	Password    string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// Optional refresh; clients may carry an updated display name.
	DisplayName string `json:"displayName"`
}

type sessionResponse struct {
	Token string         `json:"token"`
	User  models.Profile `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authn.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("Register failed", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}

	h.respondSession(c, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authn.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if req.DisplayName != "" && req.DisplayName != user.DisplayName {
		if err := h.users.UpdateUserDisplayName(c.Request.Context(), user.ID, req.DisplayName); err != nil {
			slog.Warn("display name refresh failed", "user_id", user.ID, "error", err)
		} else {
			user.DisplayName = req.DisplayName
		}
	}

	h.respondSession(c, user)
}

// Me returns the profile behind the bearer token.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetUserByID(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user.PublicProfile())
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required,notblank"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateUserDisplayName(c.Request.Context(), userID(c), req.DisplayName); err != nil {
		slog.Error("UpdateProfile failed", "user_id", userID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, user.PublicProfile())
}

func (h *AuthHandler) respondSession(c *gin.Context, user *models.User) {
	token, err := h.jwt.Generate(user)
	if err != nil {
		slog.Error("token generation failed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Token: token, User: user.PublicProfile()})
}
