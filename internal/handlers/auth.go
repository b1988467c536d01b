package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/founderport/angel/internal/auth"
	"github.com/founderport/angel/internal/middleware"
	"github.com/founderport/angel/pkg/models"
)

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request format", "INVALID_REQUEST")
		return
	}

	user, err := h.AuthService.CreateUser(&req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "USER_CREATION_FAILED")
		return
	}

	var existing models.User
	if err := h.DB.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		respondError(c, http.StatusConflict, "User with this email already exists", "USER_EXISTS")
		return
	}

	if err := h.DB.Create(user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create user", "DATABASE_ERROR")
		return
	}

	tokens, err := h.AuthService.GenerateTokens(user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate authentication tokens", "TOKEN_GENERATION_FAILED")
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data: map[string]interface{}{
			"user":   userPayload(user),
			"tokens": tokens,
		},
		Message: "User registered successfully",
	})
}

// Login handles user authentication
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request format", "INVALID_REQUEST")
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
			return
		}
		respondError(c, http.StatusInternalServerError, "Database error", "DATABASE_ERROR")
		return
	}

	if !user.IsActive {
		respondError(c, http.StatusUnauthorized, "Account is disabled", "ACCOUNT_DISABLED")
		return
	}

	if err := h.AuthService.CheckPassword(req.Password, user.PasswordHash); err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
		return
	}

	tokens, err := h.AuthService.GenerateTokens(&user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate authentication tokens", "TOKEN_GENERATION_FAILED")
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: map[string]interface{}{
			"user":   userPayload(&user),
			"tokens": tokens,
		},
		Message: "Login successful",
	})
}

// RefreshToken handles token refresh
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Refresh token is required", "INVALID_REQUEST")
		return
	}

	claims, err := h.AuthService.ValidateToken(req.RefreshToken)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid refresh token", "INVALID_TOKEN")
		return
	}

	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "User not found", "USER_NOT_FOUND")
		return
	}

	tokens, err := h.AuthService.RefreshTokens(req.RefreshToken, &user)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Failed to refresh tokens", "TOKEN_REFRESH_FAILED")
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    map[string]interface{}{"tokens": tokens},
	})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		respondError(c, http.StatusNotFound, "User not found", "USER_NOT_FOUND")
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: userPayload(&user)})
}

func userPayload(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":          user.ID,
		"email":       user.Email,
		"full_name":   user.FullName,
		"is_verified": user.IsVerified,
	}
}
