package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/services"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required,oneof=admin staff"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/v1/auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, tokens, err := h.services.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":   user.ToResponse(),
		"tokens": tokens,
	})
}

// RefreshToken exchanges a refresh token for a new token pair
func (h *Handlers) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, tokens, err := h.services.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":   user.ToResponse(),
		"tokens": tokens,
	})
}

// Logout revokes the caller's refresh tokens
func (h *Handlers) Logout(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		respondError(c, services.ErrUnauthorized)
		return
	}
	if err := h.services.Auth.Logout(c.Request.Context(), *userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Register creates a staff account (admin only)
func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.services.Auth.Register(c.Request.Context(), middleware.CurrentUserID(c),
		req.Email, req.Password, req.FullName, req.Phone, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user.ToResponse()})
}

// ChangePassword updates the caller's password
func (h *Handlers) ChangePassword(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		respondError(c, services.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.services.Auth.ChangePassword(c.Request.Context(), *userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// Me returns the authenticated user's profile
func (h *Handlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": c.GetUint(middleware.ContextUserID),
		"email":   c.GetString(middleware.ContextEmail),
		"role":    c.GetString(middleware.ContextRole),
	})
}

// ListUsers returns staff accounts (admin only)
func (h *Handlers) ListUsers(c *gin.Context) {
	query := listQuery(c)
	users, total, err := h.services.Auth.ListUsers(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]any, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	respondList(c, out, total, query)
}
