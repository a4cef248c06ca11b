package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Galaktikon/trust-cart/internal/accounts"
	"github.com/Galaktikon/trust-cart/internal/auth"
	"github.com/Galaktikon/trust-cart/internal/models"
)

type RegisterRequest struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name" binding:"required"`
	Role        string `json:"role"`
}

// POST /register. A token is optional; when one is sent the body's user_id
// must match it and the row is marked verified.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, verified := req.UserID, false
	if _, ok := auth.IdentityFrom(c); ok {
		var err error
		if userID, err = auth.Subject(c, req.UserID); err != nil {
			respondError(c, err)
			return
		}
		verified = true
	}

	user, created, err := h.accounts.Register(c.Request.Context(), accounts.Registration{
		UserID:      userID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        models.Role(req.Role),
		Verified:    verified,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"user": user, "created": created})
}

type LoginRequest struct {
	UserID      string `json:"user_id"`
	Description string `json:"description"`
}

// POST /login ensures the merchant's store exists.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	userID, err := auth.Subject(c, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	st, err := h.catalog.EnsureStore(c.Request.Context(), userID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"store": st})
}

type UserDataRequest struct {
	UserID string `json:"user_id"`
}

// POST /getUserData
func (h *Handler) GetUserData(c *gin.Context) {
	var req UserDataRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	userID, err := auth.Subject(c, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.accounts.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
