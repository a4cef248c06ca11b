package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Galaktikon/trust-cart/internal/auth"
)

type AddToCartRequest struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title" binding:"required"`
	StoreID string `json:"store_id"`
}

// POST /add_to_cart
func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.Subject(c, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	st, err := h.carts.AddItem(c.Request.Context(), userID, req.Title, req.StoreID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /cart
func (h *Handler) GetCart(c *gin.Context) {
	userID, err := auth.Subject(c, "")
	if err != nil {
		respondError(c, err)
		return
	}

	ct, err := h.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}
