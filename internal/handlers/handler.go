package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Galaktikon/trust-cart/internal/accounts"
	"github.com/Galaktikon/trust-cart/internal/apperr"
	"github.com/Galaktikon/trust-cart/internal/banklink"
	"github.com/Galaktikon/trust-cart/internal/cart"
	"github.com/Galaktikon/trust-cart/internal/catalog"
	"github.com/Galaktikon/trust-cart/internal/store"
)

type Handler struct {
	carts    *cart.Reconciler
	catalog  *catalog.Service
	accounts *accounts.Service
	banks    banklink.Client
	repo     *store.Repository
	log      *slog.Logger
}

func New(carts *cart.Reconciler, cat *catalog.Service, acc *accounts.Service, banks banklink.Client, repo *store.Repository, log *slog.Logger) *Handler {
	return &Handler{
		carts:    carts,
		catalog:  cat,
		accounts: acc,
		banks:    banks,
		repo:     repo,
		log:      log,
	}
}

// GET /
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "trust-cart"})
}

func respondError(c *gin.Context, err error) {
	status, msg := apperr.Status(err)
	c.JSON(status, gin.H{"error": msg})
}

// bindOptionalJSON binds the body when there is one. It writes the 400
// itself and reports false on a malformed body.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
