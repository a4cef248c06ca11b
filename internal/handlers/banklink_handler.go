package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Galaktikon/trust-cart/internal/apperr"
	"github.com/Galaktikon/trust-cart/internal/auth"
	"github.com/Galaktikon/trust-cart/internal/models"
	"github.com/Galaktikon/trust-cart/internal/store"
)

// POST /create_link_token
func (h *Handler) CreateLinkToken(c *gin.Context) {
	userID, err := auth.Subject(c, "")
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.banks.CreateLinkToken(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("create link token failed", "user_id", userID, "error", err)
		respondError(c, apperr.Upstream("failed to create link token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"link_token": token})
}

// LinkMetadata is the subset of Plaid Link's onSuccess metadata we keep.
type LinkMetadata struct {
	Institution struct {
		Name          string `json:"name"`
		InstitutionID string `json:"institution_id"`
	} `json:"institution"`
}

type ExchangeRequest struct {
	PublicToken string       `json:"public_token" binding:"required"`
	Metadata    LinkMetadata `json:"metadata"`
}

// POST /exchange_public_token
func (h *Handler) ExchangePublicToken(c *gin.Context) {
	var req ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.Subject(c, "")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	ex, err := h.banks.ExchangePublicToken(ctx, req.PublicToken)
	if err != nil {
		h.log.Error("public token exchange failed", "user_id", userID, "error", err)
		respondError(c, apperr.Upstream("failed to exchange public token", err))
		return
	}

	link := models.BankLink{
		UserID:          userID,
		ItemID:          ex.ItemID,
		InstitutionName: req.Metadata.Institution.Name,
		AccessToken:     ex.AccessToken,
	}
	err = h.repo.CreateBankLink(ctx, &link)
	if errors.Is(err, store.ErrDuplicate) {
		respondError(c, apperr.Conflict("bank account already linked"))
		return
	}
	if err != nil {
		h.log.Error("bank link save failed", "user_id", userID, "error", err)
		respondError(c, apperr.Upstream("failed to save bank link", err))
		return
	}

	h.log.Info("bank linked", "user_id", userID, "item_id", link.ItemID)
	c.JSON(http.StatusCreated, gin.H{"bank_link": link})
}
