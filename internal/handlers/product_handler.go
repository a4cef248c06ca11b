package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Galaktikon/trust-cart/internal/auth"
	"github.com/Galaktikon/trust-cart/internal/catalog"
)

const (
	maxImageSize = 10 << 20
	// room for the text fields and multipart framing around the image
	maxFormOverhead = 1 << 20
)

type CreateItemRequest struct {
	UserID      string `form:"user_id"`
	Title       string `form:"title" binding:"required"`
	Price       string `form:"price" binding:"required"`
	Description string `form:"description"`
	FilePath    string `form:"filePath"`
}

// POST /create_item (multipart)
func (h *Handler) CreateItem(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageSize+maxFormOverhead)

	var req CreateItemRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a number"})
		return
	}

	userID, err := auth.Subject(c, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	st, err := h.catalog.StoreFor(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	in := catalog.ProductInput{
		StoreID:     st.ID,
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		ImagePath:   req.FilePath,
	}

	fh, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file upload"})
		return
	default:
		if fh.Size > maxImageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file upload"})
			return
		}
		defer f.Close()

		if in.Image, err = io.ReadAll(f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file upload"})
			return
		}
		in.ContentType = fh.Header.Get("Content-Type")
		if in.ImagePath == "" {
			in.ImagePath = fh.Filename
		}
	}

	product, created, err := h.catalog.EnsureProduct(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"product": product, "created": created})
}
