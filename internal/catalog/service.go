// Package catalog manages merchant stores and their products. Both are
// find-or-create: repeating a call returns the first record unchanged.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/shopspring/decimal"

	"github.com/Galaktikon/trust-cart/internal/apperr"
	"github.com/Galaktikon/trust-cart/internal/blob"
	"github.com/Galaktikon/trust-cart/internal/models"
	"github.com/Galaktikon/trust-cart/internal/store"
)

type Service struct {
	repo  *store.Repository
	blobs blob.Store
	log   *slog.Logger
}

func NewService(repo *store.Repository, blobs blob.Store, log *slog.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, log: log}
}

// EnsureStore returns the merchant's store, creating "<name>'s Store" on the
// first call. Later calls never touch the description.
func (s *Service) EnsureStore(ctx context.Context, userID, description string) (models.Store, error) {
	if userID == "" {
		return models.Store{}, apperr.Validation("user_id is required")
	}

	existing, err := s.repo.FindStoreByMerchant(ctx, userID)
	if err == nil {
		return *existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.log.Error("store lookup failed", "merchant_id", userID, "error", err)
		return models.Store{}, apperr.Upstream("failed to load store", err)
	}

	user, err := s.repo.FindUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Store{}, apperr.NotFound("user not found")
	}
	if err != nil {
		s.log.Error("user lookup failed", "user_id", userID, "error", err)
		return models.Store{}, apperr.Upstream("failed to load user", err)
	}
	if user.Role != models.RoleAdmin {
		return models.Store{}, apperr.Forbidden("only merchants own stores")
	}

	st := models.Store{
		MerchantID:  userID,
		Name:        fmt.Sprintf("%s's Store", user.DisplayName),
		Description: description,
	}
	err = s.repo.CreateStore(ctx, &st)
	if errors.Is(err, store.ErrDuplicate) {
		// lost a race with another login
		return s.StoreFor(ctx, userID)
	}
	if err != nil {
		s.log.Error("store create failed", "merchant_id", userID, "error", err)
		return models.Store{}, apperr.Upstream("failed to create store", err)
	}

	s.log.Info("store created", "store_id", st.ID, "merchant_id", userID)
	return st, nil
}

// StoreFor returns the merchant's store without creating one.
func (s *Service) StoreFor(ctx context.Context, merchantID string) (models.Store, error) {
	st, err := s.repo.FindStoreByMerchant(ctx, merchantID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Store{}, apperr.NotFound("store not found")
	}
	if err != nil {
		s.log.Error("store lookup failed", "merchant_id", merchantID, "error", err)
		return models.Store{}, apperr.Upstream("failed to load store", err)
	}
	return *st, nil
}

type ProductInput struct {
	StoreID     string
	Title       string
	Description string
	Price       decimal.Decimal
	ImagePath   string
	Image       []byte
	ContentType string
}

// EnsureProduct returns the store's product named in.Title, creating it when
// absent. created reports whether this call made it. An existing product is
// returned as is; the new price, description and image are dropped.
func (s *Service) EnsureProduct(ctx context.Context, in ProductInput) (p models.Product, created bool, err error) {
	switch {
	case in.StoreID == "":
		return p, false, apperr.Validation("store_id is required")
	case in.Title == "":
		return p, false, apperr.Validation("title is required")
	case !in.Price.IsPositive():
		return p, false, apperr.Validation("price must be greater than 0")
	}

	existing, err := s.repo.FindProduct(ctx, in.StoreID, in.Title)
	if err == nil {
		return *existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.log.Error("product lookup failed", "store_id", in.StoreID, "title", in.Title, "error", err)
		return p, false, apperr.Upstream("failed to load product", err)
	}

	var imageURL string
	if len(in.Image) > 0 {
		key := imageKey(in.StoreID, in.ImagePath)
		if err := s.blobs.Upload(ctx, key, in.Image, in.ContentType); err != nil {
			s.log.Error("image upload failed", "store_id", in.StoreID, "key", key, "error", err)
			return p, false, apperr.Upstream("failed to upload image", err)
		}
		imageURL = s.blobs.PublicURL(key)
	}

	p = models.Product{
		StoreID:     in.StoreID,
		Name:        in.Title,
		Description: in.Description,
		Price:       in.Price,
		Stock:       models.DefaultStock,
		ImageURL:    imageURL,
	}
	err = s.repo.CreateProduct(ctx, &p)
	if errors.Is(err, store.ErrDuplicate) {
		// created concurrently; the uploaded image is left unreferenced
		existing, err := s.repo.FindProduct(ctx, in.StoreID, in.Title)
		if err != nil {
			return models.Product{}, false, apperr.Upstream("failed to load product", err)
		}
		return *existing, false, nil
	}
	if err != nil {
		s.log.Error("product create failed", "store_id", in.StoreID, "title", in.Title, "error", err)
		return models.Product{}, false, apperr.Upstream("failed to create product", err)
	}
	return p, true, nil
}

func imageKey(storeID, imagePath string) string {
	if imagePath == "" {
		imagePath = "image"
	}
	return path.Join(storeID, path.Clean("/"+imagePath))
}
