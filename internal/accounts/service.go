// Package accounts registers users and assembles their profile.
package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Galaktikon/trust-cart/internal/apperr"
	"github.com/Galaktikon/trust-cart/internal/cart"
	"github.com/Galaktikon/trust-cart/internal/models"
	"github.com/Galaktikon/trust-cart/internal/notifier"
	"github.com/Galaktikon/trust-cart/internal/store"
)

const notifyTimeout = 15 * time.Second

// Registration is a sign-up request. Verified reports that UserID came from
// a verified token rather than an anonymous body.
type Registration struct {
	UserID      string
	Email       string
	DisplayName string
	Role        models.Role
	Verified    bool
}

type Profile struct {
	User      models.User       `json:"user"`
	Store     *models.Store     `json:"store,omitempty"`
	Cart      cart.Cart         `json:"cart"`
	BankLinks []models.BankLink `json:"bank_links"`
}

type Service struct {
	repo   *store.Repository
	carts  *cart.Reconciler
	notify notifier.Notifier
	log    *slog.Logger
}

func NewService(repo *store.Repository, carts *cart.Reconciler, n notifier.Notifier, log *slog.Logger) *Service {
	if n == nil {
		n = notifier.Nop{}
	}
	return &Service{repo: repo, carts: carts, notify: n, log: log}
}

// Register creates the user once. A repeat registration returns the stored
// user untouched with created == false, except that a verified caller takes
// over a row an anonymous caller wrote for its id. Only verified callers may
// register as admin.
func (s *Service) Register(ctx context.Context, reg Registration) (user models.User, created bool, err error) {
	reg.DisplayName = strings.TrimSpace(reg.DisplayName)
	if reg.UserID == "" {
		return user, false, apperr.Validation("user_id is required")
	}
	if len(reg.DisplayName) < 2 {
		return user, false, apperr.Validation("display_name is required")
	}
	if reg.Role == "" {
		reg.Role = models.RoleCustomer
	}
	if !reg.Role.Valid() {
		return user, false, apperr.Validation("role must be admin or customer")
	}
	if reg.Role == models.RoleAdmin && !reg.Verified {
		return user, false, apperr.Forbidden("admin registration requires a verified token")
	}

	existing, err := s.repo.FindUser(ctx, reg.UserID)
	if err == nil {
		return s.reuse(ctx, *existing, reg)
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.log.Error("user lookup failed", "user_id", reg.UserID, "error", err)
		return user, false, apperr.Upstream("failed to load user", err)
	}

	user = newUser(reg)
	err = s.repo.CreateUser(ctx, &user)
	if errors.Is(err, store.ErrDuplicate) {
		existing, err := s.repo.FindUser(ctx, reg.UserID)
		if err != nil {
			return models.User{}, false, apperr.Upstream("failed to load user", err)
		}
		return s.reuse(ctx, *existing, reg)
	}
	if err != nil {
		s.log.Error("user create failed", "user_id", reg.UserID, "error", err)
		return models.User{}, false, apperr.Upstream("failed to create user", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "role", user.Role, "verified", user.Verified)
	go s.sendWelcome(user)
	return user, true, nil
}

// reuse returns an existing row, replacing it when the caller is verified
// and the row is not.
func (s *Service) reuse(ctx context.Context, existing models.User, reg Registration) (models.User, bool, error) {
	if existing.Verified || !reg.Verified {
		return existing, false, nil
	}

	user := newUser(reg)
	user.CreatedAt = existing.CreatedAt
	err := s.repo.ClaimUser(ctx, &user)
	if errors.Is(err, store.ErrNotFound) {
		// claimed concurrently
		u, err := s.repo.FindUser(ctx, reg.UserID)
		if err != nil {
			return models.User{}, false, apperr.Upstream("failed to load user", err)
		}
		return *u, false, nil
	}
	if err != nil {
		s.log.Error("user claim failed", "user_id", reg.UserID, "error", err)
		return models.User{}, false, apperr.Upstream("failed to register user", err)
	}

	s.log.Warn("unverified registration replaced", "user_id", user.ID, "previous_role", existing.Role)
	go s.sendWelcome(user)
	return user, true, nil
}

func newUser(reg Registration) models.User {
	return models.User{
		ID:          reg.UserID,
		Role:        reg.Role,
		DisplayName: reg.DisplayName,
		Email:       reg.Email,
		Verified:    reg.Verified,
	}
}

func (s *Service) sendWelcome(user models.User) {
	if user.Email == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := s.notify.Welcome(ctx, user); err != nil {
		s.log.Warn("welcome email failed", "user_id", user.ID, "error", err)
	}
}

func (s *Service) User(ctx context.Context, userID string) (models.User, error) {
	u, err := s.repo.FindUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		s.log.Error("user lookup failed", "user_id", userID, "error", err)
		return models.User{}, apperr.Upstream("failed to load user", err)
	}
	return *u, nil
}

// Profile gathers the user, their store if they own one, their cart and
// linked banks.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{User: user}

	st, err := s.repo.FindStoreByMerchant(ctx, userID)
	switch {
	case err == nil:
		p.Store = st
	case !errors.Is(err, store.ErrNotFound):
		s.log.Error("store lookup failed", "merchant_id", userID, "error", err)
		return Profile{}, apperr.Upstream("failed to load store", err)
	}

	if p.Cart, err = s.carts.GetCart(ctx, userID); err != nil {
		return Profile{}, err
	}

	links, err := s.repo.ListBankLinks(ctx, userID)
	if err != nil {
		s.log.Error("bank link lookup failed", "user_id", userID, "error", err)
		return Profile{}, apperr.Upstream("failed to load bank links", err)
	}
	p.BankLinks = links
	return p, nil
}
