package store

import (
	"context"

	"github.com/Galaktikon/trust-cart/internal/models"
)

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.conn(ctx).Create(u).Error)
}

// ClaimUser overwrites an unverified user with verified details. It returns
// ErrNotFound when there is no unverified row for u.ID.
func (r *Repository) ClaimUser(ctx context.Context, u *models.User) error {
	res := r.conn(ctx).
		Model(&models.User{}).
		Where("id = ? AND verified = ?", u.ID, false).
		Updates(map[string]any{
			"role":         u.Role,
			"display_name": u.DisplayName,
			"email":        u.Email,
			"verified":     true,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	u.Verified = true
	return nil
}

func (r *Repository) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.conn(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
