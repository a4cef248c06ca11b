package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// User.ID is the subject issued by the identity provider. Verified is set
// once the row was written by a caller holding a token for ID; an unverified
// row can be claimed by that caller.
type User struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Role        Role      `gorm:"type:varchar(16);not null" json:"role"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	Email       string    `gorm:"index" json:"email"`
	Verified    bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}
