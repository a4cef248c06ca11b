// Package store is the record store: GORM-backed reads and writes for every
// entity, plus transactions.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Repository struct {
	db *gorm.DB
	tx bool
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Tx runs fn inside a transaction. The Repository handed to fn must be used
// for every call that belongs to the transaction.
func (r *Repository) Tx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx, tx: true})
	})
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// forUpdate adds SELECT ... FOR UPDATE inside a transaction. SQLite drops
// the clause; it serializes writers anyway.
func (r *Repository) forUpdate(ctx context.Context) *gorm.DB {
	if !r.tx {
		return r.conn(ctx)
	}
	return r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
