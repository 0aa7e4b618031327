package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// GuestRepo answers existence checks against the `guests` table.
type GuestRepo struct {
	db *sqlx.DB
}

func NewGuestRepo(db *sqlx.DB) *GuestRepo {
	return &GuestRepo{db: db}
}

// ExistsTx reports whether a guest with id exists, reading through tx so the
// check sees the same data as the rest of the booking.
func (r *GuestRepo) ExistsTx(ctx context.Context, tx *sqlx.Tx, id uint64) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM guests WHERE id = ?)`, id)
	return exists, err
}
