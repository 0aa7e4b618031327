package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/model"
)

// Store is the MySQL implementation of booking.Store.  Each unit of work is
// a READ COMMITTED transaction; bookings of the same room serialise on the
// room row lock taken by LockRoom.
type Store struct {
	db           *sqlx.DB
	Reservations *ReservationRepo
	Rooms        *RoomRepo
	Guests       *GuestRepo
}

// NewStore wraps an open MySQL handle.
func NewStore(db *sql.DB) *Store {
	x := sqlx.NewDb(db, "mysql")
	return &Store{
		db:           x,
		Reservations: NewReservationRepo(x),
		Rooms:        NewRoomRepo(x),
		Guests:       NewGuestRepo(x),
	}
}

func (s *Store) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&mysqlTx{tx: tx, s: s}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func (s *Store) GetReservation(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	d, err := s.Reservations.GetDetail(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, booking.ErrReservationNotFound
	}
	return d, err
}

func (s *Store) FindByConfirmation(ctx context.Context, propertyID uint64, code string) (*model.ReservationDetail, error) {
	d, err := s.Reservations.GetDetailByConfirmation(ctx, propertyID, code)
	if errors.Is(err, ErrNotFound) {
		return nil, booking.ErrReservationNotFound
	}
	return d, err
}

func (s *Store) ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error) {
	return s.Reservations.List(ctx, f)
}

func (s *Store) AvailableRooms(ctx context.Context, propertyID uint64, stay booking.DateRange) ([]model.Room, error) {
	return s.Rooms.ListAvailable(ctx, propertyID, stay)
}

// mysqlTx adapts the repositories' Tx methods to booking.Tx.
type mysqlTx struct {
	tx *sqlx.Tx
	s  *Store
}

func (t *mysqlTx) LockReservation(ctx context.Context, id uint64) (model.Reservation, bool, error) {
	r, err := t.s.Reservations.GetForUpdateTx(ctx, t.tx, id)
	return found(r, err)
}

func (t *mysqlTx) LockRoom(ctx context.Context, id uint64) (model.Room, bool, error) {
	r, err := t.s.Rooms.GetForUpdateTx(ctx, t.tx, id)
	return found(r, err)
}

func (t *mysqlTx) GuestExists(ctx context.Context, id uint64) (bool, error) {
	return t.s.Guests.ExistsTx(ctx, t.tx, id)
}

func (t *mysqlTx) Overlapping(ctx context.Context, roomID uint64, stay booking.DateRange) ([]model.Reservation, error) {
	return t.s.Reservations.FindOverlappingTx(ctx, t.tx, roomID, stay)
}

func (t *mysqlTx) HasBlocking(ctx context.Context, roomID, excludeID uint64, at time.Time) (bool, error) {
	return t.s.Reservations.HasBlockingTx(ctx, t.tx, roomID, excludeID, at)
}

func (t *mysqlTx) ConfirmationTaken(ctx context.Context, propertyID uint64, code string) (bool, error) {
	return t.s.Reservations.ConfirmationExistsTx(ctx, t.tx, propertyID, code)
}

func (t *mysqlTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	return t.s.Reservations.CreateTx(ctx, t.tx, r)
}

func (t *mysqlTx) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	return t.s.Reservations.UpdateTx(ctx, t.tx, r)
}

func (t *mysqlTx) DeleteReservation(ctx context.Context, id uint64) error {
	return t.s.Reservations.DeleteTx(ctx, t.tx, id)
}

func (t *mysqlTx) SetRoomStatus(ctx context.Context, roomID uint64, status model.RoomStatus) error {
	return t.s.Rooms.SetStatusTx(ctx, t.tx, roomID, status)
}

func found[T any](v T, err error) (T, bool, error) {
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}
