package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/model"
)

const selectRoom = `SELECT id, property_id, room_number, COALESCE(room_type, '') AS room_type, status, is_active FROM rooms`

// RoomRepo reads rooms and maintains their occupancy status.  Room records
// themselves are managed elsewhere; this repository never creates them.
type RoomRepo struct {
	db *sqlx.DB
}

func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	var room model.Room
	err := r.db.GetContext(ctx, &room, selectRoom+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return room, ErrNotFound
	}
	return room, err
}

// GetForUpdateTx reads a room and holds its row lock until tx ends.  The
// lock serialises bookings of the same room.
func (r *RoomRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.Room, error) {
	var room model.Room
	err := tx.GetContext(ctx, &room, selectRoom+` WHERE id = ? FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return room, ErrNotFound
	}
	return room, err
}

func (r *RoomRepo) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uint64, status model.RoomStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE rooms SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// ListAvailable returns the active rooms of a property that no confirmed or
// checked-in reservation holds during stay.
func (r *RoomRepo) ListAvailable(ctx context.Context, propertyID uint64, stay booking.DateRange) ([]model.Room, error) {
	d := goqu.Dialect(dialectMySQL)
	busy := d.From(goqu.T("reservations").As("r")).
		Select(goqu.I("r.room_id")).
		Where(
			goqu.I("r.property_id").Eq(propertyID),
			goqu.I("r.status").In(blockingStatuses...),
			goqu.I("r.check_in_date").Lt(stay.CheckOut),
			goqu.I("r.check_out_date").Gt(stay.CheckIn),
		)
	q, args, err := d.From(goqu.T("rooms").As("rm")).
		Select(
			goqu.I("rm.id"),
			goqu.I("rm.property_id"),
			goqu.I("rm.room_number"),
			goqu.COALESCE(goqu.I("rm.room_type"), "").As("room_type"),
			goqu.I("rm.status"),
			goqu.I("rm.is_active"),
		).
		Where(
			goqu.I("rm.property_id").Eq(propertyID),
			goqu.I("rm.is_active").IsTrue(),
			goqu.I("rm.id").NotIn(busy),
		).
		Order(goqu.I("rm.room_number").Asc(), goqu.I("rm.id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build availability query: %w", err)
	}
	rooms := []model.Room{}
	if err := r.db.SelectContext(ctx, &rooms, q, args...); err != nil {
		return nil, err
	}
	return rooms, nil
}
