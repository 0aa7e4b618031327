package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/model"
	"github.com/iliyamo/property-reservation/internal/repository"
)

var reservationCols = []string{
	"id", "property_id", "room_id", "guest_id", "confirmation_number",
	"check_in_date", "check_out_date", "number_of_guests", "rate", "total_amount",
	"deposit_amount", "status", "source", "special_requests",
	"checked_in_at", "checked_out_at", "created_at", "updated_at",
}

var roomCols = []string{"id", "property_id", "room_number", "room_type", "status", "is_active"}

func newMockStore(t *testing.T) (*repository.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewStore(db), mock
}

func reservationRow(id, roomID uint64, status model.Status) *sqlmock.Rows {
	created := time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(reservationCols).AddRow(
		id, 1, roomID, 7, "RES-250101-0001",
		time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		2, 120.0, 600.0,
		nil, string(status), nil, nil,
		nil, nil, created, created,
	)
}

func roomRow(id uint64, status model.RoomStatus) *sqlmock.Rows {
	return sqlmock.NewRows(roomCols).AddRow(id, 1, "R", "", string(status), true)
}

func Test_InTx_RollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \?`).
		WithArgs("occupied", 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	ctx := context.Background()
	err := store.InTx(ctx, func(tx booking.Tx) error {
		if err := tx.SetRoomStatus(ctx, 101, model.RoomOccupied); err != nil {
			return err
		}
		return booking.ErrRoomConflict
	})
	assert.ErrorIs(t, err, booking.ErrRoomConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_InTx_CommitFailureIsReported(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

	err := store.InTx(context.Background(), func(booking.Tx) error { return nil })
	assert.ErrorContains(t, err, "commit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Update_MovingRoomLocksInIDOrder(t *testing.T) {
	store, mock := newMockStore(t)
	svc, err := booking.NewService(store)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations WHERE id = \? FOR UPDATE`).
		WithArgs(5).
		WillReturnRows(reservationRow(5, 102, model.StatusConfirmed))
	mock.ExpectQuery(`FROM rooms WHERE id = \? FOR UPDATE`).
		WithArgs(101).
		WillReturnRows(roomRow(101, model.RoomAvailable))
	mock.ExpectQuery(`FROM rooms WHERE id = \? FOR UPDATE`).
		WithArgs(102).
		WillReturnRows(roomRow(102, model.RoomOccupied))
	mock.ExpectQuery(`FROM reservations WHERE room_id = \? AND NOT`).
		WillReturnRows(sqlmock.NewRows(reservationCols))
	mock.ExpectExec(`UPDATE reservations SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM reservations`).
		WithArgs(102, 5, "checked-in", "confirmed", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE rooms SET status`).
		WithArgs("available", 102).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rooms SET status`).
		WithArgs("occupied", 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	room := uint64(101)
	got, err := svc.UpdateReservation(context.Background(), 5, booking.UpdateInput{RoomID: &room})
	require.NoError(t, err)
	assert.Equal(t, room, got.RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Delete_RefusedStayRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	svc, err := booking.NewService(store)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations WHERE id = \? FOR UPDATE`).
		WithArgs(9).
		WillReturnRows(reservationRow(9, 101, model.StatusCheckedIn))
	mock.ExpectRollback()

	err = svc.DeleteReservation(context.Background(), 9)
	assert.ErrorIs(t, err, booking.ErrStateError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
