package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/model"
)

// tx works on a private copy of the store state.  The store lock is held by
// InTx, so Lock* only need to read.
type tx struct {
	st *state
}

func (t *tx) LockReservation(_ context.Context, id uint64) (model.Reservation, bool, error) {
	r, ok := t.st.reservations[id]
	return r, ok, nil
}

func (t *tx) LockRoom(_ context.Context, id uint64) (model.Room, bool, error) {
	r, ok := t.st.rooms[id]
	return r, ok, nil
}

func (t *tx) GuestExists(_ context.Context, id uint64) (bool, error) {
	_, ok := t.st.guests[id]
	return ok, nil
}

func (t *tx) Overlapping(_ context.Context, roomID uint64, stay booking.DateRange) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range t.st.reservations {
		if r.RoomID != roomID {
			continue
		}
		if stay.Overlaps(booking.DateRange{CheckIn: r.CheckInDate, CheckOut: r.CheckOutDate}) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *tx) HasBlocking(_ context.Context, roomID, excludeID uint64, at time.Time) (bool, error) {
	for _, r := range t.st.reservations {
		if r.RoomID == roomID && r.ID != excludeID && booking.HoldsRoomAt(r, at) {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) ConfirmationTaken(_ context.Context, propertyID uint64, code string) (bool, error) {
	for _, r := range t.st.reservations {
		if r.PropertyID == propertyID && r.ConfirmationNumber == code {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	taken, _ := t.ConfirmationTaken(ctx, r.PropertyID, r.ConfirmationNumber)
	if taken {
		return booking.ErrDuplicateConfirmation
	}
	t.st.nextID++
	r.ID = t.st.nextID
	t.st.reservations[r.ID] = *r
	return nil
}

func (t *tx) UpdateReservation(_ context.Context, r *model.Reservation) error {
	if _, ok := t.st.reservations[r.ID]; !ok {
		return booking.ErrReservationNotFound
	}
	t.st.reservations[r.ID] = *r
	return nil
}

func (t *tx) DeleteReservation(_ context.Context, id uint64) error {
	delete(t.st.reservations, id)
	return nil
}

func (t *tx) SetRoomStatus(_ context.Context, roomID uint64, status model.RoomStatus) error {
	room, ok := t.st.rooms[roomID]
	if !ok {
		return fmt.Errorf("set status of room %d: %w", roomID, booking.ErrRoomNotFound)
	}
	room.Status = status
	t.st.rooms[roomID] = room
	return nil
}
