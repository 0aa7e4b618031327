package booking

import (
	"context"
	"time"

	"github.com/iliyamo/property-reservation/internal/model"
)

// HoldsRoomAt reports whether r keeps its room occupied at instant at.  A
// checked-in guest holds the room until checked out, whatever the dates; a
// confirmed stay holds it only while [checkIn, checkOut) covers at.
func HoldsRoomAt(r model.Reservation, at time.Time) bool {
	switch r.Status {
	case model.StatusCheckedIn:
		return true
	case model.StatusConfirmed:
		return !at.Before(r.CheckInDate) && at.Before(r.CheckOutDate)
	}
	return false
}

// syncRoom writes the room status implied by effect.  Release does not blindly
// free the room: it stays occupied while another reservation holds it at now.
// Future bookings do not.
func (s *Service) syncRoom(ctx context.Context, tx Tx, roomID uint64, effect RoomEffect, reservationID uint64, now time.Time) error {
	switch effect {
	case RoomOccupy:
		return tx.SetRoomStatus(ctx, roomID, model.RoomOccupied)
	case RoomRelease:
		held, err := tx.HasBlocking(ctx, roomID, reservationID, now)
		if err != nil {
			return err
		}
		if held {
			return tx.SetRoomStatus(ctx, roomID, model.RoomOccupied)
		}
		return tx.SetRoomStatus(ctx, roomID, model.RoomAvailable)
	}
	return nil
}
