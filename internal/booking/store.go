package booking

import (
	"context"
	"time"

	"github.com/iliyamo/property-reservation/internal/model"
)

// Tx is the unit of work the service runs a mutation in.  Everything done
// through one Tx commits or rolls back together, and the Lock* methods hold
// their row until the end of the transaction so the check-then-write of a
// booking cannot interleave with another booking of the same room.
//
// Lookups report a missing row with found == false rather than an error.
type Tx interface {
	LockReservation(ctx context.Context, id uint64) (r model.Reservation, found bool, err error)
	LockRoom(ctx context.Context, id uint64) (room model.Room, found bool, err error)
	GuestExists(ctx context.Context, id uint64) (bool, error)

	// Overlapping returns the reservations of roomID whose stay overlaps
	// stay.  Implementations may return a superset; the caller filters.
	Overlapping(ctx context.Context, roomID uint64, stay DateRange) ([]model.Reservation, error)
	// HasBlocking reports whether a reservation of roomID other than
	// excludeID holds the room at instant at, as defined by HoldsRoomAt.
	HasBlocking(ctx context.Context, roomID, excludeID uint64, at time.Time) (bool, error)
	ConfirmationTaken(ctx context.Context, propertyID uint64, code string) (bool, error)

	// InsertReservation stores r and assigns r.ID.  A confirmation number
	// already used by the property yields ErrDuplicateConfirmation.
	InsertReservation(ctx context.Context, r *model.Reservation) error
	UpdateReservation(ctx context.Context, r *model.Reservation) error
	DeleteReservation(ctx context.Context, id uint64) error
	SetRoomStatus(ctx context.Context, roomID uint64, status model.RoomStatus) error
}

// Store is the persistence port of the booking service.  Read methods return
// ErrReservationNotFound for missing reservations.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetReservation(ctx context.Context, id uint64) (*model.ReservationDetail, error)
	FindByConfirmation(ctx context.Context, propertyID uint64, code string) (*model.ReservationDetail, error)
	ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error)
	AvailableRooms(ctx context.Context, propertyID uint64, stay DateRange) ([]model.Room, error)
}
