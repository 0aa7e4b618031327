package model

import "time"

// Reservation is a booking of one room for a date range.  The stay covers
// the half-open interval [CheckInDate, CheckOutDate).
//
// Fields map one to one to columns of the `reservations` table.  The
// nullable columns are pointers.  ConfirmationNumber is assigned once at
// creation and never changes.  CheckedInAt and CheckedOutAt are written the
// first time the reservation enters the matching status and are kept after
// that.
type Reservation struct {
	ID                 uint64     `json:"id" db:"id"`
	PropertyID         uint64     `json:"propertyId" db:"property_id"`
	RoomID             uint64     `json:"roomId" db:"room_id"`
	GuestID            uint64     `json:"guestId" db:"guest_id"`
	ConfirmationNumber string     `json:"confirmationNumber" db:"confirmation_number"`
	CheckInDate        time.Time  `json:"checkInDate" db:"check_in_date"`
	CheckOutDate       time.Time  `json:"checkOutDate" db:"check_out_date"`
	NumberOfGuests     int        `json:"numberOfGuests" db:"number_of_guests"`
	Rate               float64    `json:"rate" db:"rate"`
	TotalAmount        float64    `json:"totalAmount" db:"total_amount"`
	DepositAmount      *float64   `json:"depositAmount,omitempty" db:"deposit_amount"`
	Status             Status     `json:"status" db:"status"`
	Source             *Source    `json:"source,omitempty" db:"source"`
	SpecialRequests    *string    `json:"specialRequests,omitempty" db:"special_requests"`
	CheckedInAt        *time.Time `json:"checkedInAt,omitempty" db:"checked_in_at"`
	CheckedOutAt       *time.Time `json:"checkedOutAt,omitempty" db:"checked_out_at"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`
}

// ReservationDetail is a reservation enriched with snapshots of its guest
// and room, as returned by the read endpoints.
type ReservationDetail struct {
	Reservation
	Guest GuestSnapshot `json:"guest"`
	Room  RoomSnapshot  `json:"room"`
}

// ReservationFilter narrows ListReservations.  PropertyID is required; zero
// values for the other fields mean "any".  From/To select reservations whose
// stay overlaps [From, To).
type ReservationFilter struct {
	PropertyID uint64
	RoomID     uint64
	Statuses   []Status
	From       time.Time
	To         time.Time
	Page       int
	PageSize   int
}

// Limit and Offset translate the paging fields into SQL terms, clamping
// PageSize to [1, 200] with a default of 50.
func (f ReservationFilter) Limit() int {
	switch {
	case f.PageSize <= 0:
		return 50
	case f.PageSize > 200:
		return 200
	}
	return f.PageSize
}

func (f ReservationFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}
