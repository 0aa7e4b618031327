// Package queue carries reservation lifecycle events over RabbitMQ: the
// payload type, a publisher used by the booking service and the consumer
// that appends events to a log file.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/property-reservation/internal/booking"
)

// ReservationEvent is the message body published after a reservation
// change commits.  It is self-contained so consumers need not query the
// primary database.
type ReservationEvent struct {
	EventID            string  `json:"event_id"`
	Type               string  `json:"type"`
	ReservationID      uint64  `json:"reservation_id"`
	PropertyID         uint64  `json:"property_id"`
	RoomID             uint64  `json:"room_id"`
	GuestID            uint64  `json:"guest_id"`
	ConfirmationNumber string  `json:"confirmation_number"`
	CheckInDate        string  `json:"check_in_date"`
	CheckOutDate       string  `json:"check_out_date"`
	Status             string  `json:"status"`
	PreviousStatus     string  `json:"previous_status,omitempty"`
	TotalAmount        float64 `json:"total_amount"`
	OccurredAt         string  `json:"occurred_at"`
}

const dateLayout = "2006-01-02"

// FromBooking converts a booking event into its wire form with a fresh id.
func FromBooking(ev booking.Event) ReservationEvent {
	r := ev.Reservation
	return ReservationEvent{
		EventID:            uuid.NewString(),
		Type:               string(ev.Type),
		ReservationID:      r.ID,
		PropertyID:         r.PropertyID,
		RoomID:             r.RoomID,
		GuestID:            r.GuestID,
		ConfirmationNumber: r.ConfirmationNumber,
		CheckInDate:        r.CheckInDate.Format(dateLayout),
		CheckOutDate:       r.CheckOutDate.Format(dateLayout),
		Status:             string(r.Status),
		PreviousStatus:     string(ev.PreviousStatus),
		TotalAmount:        r.TotalAmount,
		OccurredAt:         ev.OccurredAt.UTC().Format(time.RFC3339),
	}
}
