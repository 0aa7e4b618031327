package booking

import (
	"context"
	"time"

	"github.com/iliyamo/property-reservation/internal/model"
)

type EventType string

const (
	EventCreated EventType = "reservation.created"
	EventUpdated EventType = "reservation.updated"
	EventDeleted EventType = "reservation.deleted"
)

// Event describes a committed reservation change.  PreviousStatus is empty
// for creations.
type Event struct {
	Type           EventType
	Reservation    model.Reservation
	PreviousStatus model.Status
	OccurredAt     time.Time
}

// Notifier receives events after the transaction that produced them has
// committed.  A failing notifier never undoes the booking.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) error { return nil }
