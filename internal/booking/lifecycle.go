package booking

import (
	"time"

	"github.com/iliyamo/property-reservation/internal/model"
)

// RoomEffect is what a status change asks of the room a reservation holds.
type RoomEffect int

const (
	// RoomUnchanged leaves the room status alone.
	RoomUnchanged RoomEffect = iota
	// RoomOccupy marks the room occupied.
	RoomOccupy
	// RoomRelease recomputes the room from its remaining blocking stays.
	RoomRelease
)

func (e RoomEffect) String() string {
	switch e {
	case RoomOccupy:
		return "occupy"
	case RoomRelease:
		return "release"
	}
	return "unchanged"
}

// EffectOf returns the room effect of entering status to.
func EffectOf(to model.Status) RoomEffect {
	switch to {
	case model.StatusConfirmed, model.StatusCheckedIn:
		return RoomOccupy
	case model.StatusCheckedOut, model.StatusCancelled:
		return RoomRelease
	}
	return RoomUnchanged
}

// ApplyTransition moves r to status to at time now.  Any status may follow
// any other; only the value itself is checked.  Entering checked-in or
// checked-out stamps the matching timestamp unless it is already set, so
// re-entering a status keeps the original time.
func ApplyTransition(r *model.Reservation, to model.Status, now time.Time) (RoomEffect, error) {
	if !to.Valid() {
		return RoomUnchanged, newError(CodeValidation, "unknown status %q", string(to))
	}
	from := r.Status
	switch to {
	case model.StatusCheckedIn:
		if from != model.StatusCheckedIn && r.CheckedInAt == nil {
			t := now.UTC()
			r.CheckedInAt = &t
		}
	case model.StatusCheckedOut:
		if from != model.StatusCheckedOut && r.CheckedOutAt == nil {
			t := now.UTC()
			r.CheckedOutAt = &t
		}
	}
	r.Status = to
	return EffectOf(to), nil
}
