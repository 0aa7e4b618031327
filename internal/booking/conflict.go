package booking

import (
	"time"

	"github.com/iliyamo/property-reservation/internal/model"
)

// DateRange is the half-open stay interval [CheckIn, CheckOut).
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Valid reports whether the range is non-empty.
func (d DateRange) Valid() bool {
	return d.CheckOut.After(d.CheckIn)
}

// Overlaps reports whether d and o share at least one night.  A stay that
// checks out on the day another checks in does not overlap it.
func (d DateRange) Overlaps(o DateRange) bool {
	return d.CheckIn.Before(o.CheckOut) && d.CheckOut.After(o.CheckIn)
}

func rangeOf(r model.Reservation) DateRange {
	return DateRange{CheckIn: r.CheckInDate, CheckOut: r.CheckOutDate}
}

// Conflicts reports whether any blocking reservation of roomID in existing
// overlaps want.  The reservation with id excludeID is skipped so an update
// never conflicts with itself; pass 0 to exclude nothing.
func Conflicts(existing []model.Reservation, roomID uint64, want DateRange, excludeID uint64) bool {
	return firstConflict(existing, roomID, want, excludeID) != nil
}

func firstConflict(existing []model.Reservation, roomID uint64, want DateRange, excludeID uint64) *model.Reservation {
	for i := range existing {
		r := &existing[i]
		if r.RoomID != roomID || !r.Status.Blocking() {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if rangeOf(*r).Overlaps(want) {
			return r
		}
	}
	return nil
}
