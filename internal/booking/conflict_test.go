package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/model"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func stay(in, out int) booking.DateRange {
	return booking.DateRange{CheckIn: day(in), CheckOut: day(out)}
}

func reservation(id, roomID uint64, in, out int, st model.Status) model.Reservation {
	return model.Reservation{ID: id, RoomID: roomID, CheckInDate: day(in), CheckOutDate: day(out), Status: st}
}

func Test_DateRange_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b booking.DateRange
		want bool
	}{
		{name: "partial_overlap", a: stay(10, 15), b: stay(12, 20), want: true},
		{name: "back_to_back", a: stay(10, 15), b: stay(15, 20), want: false},
		{name: "back_to_back_reversed", a: stay(15, 20), b: stay(10, 15), want: false},
		{name: "contained", a: stay(10, 20), b: stay(12, 13), want: true},
		{name: "identical", a: stay(10, 11), b: stay(10, 11), want: true},
		{name: "disjoint", a: stay(1, 3), b: stay(5, 7), want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a))
		})
	}
}

func Test_DateRange_Valid(t *testing.T) {
	assert.True(t, stay(10, 11).Valid())
	assert.False(t, stay(10, 10).Valid())
	assert.False(t, stay(11, 10).Valid())
}

func Test_Conflicts_OnlyBlockingStatusesCount(t *testing.T) {
	want := stay(12, 20)
	for _, st := range model.Statuses {
		existing := []model.Reservation{reservation(1, 101, 10, 15, st)}
		assert.Equal(t, st.Blocking(), booking.Conflicts(existing, 101, want, 0), "status %s", st)
	}
}

func Test_Conflicts_IgnoresOtherRooms(t *testing.T) {
	existing := []model.Reservation{reservation(1, 102, 10, 15, model.StatusConfirmed)}
	assert.False(t, booking.Conflicts(existing, 101, stay(10, 15), 0))
}

func Test_Conflicts_ExcludesSelf(t *testing.T) {
	existing := []model.Reservation{reservation(1, 101, 10, 15, model.StatusConfirmed)}

	assert.True(t, booking.Conflicts(existing, 101, stay(11, 16), 0))
	assert.False(t, booking.Conflicts(existing, 101, stay(11, 16), 1))
}

func Test_Conflicts_BoundaryScenario(t *testing.T) {
	existing := []model.Reservation{reservation(1, 101, 10, 15, model.StatusConfirmed)}

	assert.True(t, booking.Conflicts(existing, 101, stay(12, 20), 0))
	assert.False(t, booking.Conflicts(existing, 101, stay(15, 20), 0))
}
