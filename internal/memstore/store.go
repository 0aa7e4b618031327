// Package memstore is an in-memory booking.Store.  A unit of work holds the
// store-wide lock for its whole duration and edits a private copy of the
// data that replaces the live copy only on success, so transactions are
// serialisable and failed ones leave no trace.  It backs the "memory" store
// driver and the service tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/model"
)

type state struct {
	reservations map[uint64]model.Reservation
	rooms        map[uint64]model.Room
	guests       map[uint64]model.Guest
	nextID       uint64
}

func (st *state) clone() *state {
	c := &state{
		reservations: make(map[uint64]model.Reservation, len(st.reservations)),
		rooms:        make(map[uint64]model.Room, len(st.rooms)),
		guests:       st.guests,
		nextID:       st.nextID,
	}
	for k, v := range st.reservations {
		c.reservations[k] = v
	}
	for k, v := range st.rooms {
		c.rooms[k] = v
	}
	return c
}

// Store keeps rooms, guests and reservations in maps.
type Store struct {
	mu   sync.RWMutex
	data *state
}

func New() *Store {
	return &Store{data: &state{
		reservations: map[uint64]model.Reservation{},
		rooms:        map[uint64]model.Room{},
		guests:       map[uint64]model.Guest{},
	}}
}

// AddRoom registers a room.  A zero Status defaults to available.
func (s *Store) AddRoom(r model.Room) {
	if r.Status == "" {
		r.Status = model.RoomAvailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.rooms[r.ID] = r
}

func (s *Store) AddGuest(g model.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// guests are shared between snapshots, so copy before writing
	guests := make(map[uint64]model.Guest, len(s.data.guests)+1)
	for k, v := range s.data.guests {
		guests[k] = v
	}
	guests[g.ID] = g
	s.data.guests = guests
}

// Room returns the current state of a room.
func (s *Store) Room(id uint64) (model.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data.rooms[id]
	return r, ok
}

func (s *Store) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(&tx{st: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) GetReservation(_ context.Context, id uint64) (*model.ReservationDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data.reservations[id]
	if !ok {
		return nil, booking.ErrReservationNotFound
	}
	d := s.data.detail(r)
	return &d, nil
}

func (s *Store) FindByConfirmation(_ context.Context, propertyID uint64, code string) (*model.ReservationDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.data.reservations {
		if r.PropertyID == propertyID && r.ConfirmationNumber == code {
			d := s.data.detail(r)
			return &d, nil
		}
	}
	return nil, booking.ErrReservationNotFound
}

// ListReservations orders by check-in date, then id.
func (s *Store) ListReservations(_ context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []model.Reservation
	for _, r := range s.data.reservations {
		if matches(r, f) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CheckInDate.Equal(b.CheckInDate) {
			return a.CheckInDate.Before(b.CheckInDate)
		}
		return a.ID < b.ID
	})

	off, lim := f.Offset(), f.Limit()
	out := make([]model.ReservationDetail, 0, lim)
	for i := off; i < len(matched) && len(out) < lim; i++ {
		out = append(out, s.data.detail(matched[i]))
	}
	return out, nil
}

func (s *Store) AvailableRooms(_ context.Context, propertyID uint64, stay booking.DateRange) ([]model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	busy := map[uint64]bool{}
	for _, r := range s.data.reservations {
		if r.PropertyID != propertyID || !r.Status.Blocking() {
			continue
		}
		if stay.Overlaps(booking.DateRange{CheckIn: r.CheckInDate, CheckOut: r.CheckOutDate}) {
			busy[r.RoomID] = true
		}
	}
	rooms := []model.Room{}
	for _, room := range s.data.rooms {
		if room.PropertyID == propertyID && room.IsActive && !busy[room.ID] {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].RoomNumber != rooms[j].RoomNumber {
			return rooms[i].RoomNumber < rooms[j].RoomNumber
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms, nil
}

func (st *state) detail(r model.Reservation) model.ReservationDetail {
	return model.ReservationDetail{
		Reservation: r,
		Guest:       st.guests[r.GuestID].Snapshot(),
		Room:        st.rooms[r.RoomID].Snapshot(),
	}
}

func matches(r model.Reservation, f model.ReservationFilter) bool {
	if r.PropertyID != f.PropertyID {
		return false
	}
	if f.RoomID != 0 && r.RoomID != f.RoomID {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, st := range f.Statuses {
			if r.Status == st {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if !f.To.IsZero() && !r.CheckInDate.Before(f.To) {
		return false
	}
	if !f.From.IsZero() && !r.CheckOutDate.After(f.From) {
		return false
	}
	return true
}
