package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/property-reservation/internal/model"
)

const notifyTimeout = 3 * time.Second

// Service runs reservation operations against a Store.  Every mutation is a
// single Store.InTx unit: validation, the conflict check, the reservation
// write and the room status write either all happen or none do.
type Service struct {
	store           Store
	clock           Clock
	gen             *Generator
	notifier        Notifier
	log             Logger
	confirmAttempts int
}

func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("booking: nil store")
	}
	s := &Service{
		store:           store,
		clock:           RealClock{},
		gen:             NewGenerator(nil),
		notifier:        nopNotifier{},
		log:             defaultLogger(),
		confirmAttempts: 1,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CreateInput carries the fields of a new reservation.  Status defaults to
// pending when empty.
type CreateInput struct {
	PropertyID      uint64
	RoomID          uint64
	GuestID         uint64
	CheckIn         time.Time
	CheckOut        time.Time
	NumberOfGuests  int
	Rate            float64
	TotalAmount     float64
	DepositAmount   *float64
	Status          model.Status
	Source          *model.Source
	SpecialRequests *string
}

// Created identifies a newly stored reservation.
type Created struct {
	ID                 uint64 `json:"id"`
	ConfirmationNumber string `json:"confirmationNumber"`
}

// CreateReservation validates in and books the room.  Checks run in a fixed
// order and the first failure wins: date range, room existence and property,
// overlap with a blocking reservation, guest existence.
func (s *Service) CreateReservation(ctx context.Context, in CreateInput) (Created, error) {
	stay := DateRange{CheckIn: in.CheckIn.UTC(), CheckOut: in.CheckOut.UTC()}
	if !stay.Valid() {
		return Created{}, ErrInvalidDateRange
	}
	status := in.Status
	if status == "" {
		status = model.StatusPending
	}
	if !status.Valid() {
		return Created{}, newError(CodeValidation, "unknown status %q", string(status))
	}
	if in.Source != nil && !in.Source.Valid() {
		return Created{}, newError(CodeValidation, "unknown source %q", string(*in.Source))
	}

	now := s.clock.Now()
	var r model.Reservation
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := s.lockRoomOf(ctx, tx, in.RoomID, in.PropertyID); err != nil {
			return err
		}
		if err := s.checkConflict(ctx, tx, in.RoomID, stay, 0); err != nil {
			return err
		}
		if err := s.checkGuest(ctx, tx, in.GuestID); err != nil {
			return err
		}

		r = model.Reservation{
			PropertyID:      in.PropertyID,
			RoomID:          in.RoomID,
			GuestID:         in.GuestID,
			CheckInDate:     stay.CheckIn,
			CheckOutDate:    stay.CheckOut,
			NumberOfGuests:  in.NumberOfGuests,
			Rate:            in.Rate,
			TotalAmount:     in.TotalAmount,
			DepositAmount:   in.DepositAmount,
			Source:          in.Source,
			SpecialRequests: in.SpecialRequests,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		effect, err := ApplyTransition(&r, status, now)
		if err != nil {
			return err
		}
		code, err := s.confirmationFor(ctx, tx, in.PropertyID, now)
		if err != nil {
			return err
		}
		r.ConfirmationNumber = code
		if err := tx.InsertReservation(ctx, &r); err != nil {
			return err
		}
		// A new reservation only ever claims its room; creating one already
		// cancelled or checked out leaves the room as it is.
		if effect == RoomOccupy {
			return s.syncRoom(ctx, tx, r.RoomID, RoomOccupy, r.ID, now)
		}
		return nil
	})
	if err != nil {
		return Created{}, err
	}

	s.log.Info("reservation created",
		"reservation_id", r.ID,
		"property_id", r.PropertyID,
		"room_id", r.RoomID,
		"status", r.Status,
		"confirmation_number", r.ConfirmationNumber,
	)
	s.notify(ctx, Event{Type: EventCreated, Reservation: r, OccurredAt: now})
	return Created{ID: r.ID, ConfirmationNumber: r.ConfirmationNumber}, nil
}

// UpdateInput is a patch; nil fields keep their stored value.  The property
// of a reservation cannot be changed.
type UpdateInput struct {
	RoomID          *uint64
	GuestID         *uint64
	CheckIn         *time.Time
	CheckOut        *time.Time
	NumberOfGuests  *int
	Rate            *float64
	TotalAmount     *float64
	DepositAmount   *float64
	Status          *model.Status
	Source          *model.Source
	SpecialRequests *string
}

// UpdateReservation applies in to reservation id.  The conflict check is
// repeated, excluding the reservation itself, when the room or dates change
// or when the reservation starts blocking its room.
func (s *Service) UpdateReservation(ctx context.Context, id uint64, in UpdateInput) (model.Reservation, error) {
	if in.Status != nil && !in.Status.Valid() {
		return model.Reservation{}, newError(CodeValidation, "unknown status %q", string(*in.Status))
	}
	if in.Source != nil && !in.Source.Valid() {
		return model.Reservation{}, newError(CodeValidation, "unknown source %q", string(*in.Source))
	}

	now := s.clock.Now()
	var cur, next model.Reservation
	err := s.store.InTx(ctx, func(tx Tx) error {
		var found bool
		var err error
		cur, found, err = tx.LockReservation(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return ErrReservationNotFound
		}
		next = cur
		patch(&next, in)

		stay := rangeOf(next)
		if !stay.Valid() {
			return ErrInvalidDateRange
		}

		roomChanged := next.RoomID != cur.RoomID
		if _, err := s.lockRooms(ctx, tx, next.RoomID, cur.RoomID, next.PropertyID); err != nil {
			return err
		}

		datesChanged := !next.CheckInDate.Equal(cur.CheckInDate) || !next.CheckOutDate.Equal(cur.CheckOutDate)
		startsBlocking := in.Status != nil && in.Status.Blocking() && !cur.Status.Blocking()
		if roomChanged || datesChanged || startsBlocking {
			if err := s.checkConflict(ctx, tx, next.RoomID, stay, id); err != nil {
				return err
			}
		}
		if in.GuestID != nil {
			if err := s.checkGuest(ctx, tx, next.GuestID); err != nil {
				return err
			}
		}

		effect := RoomUnchanged
		if in.Status != nil {
			if effect, err = ApplyTransition(&next, *in.Status, now); err != nil {
				return err
			}
		} else if roomChanged && EffectOf(next.Status) == RoomOccupy {
			effect = RoomOccupy
		}
		next.UpdatedAt = now
		if err := tx.UpdateReservation(ctx, &next); err != nil {
			return err
		}

		if roomChanged && cur.Status.Blocking() {
			if err := s.syncRoom(ctx, tx, cur.RoomID, RoomRelease, id, now); err != nil {
				return err
			}
		}
		return s.syncRoom(ctx, tx, next.RoomID, effect, id, now)
	})
	if err != nil {
		return model.Reservation{}, err
	}

	s.log.Info("reservation updated",
		"reservation_id", next.ID,
		"room_id", next.RoomID,
		"status_from", cur.Status,
		"status_to", next.Status,
	)
	s.notify(ctx, Event{Type: EventUpdated, Reservation: next, PreviousStatus: cur.Status, OccurredAt: now})
	return next, nil
}

// DeleteReservation removes reservation id.  Stays that are in progress or
// completed cannot be deleted.  When the room was occupied its status is
// recomputed from the reservations that remain.
func (s *Service) DeleteReservation(ctx context.Context, id uint64) error {
	now := s.clock.Now()
	var cur model.Reservation
	err := s.store.InTx(ctx, func(tx Tx) error {
		var found bool
		var err error
		cur, found, err = tx.LockReservation(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return ErrReservationNotFound
		}
		if cur.Status == model.StatusCheckedIn || cur.Status == model.StatusCheckedOut {
			return newError(CodeStateError, "cannot delete a %s reservation", cur.Status)
		}
		room, roomFound, err := tx.LockRoom(ctx, cur.RoomID)
		if err != nil {
			return err
		}
		if err := tx.DeleteReservation(ctx, id); err != nil {
			return err
		}
		if roomFound && room.Status == model.RoomOccupied {
			return s.syncRoom(ctx, tx, room.ID, RoomRelease, id, now)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("reservation deleted", "reservation_id", id, "room_id", cur.RoomID, "status", cur.Status)
	s.notify(ctx, Event{Type: EventDeleted, Reservation: cur, PreviousStatus: cur.Status, OccurredAt: now})
	return nil
}

func (s *Service) GetReservation(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	return s.store.GetReservation(ctx, id)
}

// FindByConfirmation looks a reservation up by its confirmation number within
// a property.
func (s *Service) FindByConfirmation(ctx context.Context, propertyID uint64, code string) (*model.ReservationDetail, error) {
	if propertyID == 0 || code == "" {
		return nil, newError(CodeValidation, "property id and confirmation number are required")
	}
	return s.store.FindByConfirmation(ctx, propertyID, code)
}

// ListReservations returns the reservations of f.PropertyID matching f.
func (s *Service) ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error) {
	if f.PropertyID == 0 {
		return nil, newError(CodeValidation, "property id is required")
	}
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, newError(CodeValidation, "unknown status %q", string(st))
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.To.After(f.From) {
		return nil, ErrInvalidDateRange
	}
	return s.store.ListReservations(ctx, f)
}

// AvailableRooms lists the active rooms of a property that no blocking
// reservation holds during [checkIn, checkOut).
func (s *Service) AvailableRooms(ctx context.Context, propertyID uint64, checkIn, checkOut time.Time) ([]model.Room, error) {
	stay := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if !stay.Valid() {
		return nil, ErrInvalidDateRange
	}
	if propertyID == 0 {
		return nil, newError(CodeValidation, "property id is required")
	}
	return s.store.AvailableRooms(ctx, propertyID, stay)
}

func (s *Service) lockRoomOf(ctx context.Context, tx Tx, roomID, propertyID uint64) (model.Room, error) {
	room, found, err := tx.LockRoom(ctx, roomID)
	if err != nil {
		return model.Room{}, err
	}
	if !found {
		return model.Room{}, ErrRoomNotFound
	}
	if room.PropertyID != propertyID {
		return model.Room{}, ErrPropertyMismatch
	}
	return room, nil
}

// lockRooms locks target and, when different, previous in ascending id order
// and validates target against the property.
func (s *Service) lockRooms(ctx context.Context, tx Tx, target, previous, propertyID uint64) (model.Room, error) {
	ids := []uint64{target}
	if previous != target {
		ids = append(ids, previous)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	var room model.Room
	for _, id := range ids {
		if id != target {
			if _, _, err := tx.LockRoom(ctx, id); err != nil {
				return model.Room{}, err
			}
			continue
		}
		r, err := s.lockRoomOf(ctx, tx, id, propertyID)
		if err != nil {
			return model.Room{}, err
		}
		room = r
	}
	return room, nil
}

func (s *Service) checkConflict(ctx context.Context, tx Tx, roomID uint64, stay DateRange, excludeID uint64) error {
	existing, err := tx.Overlapping(ctx, roomID, stay)
	if err != nil {
		return err
	}
	if c := firstConflict(existing, roomID, stay, excludeID); c != nil {
		s.log.Debug("room conflict",
			"room_id", roomID,
			"conflicting_reservation_id", c.ID,
			"check_in", stay.CheckIn,
			"check_out", stay.CheckOut,
		)
		return ErrRoomConflict
	}
	return nil
}

func (s *Service) checkGuest(ctx context.Context, tx Tx, guestID uint64) error {
	ok, err := tx.GuestExists(ctx, guestID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGuestNotFound
	}
	return nil
}

func (s *Service) confirmationFor(ctx context.Context, tx Tx, propertyID uint64, now time.Time) (string, error) {
	for attempt := 1; ; attempt++ {
		code, err := s.gen.Generate(now)
		if err != nil {
			return "", err
		}
		if s.confirmAttempts <= 1 {
			return code, nil
		}
		taken, err := tx.ConfirmationTaken(ctx, propertyID, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		if attempt >= s.confirmAttempts {
			return "", ErrDuplicateConfirmation
		}
	}
}

func (s *Service) notify(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.log.Warn("reservation event not published",
			"event", ev.Type,
			"reservation_id", ev.Reservation.ID,
			"error", err,
		)
	}
}

func patch(r *model.Reservation, in UpdateInput) {
	if in.RoomID != nil {
		r.RoomID = *in.RoomID
	}
	if in.GuestID != nil {
		r.GuestID = *in.GuestID
	}
	if in.CheckIn != nil {
		r.CheckInDate = in.CheckIn.UTC()
	}
	if in.CheckOut != nil {
		r.CheckOutDate = in.CheckOut.UTC()
	}
	if in.NumberOfGuests != nil {
		r.NumberOfGuests = *in.NumberOfGuests
	}
	if in.Rate != nil {
		r.Rate = *in.Rate
	}
	if in.TotalAmount != nil {
		r.TotalAmount = *in.TotalAmount
	}
	if in.DepositAmount != nil {
		r.DepositAmount = in.DepositAmount
	}
	if in.Source != nil {
		r.Source = in.Source
	}
	if in.SpecialRequests != nil {
		r.SpecialRequests = in.SpecialRequests
	}
}
