package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql" // dialect registration
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/model"
)

const dialectMySQL = "mysql"

var reservationColumns = []string{
	"id", "property_id", "room_id", "guest_id", "confirmation_number",
	"check_in_date", "check_out_date", "number_of_guests", "rate", "total_amount",
	"deposit_amount", "status", "source", "special_requests",
	"checked_in_at", "checked_out_at", "created_at", "updated_at",
}

const selectReservation = `SELECT id, property_id, room_id, guest_id, confirmation_number,
       check_in_date, check_out_date, number_of_guests, rate, total_amount,
       deposit_amount, status, source, special_requests,
       checked_in_at, checked_out_at, created_at, updated_at
  FROM reservations`

// blockingStatuses are the statuses that hold a room, as SQL arguments.
var blockingStatuses = []any{string(model.StatusConfirmed), string(model.StatusCheckedIn)}

// ReservationRepo manages the `reservations` table.
type ReservationRepo struct {
	db *sqlx.DB
}

func NewReservationRepo(db *sqlx.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// detailRow is a reservation joined with its guest and room.
type detailRow struct {
	model.Reservation
	GuestFirstName string           `db:"guest_first_name"`
	GuestLastName  string           `db:"guest_last_name"`
	GuestEmail     sql.NullString   `db:"guest_email"`
	GuestPhone     sql.NullString   `db:"guest_phone"`
	RoomNumber     string           `db:"room_number"`
	RoomType       sql.NullString   `db:"room_type"`
	RoomStatus     model.RoomStatus `db:"room_status"`
}

func (d detailRow) detail() model.ReservationDetail {
	return model.ReservationDetail{
		Reservation: d.Reservation,
		Guest: model.GuestSnapshot{
			ID:        d.GuestID,
			FirstName: d.GuestFirstName,
			LastName:  d.GuestLastName,
			Email:     d.GuestEmail.String,
			Phone:     d.GuestPhone.String,
		},
		Room: model.RoomSnapshot{
			ID:         d.RoomID,
			RoomNumber: d.RoomNumber,
			RoomType:   d.RoomType.String,
			Status:     d.RoomStatus,
		},
	}
}

func detailQuery() *goqu.SelectDataset {
	cols := make([]any, 0, len(reservationColumns)+7)
	for _, c := range reservationColumns {
		cols = append(cols, goqu.I("r."+c))
	}
	cols = append(cols,
		goqu.I("g.first_name").As("guest_first_name"),
		goqu.I("g.last_name").As("guest_last_name"),
		goqu.I("g.email").As("guest_email"),
		goqu.I("g.phone").As("guest_phone"),
		goqu.I("rm.room_number").As("room_number"),
		goqu.I("rm.room_type").As("room_type"),
		goqu.I("rm.status").As("room_status"),
	)
	return goqu.Dialect(dialectMySQL).
		From(goqu.T("reservations").As("r")).
		Join(goqu.T("guests").As("g"), goqu.On(goqu.I("g.id").Eq(goqu.I("r.guest_id")))).
		Join(goqu.T("rooms").As("rm"), goqu.On(goqu.I("rm.id").Eq(goqu.I("r.room_id")))).
		Select(cols...).
		Prepared(true)
}

// GetDetail returns one reservation with guest and room snapshots.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	return r.getDetailWhere(ctx, goqu.I("r.id").Eq(id))
}

// GetDetailByConfirmation looks a reservation up by property and code.
func (r *ReservationRepo) GetDetailByConfirmation(ctx context.Context, propertyID uint64, code string) (*model.ReservationDetail, error) {
	return r.getDetailWhere(ctx,
		goqu.I("r.property_id").Eq(propertyID),
		goqu.I("r.confirmation_number").Eq(code),
	)
}

func (r *ReservationRepo) getDetailWhere(ctx context.Context, where ...goqu.Expression) (*model.ReservationDetail, error) {
	q, args, err := detailQuery().Where(where...).Limit(1).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build reservation query: %w", err)
	}
	var row detailRow
	if err := r.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d := row.detail()
	return &d, nil
}

// List returns the reservations matching f ordered by check-in date.
func (r *ReservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error) {
	q, args, err := listQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build reservation list: %w", err)
	}
	var rows []detailRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]model.ReservationDetail, len(rows))
	for i := range rows {
		out[i] = rows[i].detail()
	}
	return out, nil
}

func listQuery(f model.ReservationFilter) (string, []any, error) {
	ds := detailQuery().Where(goqu.I("r.property_id").Eq(f.PropertyID))
	if f.RoomID != 0 {
		ds = ds.Where(goqu.I("r.room_id").Eq(f.RoomID))
	}
	if len(f.Statuses) > 0 {
		sts := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			sts[i] = string(s)
		}
		ds = ds.Where(goqu.I("r.status").In(sts))
	}
	// stays overlapping [From, To)
	if !f.From.IsZero() {
		ds = ds.Where(goqu.I("r.check_out_date").Gt(f.From))
	}
	if !f.To.IsZero() {
		ds = ds.Where(goqu.I("r.check_in_date").Lt(f.To))
	}
	return ds.
		Order(goqu.I("r.check_in_date").Asc(), goqu.I("r.id").Asc()).
		Limit(uint(f.Limit())).
		Offset(uint(f.Offset())).
		ToSQL()
}

// GetForUpdateTx reads and row-locks a reservation.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.Reservation, error) {
	var res model.Reservation
	err := tx.GetContext(ctx, &res, selectReservation+` WHERE id = ? FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrNotFound
	}
	return res, err
}

// FindOverlappingTx returns the reservations of a room whose stay overlaps
// [checkIn, checkOut).  Back-to-back stays do not match.
func (r *ReservationRepo) FindOverlappingTx(ctx context.Context, tx *sqlx.Tx, roomID uint64, stay booking.DateRange) ([]model.Reservation, error) {
	var out []model.Reservation
	err := tx.SelectContext(ctx, &out,
		selectReservation+` WHERE room_id = ? AND NOT (check_out_date <= ? OR check_in_date >= ?)`,
		roomID, stay.CheckIn, stay.CheckOut)
	return out, err
}

// HasBlockingTx reports whether a reservation of the room other than
// excludeID holds it at instant at: a checked-in stay, or a confirmed stay
// whose [check_in_date, check_out_date) covers at.
func (r *ReservationRepo) HasBlockingTx(ctx context.Context, tx *sqlx.Tx, roomID, excludeID uint64, at time.Time) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, hasBlockingQuery,
		roomID, excludeID, string(model.StatusCheckedIn),
		string(model.StatusConfirmed), at, at)
	return exists, err
}

const hasBlockingQuery = `SELECT EXISTS(SELECT 1 FROM reservations
 WHERE room_id = ? AND id <> ?
   AND (status = ? OR (status = ? AND check_in_date <= ? AND check_out_date > ?)))`

func (r *ReservationRepo) ConfirmationExistsTx(ctx context.Context, tx *sqlx.Tx, propertyID uint64, code string) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE property_id = ? AND confirmation_number = ?)`,
		propertyID, code)
	return exists, err
}

// CreateTx inserts res and assigns its ID.  A duplicate confirmation number
// within the property is reported as booking.ErrDuplicateConfirmation.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
        (property_id, room_id, guest_id, confirmation_number, check_in_date, check_out_date,
         number_of_guests, rate, total_amount, deposit_amount, status, source, special_requests,
         checked_in_at, checked_out_at, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.PropertyID, res.RoomID, res.GuestID, res.ConfirmationNumber, res.CheckInDate, res.CheckOutDate,
		res.NumberOfGuests, res.Rate, res.TotalAmount, res.DepositAmount, string(res.Status), sourceArg(res.Source), res.SpecialRequests,
		res.CheckedInAt, res.CheckedOutAt, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return booking.ErrDuplicateConfirmation
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// UpdateTx writes every mutable column of res.  The property and the
// confirmation number are never rewritten.
func (r *ReservationRepo) UpdateTx(ctx context.Context, tx *sqlx.Tx, res *model.Reservation) error {
	const q = `UPDATE reservations SET
        room_id = ?, guest_id = ?, check_in_date = ?, check_out_date = ?, number_of_guests = ?,
        rate = ?, total_amount = ?, deposit_amount = ?, status = ?, source = ?, special_requests = ?,
        checked_in_at = ?, checked_out_at = ?, updated_at = ?
        WHERE id = ?`
	_, err := tx.ExecContext(ctx, q,
		res.RoomID, res.GuestID, res.CheckInDate, res.CheckOutDate, res.NumberOfGuests,
		res.Rate, res.TotalAmount, res.DepositAmount, string(res.Status), sourceArg(res.Source), res.SpecialRequests,
		res.CheckedInAt, res.CheckedOutAt, res.UpdatedAt,
		res.ID,
	)
	return err
}

func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	return err
}

func sourceArg(s *model.Source) any {
	if s == nil {
		return nil
	}
	return string(*s)
}
