package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/model"
)

// ReservationHandler exposes the booking service over HTTP.  Every response
// is a booking.Result envelope.
type ReservationHandler struct {
	Svc *booking.Service
	// Purge invalidates cached reads after a successful write.  May be nil.
	Purge func(context.Context)
	Log   *slog.Logger
}

func NewReservationHandler(svc *booking.Service, purge func(context.Context), log *slog.Logger) *ReservationHandler {
	if svc == nil {
		panic("nil booking service passed to NewReservationHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ReservationHandler{Svc: svc, Purge: purge, Log: log}
}

type createReservationReq struct {
	PropertyID      uint64   `json:"propertyId" validate:"required"`
	RoomID          uint64   `json:"roomId" validate:"required"`
	GuestID         uint64   `json:"guestId" validate:"required"`
	CheckInDate     string   `json:"checkInDate" validate:"required"`
	CheckOutDate    string   `json:"checkOutDate" validate:"required"`
	NumberOfGuests  int      `json:"numberOfGuests" validate:"required,min=1"`
	Rate            float64  `json:"rate" validate:"gte=0"`
	TotalAmount     float64  `json:"totalAmount" validate:"gte=0"`
	DepositAmount   *float64 `json:"depositAmount" validate:"omitempty,gte=0"`
	Status          string   `json:"status" validate:"omitempty,reservation_status"`
	Source          string   `json:"source" validate:"omitempty,reservation_source"`
	SpecialRequests *string  `json:"specialRequests" validate:"omitempty,max=2000"`
}

type updateReservationReq struct {
	RoomID          *uint64  `json:"roomId" validate:"omitempty,gt=0"`
	GuestID         *uint64  `json:"guestId" validate:"omitempty,gt=0"`
	CheckInDate     *string  `json:"checkInDate"`
	CheckOutDate    *string  `json:"checkOutDate"`
	NumberOfGuests  *int     `json:"numberOfGuests" validate:"omitempty,min=1"`
	Rate            *float64 `json:"rate" validate:"omitempty,gte=0"`
	TotalAmount     *float64 `json:"totalAmount" validate:"omitempty,gte=0"`
	DepositAmount   *float64 `json:"depositAmount" validate:"omitempty,gte=0"`
	Status          *string  `json:"status" validate:"omitempty,reservation_status"`
	Source          *string  `json:"source" validate:"omitempty,reservation_source"`
	SpecialRequests *string  `json:"specialRequests" validate:"omitempty,max=2000"`
}

func (r createReservationReq) input() (booking.CreateInput, error) {
	in := booking.CreateInput{
		PropertyID:      r.PropertyID,
		RoomID:          r.RoomID,
		GuestID:         r.GuestID,
		NumberOfGuests:  r.NumberOfGuests,
		Rate:            r.Rate,
		TotalAmount:     r.TotalAmount,
		DepositAmount:   r.DepositAmount,
		SpecialRequests: r.SpecialRequests,
	}
	var err error
	if in.CheckIn, err = parseDate("checkInDate", r.CheckInDate); err != nil {
		return in, err
	}
	if in.CheckOut, err = parseDate("checkOutDate", r.CheckOutDate); err != nil {
		return in, err
	}
	if r.Status != "" {
		in.Status, _ = model.ParseStatus(r.Status)
	}
	if r.Source != "" {
		src, _ := model.ParseSource(r.Source)
		in.Source = &src
	}
	return in, nil
}

func (r updateReservationReq) input() (booking.UpdateInput, error) {
	in := booking.UpdateInput{
		RoomID:          r.RoomID,
		GuestID:         r.GuestID,
		NumberOfGuests:  r.NumberOfGuests,
		Rate:            r.Rate,
		TotalAmount:     r.TotalAmount,
		DepositAmount:   r.DepositAmount,
		SpecialRequests: r.SpecialRequests,
	}
	if r.CheckInDate != nil {
		t, err := parseDate("checkInDate", *r.CheckInDate)
		if err != nil {
			return in, err
		}
		in.CheckIn = &t
	}
	if r.CheckOutDate != nil {
		t, err := parseDate("checkOutDate", *r.CheckOutDate)
		if err != nil {
			return in, err
		}
		in.CheckOut = &t
	}
	if r.Status != nil {
		st, _ := model.ParseStatus(*r.Status)
		in.Status = &st
	}
	if r.Source != nil {
		src, _ := model.ParseSource(*r.Source)
		in.Source = &src
	}
	return in, nil
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	in, err := req.input()
	if err != nil {
		return fail(c, err)
	}
	created, err := h.Svc.CreateReservation(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, "create reservation", err)
	}
	h.purge(c)
	return respond(c, http.StatusCreated, created)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	d, err := h.Svc.GetReservation(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "get reservation", err)
	}
	return respond(c, http.StatusOK, d)
}

// Update handles PATCH and PUT /v1/reservations/:id.  Absent fields keep
// their stored values.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req updateReservationReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	in, err := req.input()
	if err != nil {
		return fail(c, err)
	}
	r, err := h.Svc.UpdateReservation(c.Request().Context(), id, in)
	if err != nil {
		return h.fail(c, "update reservation", err)
	}
	h.purge(c)
	return respond(c, http.StatusOK, r)
}

// Delete handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Svc.DeleteReservation(c.Request().Context(), id); err != nil {
		return h.fail(c, "delete reservation", err)
	}
	h.purge(c)
	return respond(c, http.StatusOK, echo.Map{"id": id})
}

type listResp struct {
	Items    []model.ReservationDetail `json:"items"`
	Page     int                       `json:"page"`
	PageSize int                       `json:"pageSize"`
}

// List handles GET /v1/properties/:id/reservations.  Query parameters:
// roomId, status (repeatable or comma separated), from, to, page, pageSize.
func (h *ReservationHandler) List(c echo.Context) error {
	propertyID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	f := model.ReservationFilter{PropertyID: propertyID}
	var statuses []string
	var from, to string
	if err := echo.QueryParamsBinder(c).
		Uint64("roomId", &f.RoomID).
		Strings("status", &statuses).
		String("from", &from).
		String("to", &to).
		Int("page", &f.Page).
		Int("pageSize", &f.PageSize).
		BindError(); err != nil {
		return fail(c, booking.Validationf("invalid query: %v", err))
	}
	for _, raw := range statuses {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			st, err := model.ParseStatus(s)
			if err != nil {
				return fail(c, booking.Validationf("%v", err))
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	if f.From, err = optDate("from", from); err != nil {
		return fail(c, err)
	}
	if f.To, err = optDate("to", to); err != nil {
		return fail(c, err)
	}

	items, err := h.Svc.ListReservations(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, "list reservations", err)
	}
	if items == nil {
		items = []model.ReservationDetail{}
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	return respond(c, http.StatusOK, listResp{Items: items, Page: page, PageSize: f.Limit()})
}

// ByCode handles GET /v1/properties/:id/reservations/by-code/:code.
func (h *ReservationHandler) ByCode(c echo.Context) error {
	propertyID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	d, err := h.Svc.FindByConfirmation(c.Request().Context(), propertyID, code)
	if err != nil {
		return h.fail(c, "find reservation by code", err)
	}
	return respond(c, http.StatusOK, d)
}

// AvailableRooms handles GET /v1/properties/:id/rooms/available?checkIn=&checkOut=.
func (h *ReservationHandler) AvailableRooms(c echo.Context) error {
	propertyID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	checkIn, err := parseDate("checkIn", c.QueryParam("checkIn"))
	if err != nil {
		return fail(c, err)
	}
	checkOut, err := parseDate("checkOut", c.QueryParam("checkOut"))
	if err != nil {
		return fail(c, err)
	}
	rooms, err := h.Svc.AvailableRooms(c.Request().Context(), propertyID, checkIn, checkOut)
	if err != nil {
		return h.fail(c, "available rooms", err)
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	return respond(c, http.StatusOK, rooms)
}

// fail logs unexpected errors before rendering the envelope.
func (h *ReservationHandler) fail(c echo.Context, op string, err error) error {
	if booking.CodeOf(err) == booking.CodeInternal {
		h.Log.ErrorContext(c.Request().Context(), op+" failed", "error", err)
	}
	return fail(c, err)
}

func (h *ReservationHandler) purge(c echo.Context) {
	if h.Purge != nil {
		h.Purge(c.Request().Context())
	}
}
