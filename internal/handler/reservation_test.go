package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/config"
	"github.com/iliyamo/property-reservation/internal/handler"
	"github.com/iliyamo/property-reservation/internal/memstore"
	"github.com/iliyamo/property-reservation/internal/model"
	"github.com/iliyamo/property-reservation/internal/router"
	"github.com/iliyamo/property-reservation/internal/utils"
)

const secret = "test-secret"

type fixture struct {
	e      *echo.Echo
	mem    *memstore.Store
	users  *memstore.Users
	token  string
	purges int
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memstore.New()
	mem.AddRoom(model.Room{ID: 101, PropertyID: 1, RoomNumber: "101", RoomType: "double", IsActive: true})
	mem.AddRoom(model.Room{ID: 102, PropertyID: 1, RoomNumber: "102", RoomType: "single", IsActive: true})
	mem.AddRoom(model.Room{ID: 201, PropertyID: 2, RoomNumber: "201", IsActive: true})
	mem.AddGuest(model.Guest{ID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})

	svc, err := booking.NewService(mem,
		booking.WithClock(booking.FixedClock{T: time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)}))
	require.NoError(t, err)

	f := &fixture{mem: mem, users: memstore.NewUsers()}
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}

	e := echo.New()
	e.JSONSerializer = handler.JSONSerializer{}
	e.Validator = handler.NewValidator()
	router.RegisterRoutes(e, handler.Health{})
	v1 := e.Group("/v1")
	router.RegisterAuth(v1, handler.NewAuthHandler(cfg, f.users, memstore.NewTokens()), secret)
	purge := func(context.Context) { f.purges++ }
	router.RegisterReservations(v1, handler.NewReservationHandler(svc, purge, slog.New(slog.NewTextHandler(io.Discard, nil))), secret, nil)
	f.e = e

	tok, err := utils.NewAccessToken(secret, 1, model.RoleStaff, 15)
	require.NoError(t, err)
	f.token = tok.Token
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if s, ok := body.(string); ok {
		rdr = bytes.NewReader([]byte(s))
	} else if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(bs)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if f.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func booking101(status string, in, out string) map[string]any {
	return map[string]any{
		"propertyId":     1,
		"roomId":         101,
		"guestId":        7,
		"checkInDate":    in,
		"checkOutDate":   out,
		"numberOfGuests": 2,
		"rate":           120,
		"totalAmount":    240,
		"status":         status,
		"source":         "direct",
	}
}

func (f *fixture) create(t *testing.T, body map[string]any) booking.Created {
	t.Helper()
	rec, env := f.do(t, http.MethodPost, "/v1/reservations", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c booking.Created
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return c
}

func Test_Create_ReturnsEnvelope(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/v1/reservations", booking101("confirmed", "2025-02-01", "2025-02-03"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	var c booking.Created
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.NotZero(t, c.ID)
	assert.Regexp(t, `^RES-250105-\d{4}$`, c.ConfirmationNumber)
	assert.Equal(t, 1, f.purges)

	room, _ := f.mem.Room(101)
	assert.Equal(t, model.RoomOccupied, room.Status)
}

func Test_Create_FailureCodes(t *testing.T) {
	f := newFixture(t)
	f.create(t, booking101("confirmed", "2025-02-01", "2025-02-05"))

	cases := []struct {
		name   string
		body   any
		status int
		code   booking.Code
	}{
		{"conflict", booking101("pending", "2025-02-04", "2025-02-06"), http.StatusConflict, booking.CodeRoomConflict},
		{"date range", booking101("pending", "2025-03-05", "2025-03-05"), http.StatusBadRequest, booking.CodeInvalidDateRange},
		{"property mismatch", func() map[string]any {
			b := booking101("pending", "2025-03-01", "2025-03-02")
			b["roomId"] = 201
			return b
		}(), http.StatusUnprocessableEntity, booking.CodePropertyMismatch},
		{"room missing", func() map[string]any {
			b := booking101("pending", "2025-03-01", "2025-03-02")
			b["roomId"] = 999
			return b
		}(), http.StatusNotFound, booking.CodeRoomNotFound},
		{"guest missing", func() map[string]any {
			b := booking101("pending", "2025-03-01", "2025-03-02")
			b["guestId"] = 999
			return b
		}(), http.StatusNotFound, booking.CodeGuestNotFound},
		{"bad status", booking101("sleeping", "2025-03-01", "2025-03-02"), http.StatusBadRequest, booking.CodeValidation},
		{"bad date", booking101("pending", "01/03/2025", "2025-03-02"), http.StatusBadRequest, booking.CodeValidation},
		{"malformed json", `{"propertyId":`, http.StatusBadRequest, booking.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := f.do(t, http.MethodPost, "/v1/reservations", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.False(t, env.Success)
			assert.Equal(t, string(tc.code), env.Error)
			assert.NotEmpty(t, env.Message)
		})
	}
	assert.Equal(t, 1, f.purges)
}

func Test_Create_AcceptsRFC3339(t *testing.T) {
	f := newFixture(t)
	c := f.create(t, booking101("pending", "2025-02-01T14:00:00+02:00", "2025-02-03T10:00:00Z"))

	_, env := f.do(t, http.MethodGet, "/v1/reservations/"+itoa(c.ID), nil)
	var d model.ReservationDetail
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC), d.CheckInDate.UTC())
}

func Test_Get_EnrichesWithSnapshots(t *testing.T) {
	f := newFixture(t)
	c := f.create(t, booking101("pending", "2025-02-01", "2025-02-03"))

	rec, env := f.do(t, http.MethodGet, "/v1/reservations/"+itoa(c.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d model.ReservationDetail
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, c.ConfirmationNumber, d.ConfirmationNumber)
	assert.Equal(t, "Lovelace", d.Guest.LastName)
	assert.Equal(t, "101", d.Room.RoomNumber)
	assert.Equal(t, model.StatusPending, d.Status)

	rec, env = f.do(t, http.MethodGet, "/v1/reservations/424242", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(booking.CodeReservationNotFound), env.Error)

	rec, env = f.do(t, http.MethodGet, "/v1/reservations/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(booking.CodeValidation), env.Error)
}

func Test_Update_LifecycleAndDeleteGuard(t *testing.T) {
	f := newFixture(t)
	c := f.create(t, booking101("confirmed", "2025-02-01", "2025-02-03"))
	path := "/v1/reservations/" + itoa(c.ID)

	rec, env := f.do(t, http.MethodPatch, path, map[string]any{"status": "checked-in"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var r model.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &r))
	require.NotNil(t, r.CheckedInAt)
	room, _ := f.mem.Room(101)
	assert.Equal(t, model.RoomOccupied, room.Status)

	rec, env = f.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(booking.CodeStateError), env.Error)

	rec, _ = f.do(t, http.MethodPut, path, map[string]any{"status": "checked-out"})
	require.Equal(t, http.StatusOK, rec.Code)
	room, _ = f.mem.Room(101)
	assert.Equal(t, model.RoomAvailable, room.Status)

	rec, env = f.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(booking.CodeStateError), env.Error)
}

func Test_Update_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	c := f.create(t, booking101("pending", "2025-02-01", "2025-02-03"))
	path := "/v1/reservations/" + itoa(c.ID)

	rec, env := f.do(t, http.MethodPatch, path, map[string]any{"checkOutDate": "2025-01-30"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(booking.CodeInvalidDateRange), env.Error)

	rec, env = f.do(t, http.MethodPatch, path, map[string]any{"numberOfGuests": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(booking.CodeValidation), env.Error)

	rec, env = f.do(t, http.MethodPatch, "/v1/reservations/999", map[string]any{"numberOfGuests": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(booking.CodeReservationNotFound), env.Error)
}

func Test_Delete_PendingReservation(t *testing.T) {
	f := newFixture(t)
	c := f.create(t, booking101("pending", "2025-02-01", "2025-02-03"))

	rec, env := f.do(t, http.MethodDelete, "/v1/reservations/"+itoa(c.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, 2, f.purges)

	rec, _ = f.do(t, http.MethodGet, "/v1/reservations/"+itoa(c.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_List_ByCode_Available(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, booking101("confirmed", "2025-02-01", "2025-02-03"))
	b := booking101("pending", "2025-02-10", "2025-02-12")
	b["roomId"] = 102
	f.create(t, b)

	rec, env := f.do(t, http.MethodGet, "/v1/properties/1/reservations?status=confirmed,checked-in", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page struct {
		Items    []model.ReservationDetail `json:"items"`
		Page     int                       `json:"page"`
		PageSize int                       `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, a.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.PageSize)

	_, env = f.do(t, http.MethodGet, "/v1/properties/1/reservations?from=2025-02-11&to=2025-02-20", nil)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, uint64(102), page.Items[0].RoomID)

	rec, env = f.do(t, http.MethodGet, "/v1/properties/1/reservations?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(booking.CodeValidation), env.Error)

	rec, env = f.do(t, http.MethodGet, "/v1/properties/1/reservations/by-code/"+a.ConfirmationNumber, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d model.ReservationDetail
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, a.ID, d.ID)

	rec, _ = f.do(t, http.MethodGet, "/v1/properties/2/reservations/by-code/"+a.ConfirmationNumber, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = f.do(t, http.MethodGet, "/v1/properties/1/rooms/available?checkIn=2025-02-02&checkOut=2025-02-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []model.Room
	require.NoError(t, json.Unmarshal(env.Data, &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, uint64(102), rooms[0].ID)

	rec, env = f.do(t, http.MethodGet, "/v1/properties/1/rooms/available?checkIn=2025-02-04&checkOut=2025-02-02", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(booking.CodeInvalidDateRange), env.Error)
}

func Test_Reservations_RequireStaffToken(t *testing.T) {
	f := newFixture(t)
	f.token = ""
	rec, _ := f.do(t, http.MethodGet, "/v1/reservations/1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.NewAccessToken(secret, 1, "GUEST", 15)
	require.NoError(t, err)
	f.token = tok.Token
	rec, _ = f.do(t, http.MethodGet, "/v1/reservations/1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func Test_Health(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func itoa(id uint64) string {
	bs, _ := json.Marshal(id)
	return string(bs)
}
