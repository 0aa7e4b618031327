package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-reservation/internal/booking"
)

// statusFor maps a result code to its HTTP status.
func statusFor(code booking.Code) int {
	switch code {
	case booking.CodeInvalidDateRange, booking.CodeValidation:
		return http.StatusBadRequest
	case booking.CodeRoomNotFound, booking.CodeGuestNotFound, booking.CodeReservationNotFound:
		return http.StatusNotFound
	case booking.CodePropertyMismatch:
		return http.StatusUnprocessableEntity
	case booking.CodeRoomConflict, booking.CodeStateError, booking.CodeDuplicateConfirmation:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, booking.OK(data))
}

func fail(c echo.Context, err error) error {
	res := booking.Failure(err)
	return c.JSON(statusFor(res.Code), res)
}

// bindAndValidate decodes the body into req and runs the echo validator.
// Decoding problems surface as VALIDATION_FAILED.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return booking.Validationf("invalid body: %v", he.Message)
		}
		return booking.Validationf("invalid body")
	}
	return c.Validate(req)
}

// paramID parses a positive integer path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, booking.Validationf("invalid %s", name)
	}
	return id, nil
}

// parseDate accepts 2006-01-02 or RFC3339 and returns the instant in UTC.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, booking.Validationf("%s must be a date (YYYY-MM-DD) or RFC3339 timestamp", field)
}

// optDate parses s unless it is empty.
func optDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return parseDate(field, s)
}
