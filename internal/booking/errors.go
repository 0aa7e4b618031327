// Package booking is the reservation engine: conflict detection, confirmation
// codes, the lifecycle state machine and the room status synchronisation
// that keeps a room's occupancy in step with its reservations.
package booking

import (
	"errors"
	"fmt"
)

// Code identifies a failure class returned at the service boundary.
type Code string

const (
	CodeInvalidDateRange      Code = "INVALID_DATE_RANGE"
	CodeRoomNotFound          Code = "ROOM_NOT_FOUND"
	CodePropertyMismatch      Code = "PROPERTY_MISMATCH"
	CodeRoomConflict          Code = "ROOM_CONFLICT"
	CodeGuestNotFound         Code = "GUEST_NOT_FOUND"
	CodeStateError            Code = "STATE_ERROR"
	CodeReservationNotFound   Code = "RESERVATION_NOT_FOUND"
	CodeDuplicateConfirmation Code = "DUPLICATE_CONFIRMATION"
	CodeValidation            Code = "VALIDATION_FAILED"
	CodeInternal              Code = "INTERNAL"
)

// Error is a domain failure with a stable code and a human message.  Two
// Errors match under errors.Is when their codes are equal, so callers can
// compare against the sentinels below regardless of the message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidDateRange      = &Error{Code: CodeInvalidDateRange, Message: "check-out date must be after check-in date"}
	ErrRoomNotFound          = &Error{Code: CodeRoomNotFound, Message: "room not found"}
	ErrPropertyMismatch      = &Error{Code: CodePropertyMismatch, Message: "room does not belong to property"}
	ErrRoomConflict          = &Error{Code: CodeRoomConflict, Message: "room is already booked for these dates"}
	ErrGuestNotFound         = &Error{Code: CodeGuestNotFound, Message: "guest not found"}
	ErrStateError            = &Error{Code: CodeStateError, Message: "operation not allowed in current status"}
	ErrReservationNotFound   = &Error{Code: CodeReservationNotFound, Message: "reservation not found"}
	ErrDuplicateConfirmation = &Error{Code: CodeDuplicateConfirmation, Message: "confirmation number already in use for property"}
	ErrValidation            = &Error{Code: CodeValidation, Message: "invalid request"}
)

// CodeOf returns the code carried by err, or CodeInternal when err is not a
// domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Validationf builds a VALIDATION_FAILED error for malformed input detected
// outside the service, such as request decoding.
func Validationf(format string, args ...any) *Error {
	return newError(CodeValidation, format, args...)
}
