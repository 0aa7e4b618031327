package model

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a reservation.  The set is closed; use
// ParseStatus to convert untrusted input.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every valid reservation status.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled}

// ParseStatus normalises s and reports an error for unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown reservation status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// Blocking reports whether a reservation in this status holds its room.
// Only confirmed and checked-in stays take part in conflict detection.
func (s Status) Blocking() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

func (s Status) String() string { return string(s) }

// UnmarshalText rejects values outside the closed set so a bad status never
// reaches the booking service.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Scan implements sql.Scanner.
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return s.UnmarshalText(v)
	case string:
		return s.UnmarshalText([]byte(v))
	}
	return fmt.Errorf("cannot scan %T into Status", src)
}

// Source records the channel a reservation came through.
type Source string

const (
	SourceDirect Source = "direct"
	SourceOTA    Source = "ota"
	SourceWalkIn Source = "walk-in"
	SourcePhone  Source = "phone"
	SourceOther  Source = "other"
)

func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if !src.Valid() {
		return "", fmt.Errorf("unknown reservation source %q", s)
	}
	return src, nil
}

func (s Source) Valid() bool {
	switch s {
	case SourceDirect, SourceOTA, SourceWalkIn, SourcePhone, SourceOther:
		return true
	}
	return false
}

func (s *Source) UnmarshalText(b []byte) error {
	src, err := ParseSource(string(b))
	if err != nil {
		return err
	}
	*s = src
	return nil
}

// RoomStatus is the live occupancy state stored on a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomCleaning    RoomStatus = "cleaning"
	RoomOutOfOrder  RoomStatus = "out-of-order"
)
