package model

// Room mirrors the `rooms` table.  Status is the cached occupancy state that
// the booking engine keeps in step with the room's blocking reservations.
type Room struct {
	ID         uint64     `json:"id" db:"id"`
	PropertyID uint64     `json:"propertyId" db:"property_id"`
	RoomNumber string     `json:"roomNumber" db:"room_number"`
	RoomType   string     `json:"roomType,omitempty" db:"room_type"`
	Status     RoomStatus `json:"status" db:"status"`
	IsActive   bool       `json:"isActive" db:"is_active"`
}

// RoomSnapshot is the subset of a room embedded in reservation reads.
type RoomSnapshot struct {
	ID         uint64     `json:"id" db:"id"`
	RoomNumber string     `json:"roomNumber" db:"room_number"`
	RoomType   string     `json:"roomType,omitempty" db:"room_type"`
	Status     RoomStatus `json:"status" db:"status"`
}

// Snapshot returns the read-side view of r.
func (r Room) Snapshot() RoomSnapshot {
	return RoomSnapshot{ID: r.ID, RoomNumber: r.RoomNumber, RoomType: r.RoomType, Status: r.Status}
}
