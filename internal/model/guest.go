package model

// Guest mirrors the `guests` table.  Guests are owned by the guest directory;
// the booking engine only checks that one exists and reads a snapshot.
type Guest struct {
	ID        uint64 `json:"id" db:"id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email,omitempty" db:"email"`
	Phone     string `json:"phone,omitempty" db:"phone"`
}

// GuestSnapshot is the subset of a guest embedded in reservation reads.
type GuestSnapshot struct {
	ID        uint64 `json:"id" db:"id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email,omitempty" db:"email"`
	Phone     string `json:"phone,omitempty" db:"phone"`
}

func (g Guest) Snapshot() GuestSnapshot {
	return GuestSnapshot(g)
}
