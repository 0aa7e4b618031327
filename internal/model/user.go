package model

import "time"

// Staff roles carried in access tokens.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// User is a back-office staff account from the `users` table.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique, lower-cased login.
//  PasswordHash – bcrypt hash.
//  Role         – ADMIN or STAFF.
//  IsActive     – inactive accounts cannot log in.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken models a row in `refresh_tokens`.  Only the SHA-256 hash of
// the token handed to the client is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
