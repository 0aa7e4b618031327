package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/property-reservation/internal/model"
)

const selectUser = `SELECT id, email, password_hash, role, is_active, created_at, updated_at FROM users`

// UserRepo manages staff accounts.
type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: sqlx.NewDb(db, "mysql")} }

// Create inserts a user with an already hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, role string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		NormalizeEmail(email), passwordHash, role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, selectUser+" WHERE email=? LIMIT 1", NormalizeEmail(email))
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, selectUser+" WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
	var u model.User
	err := r.db.QueryRowxContext(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// NormalizeEmail lower-cases and trims a login.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
