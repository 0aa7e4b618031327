package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/property-reservation/internal/model"
	"github.com/iliyamo/property-reservation/internal/repository"
)

// Users is an in-memory staff account store with the same contract as
// repository.UserRepo.
type Users struct {
	mu     sync.RWMutex
	byID   map[uint64]model.User
	nextID uint64
}

func NewUsers() *Users { return &Users{byID: map[uint64]model.User{}} }

func (u *Users) Create(_ context.Context, email, passwordHash, role string) (uint64, error) {
	email = repository.NormalizeEmail(email)
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.byID {
		if existing.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	u.nextID++
	now := time.Now().UTC()
	u.byID[u.nextID] = model.User{
		ID:           u.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return u.nextID, nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = repository.NormalizeEmail(email)
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, existing := range u.byID {
		if existing.Email == email {
			return existing, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (u *Users) GetByID(_ context.Context, id uint64) (model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if existing, ok := u.byID[id]; ok {
		return existing, nil
	}
	return model.User{}, repository.ErrNotFound
}

// Tokens is an in-memory refresh token store with the same contract as
// repository.TokenRepo.
type Tokens struct {
	mu     sync.Mutex
	byHash map[string]model.RefreshToken
}

func NewTokens() *Tokens { return &Tokens{byHash: map[string]model.RefreshToken{}} }

func (t *Tokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byHash[tokenHash] = model.RefreshToken{
		ID:        uint64(len(t.byHash) + 1),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (t *Tokens) ValidateRefresh(_ context.Context, tokenHash string, now time.Time) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rt, ok := t.byHash[tokenHash]
	if !ok || rt.RevokedAt != nil || now.After(rt.ExpiresAt) {
		return 0, repository.ErrNotFound
	}
	return rt.UserID, nil
}

func (t *Tokens) RevokeByHash(_ context.Context, tokenHash string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rt, ok := t.byHash[tokenHash]; ok && rt.RevokedAt == nil {
		now := time.Now().UTC()
		rt.RevokedAt = &now
		t.byHash[tokenHash] = rt
	}
	return nil
}

func (t *Tokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	for h, rt := range t.byHash {
		if rt.UserID == userID && rt.RevokedAt == nil {
			rt.RevokedAt = &now
			t.byHash[h] = rt
		}
	}
	return nil
}
