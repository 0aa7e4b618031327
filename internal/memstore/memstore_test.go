package memstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/model"
	"github.com/iliyamo/property-reservation/internal/repository"
)

func Test_LoadSeed(t *testing.T) {
	s := New()
	err := s.LoadSeed(strings.NewReader(`{
		"rooms": [
			{"id": 1, "propertyId": 10, "roomNumber": "1A"},
			{"id": 2, "propertyId": 10, "roomNumber": "1B", "isActive": false, "status": "maintenance"}
		],
		"guests": [{"id": 5, "firstName": "Grace", "lastName": "Hopper"}]
	}`))
	require.NoError(t, err)

	r1, ok := s.Room(1)
	require.True(t, ok)
	assert.True(t, r1.IsActive)
	assert.Equal(t, model.RoomAvailable, r1.Status)

	r2, _ := s.Room(2)
	assert.False(t, r2.IsActive)
	assert.Equal(t, model.RoomMaintenance, r2.Status)

	var exists bool
	require.NoError(t, s.InTx(context.Background(), func(tx booking.Tx) error {
		var err error
		exists, err = tx.GuestExists(context.Background(), 5)
		return err
	}))
	assert.True(t, exists)

	assert.Error(t, New().LoadSeed(strings.NewReader(`{"rooms":[{"roomNumber":"x"}]}`)))
	assert.Error(t, New().LoadSeed(strings.NewReader(`not json`)))
}

func Test_FailedTxLeavesNoTrace(t *testing.T) {
	s := New()
	s.AddRoom(model.Room{ID: 1, PropertyID: 1, RoomNumber: "1", IsActive: true})
	ctx := context.Background()

	err := s.InTx(ctx, func(tx booking.Tx) error {
		if err := tx.SetRoomStatus(ctx, 1, model.RoomOccupied); err != nil {
			return err
		}
		return booking.ErrRoomConflict
	})
	require.ErrorIs(t, err, booking.ErrRoomConflict)

	r, _ := s.Room(1)
	assert.Equal(t, model.RoomAvailable, r.Status)
}

func Test_Users(t *testing.T) {
	u := NewUsers()
	ctx := context.Background()

	id, err := u.Create(ctx, "Front@Desk.test", "hash", model.RoleStaff)
	require.NoError(t, err)
	_, err = u.Create(ctx, "front@desk.test", "hash", model.RoleStaff)
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	got, err := u.GetByEmail(ctx, " FRONT@desk.test")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.True(t, got.IsActive)

	_, err = u.GetByID(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func Test_Tokens(t *testing.T) {
	tk := NewTokens()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, tk.StoreRefresh(ctx, 1, "a", now.Add(time.Hour)))
	require.NoError(t, tk.StoreRefresh(ctx, 1, "b", now.Add(time.Hour)))
	require.NoError(t, tk.StoreRefresh(ctx, 2, "c", now.Add(time.Hour)))
	require.NoError(t, tk.StoreRefresh(ctx, 2, "old", now.Add(-time.Minute)))

	uid, err := tk.ValidateRefresh(ctx, "a", now)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), uid)

	_, err = tk.ValidateRefresh(ctx, "old", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, tk.RevokeByHash(ctx, "a"))
	_, err = tk.ValidateRefresh(ctx, "a", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, tk.RevokeAllForUser(ctx, 1))
	_, err = tk.ValidateRefresh(ctx, "b", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = tk.ValidateRefresh(ctx, "c", now)
	assert.NoError(t, err)
}
