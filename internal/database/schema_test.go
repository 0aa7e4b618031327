package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Statements(t *testing.T) {
	stmts := Statements()
	require.Len(t, stmts, 5)
	for i, table := range []string{"rooms", "guests", "reservations", "users", "refresh_tokens"} {
		assert.True(t, strings.HasPrefix(stmts[i], "CREATE TABLE IF NOT EXISTS "+table+" ("), stmts[i][:40])
	}
	assert.Contains(t, stmts[2], "UNIQUE KEY uq_reservations_confirmation (property_id, confirmation_number)")
}
