// Package repository holds the MySQL data access layer.  Repositories are
// thin structs over a *sqlx.DB; methods ending in Tx run inside a caller's
// transaction and never commit.
//
// The sentinels below let callers tell failure classes apart without
// inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
