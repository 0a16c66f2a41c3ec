package db

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL reports a missing parent row as 1452 (1216 on older servers).
const (
	errNoReferencedRow    = 1452
	errNoReferencedRowOld = 1216
)

// Strict mode rejects a value that does not fit its column with 1264, and
// arithmetic past BIGINT with 1690.
const (
	errOutOfRangeValue = 1264
	errDataOutOfRange  = 1690
)

// IsForeignKeyViolation reports whether err is an insert or update that
// pointed at a parent row which does not exist.
func IsForeignKeyViolation(err error) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == errNoReferencedRow || myErr.Number == errNoReferencedRowOld
}

// IsOutOfRange reports whether err is a write whose value did not fit the
// column it targeted.
func IsOutOfRange(err error) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == errOutOfRangeValue || myErr.Number == errDataOutOfRange
}
