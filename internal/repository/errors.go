package repository

import (
	"errors"
	"julekalender_backend/internal/util"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// IsRetryable reports whether a failed progress transaction may succeed when
// run again: a lost version check or a MySQL deadlock victim.
func IsRetryable(err error) bool {
	if errors.Is(err, util.ErrConcurrentUpdate) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}
	return false
}
