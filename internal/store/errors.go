package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrUnavailable marks an error as a store connectivity failure. Errors
// wrapping it are reconnect-worthy regardless of their driver-level shape.
var ErrUnavailable = errors.New("store unavailable")

// markUnavailable wraps a low-level connection failure with ErrUnavailable
// so IsConnectivity classifies it without inspecting driver internals.
func markUnavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// IsConnectivity reports whether err is a store connectivity failure: a
// dropped or unopenable connection, file-level IO trouble, or sustained lock
// contention. Only these errors should trigger a reconnect in the scoring
// loop; constraint violations and programming errors should not.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr,
			sqlite3.ErrCantOpen, sqlite3.ErrNotADB, sqlite3.ErrProtocol:
			return true
		}
	}

	return false
}
