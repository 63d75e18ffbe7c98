package store

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestIsConnectivityClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"unavailable sentinel", ErrUnavailable, true},
		{"wrapped unavailable", fmt.Errorf("fetch pending: %w", ErrUnavailable), true},
		{"bad conn", driver.ErrBadConn, true},
		{"sqlite io error", sqlite3.Error{Code: sqlite3.ErrIoErr}, true},
		{"sqlite cant open", sqlite3.Error{Code: sqlite3.ErrCantOpen}, true},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"wrapped sqlite error", fmt.Errorf("apply outcomes: %w", sqlite3.Error{Code: sqlite3.ErrLocked}), true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"sqlite misuse", sqlite3.Error{Code: sqlite3.ErrMisuse}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectivity(tt.err))
		})
	}
}
