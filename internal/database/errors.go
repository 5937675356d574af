package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/connector"
)

const connectionErrorsCallback = "librarian:connection_errors"

// registerConnectionErrors marks statement failures caused by an unreachable
// or locked database with connector.ErrConnection.
func registerConnectionErrors(db *gorm.DB) error {
	cb := db.Callback()
	for _, err := range []error{
		cb.Create().After("gorm:create").Register(connectionErrorsCallback, markConnectionError),
		cb.Query().After("gorm:query").Register(connectionErrorsCallback, markConnectionError),
		cb.Update().After("gorm:update").Register(connectionErrorsCallback, markConnectionError),
		cb.Delete().After("gorm:delete").Register(connectionErrorsCallback, markConnectionError),
		cb.Row().After("gorm:row").Register(connectionErrorsCallback, markConnectionError),
		cb.Raw().After("gorm:raw").Register(connectionErrorsCallback, markConnectionError),
	} {
		if err != nil {
			return fmt.Errorf("failed to register callbacks: %w", err)
		}
	}
	return nil
}

func markConnectionError(tx *gorm.DB) {
	if tx.Error == nil || errors.Is(tx.Error, connector.ErrConnection) || !unreachable(tx.Error) {
		return
	}
	tx.Error = fmt.Errorf("%w: %w", connector.ErrConnection, tx.Error)
}

func unreachable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
