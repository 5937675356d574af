// Package dialect covers the SQL differences between the relational backends.
//
// SQLite's LOWER only folds ASCII, so SQLite connections opened through
// SQLite get a fold_case function that lowercases with Go's Unicode tables.
// Lower picks the right spelling for the connected backend.
package dialect

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDriverName is the database/sql driver registered with fold_case.
const SQLiteDriverName = "sqlite3_librarian"

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold_case", foldCase, true)
		},
	})
}

// SQLite returns a gorm dialector for dsn on the fold_case-aware driver.
func SQLite(dsn string) gorm.Dialector {
	return sqlite.New(sqlite.Config{DriverName: SQLiteDriverName, DSN: dsn})
}

// Lower wraps column in the backend's Unicode-aware lowercase function.
func Lower(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "sqlite" {
		return "fold_case(" + column + ")"
	}
	return "LOWER(" + column + ")"
}

// foldCase passes NULL and non-text values through unchanged.
func foldCase(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		return strings.ToLower(string(s))
	default:
		return v
	}
}
