// Package database is the relational (SQLite or PostgreSQL) implementation of
// store.Store.
//
// # Architecture
//
// The layer is organized into domain-specific sub-packages that share one
// lazily dialed *gorm.DB:
//
//	database/
//	├── database.go      # Dialer, migrations, Store composition
//	├── errors.go        # Marks lost-connection errors with connector.ErrConnection
//	├── dialect/         # SQLite driver with Unicode fold_case, per-dialect SQL
//	├── books/           # Books and book_collections membership rows
//	├── collections/     # Collections and bulk membership replacement
//	└── loans/           # Loans with their book preloaded
//
// # Using Sub-packages
//
// Store embeds every repository, so most callers never touch them directly:
//
//	conn := connector.New(database.Dialer(cfg.Store, log))
//	st := database.NewStore(conn)
//
//	books, err := st.ListBooks(ctx, userID, store.BookFilter{Genre: "fiction"})
//
// Nothing is dialed until the first call. A missing DATABASE_URL or an
// unreachable server surfaces as connector.ErrConnection on that call and the
// next call dials again.
//
// # Ownership
//
// Every query is scoped by user_id. A row owned by somebody else is reported
// as store.ErrNotFound, never as a permission error.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct holding the *connector.Lazy[*gorm.DB]
//  3. Add the NewRepository constructor and a compile-time check against the
//     matching store interface
//  4. Register the entity in Models and embed the repository in Store
package database
