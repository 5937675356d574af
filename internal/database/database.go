package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/connector"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/database/collections"
	"github.com/mrlokans/librarian/internal/database/dialect"
	"github.com/mrlokans/librarian/internal/database/loans"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

// Models lists every table managed by AutoMigrate.
var Models = []any{
	&entities.Book{},
	&entities.Collection{},
	&entities.BookCollection{},
	&entities.Loan{},
}

const sqlitePragmas = "_journal_mode=WAL&_busy_timeout=5000"

type (
	bookRepository       = books.Repository
	collectionRepository = collections.Repository
	loanRepository       = loans.Repository
)

// Store is the relational implementation of store.Store.
type Store struct {
	*bookRepository
	*collectionRepository
	*loanRepository
	conn *connector.Lazy[*gorm.DB]
}

var _ store.Store = (*Store)(nil)

// NewStore wires the domain repositories onto a shared lazy connection.
func NewStore(conn *connector.Lazy[*gorm.DB]) *Store {
	return &Store{
		bookRepository:       books.NewRepository(conn),
		collectionRepository: collections.NewRepository(conn),
		loanRepository:       loans.NewRepository(conn),
		conn:                 conn,
	}
}

// Ping dials if needed and checks the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.conn.Get(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.conn.Close(func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
}

// Dialer opens, verifies and migrates the configured SQL database.
func Dialer(cfg config.Store, log zerolog.Logger) connector.Dialer[*gorm.DB] {
	return func(ctx context.Context) (*gorm.DB, error) {
		if cfg.URL == "" {
			return nil, connector.ErrMissingConnectionString
		}

		var dialector gorm.Dialector
		switch driver := cfg.ResolveDriver(); driver {
		case config.StoreDriverSQLite:
			dialector = dialect.SQLite(SQLiteDSN(cfg.URL))
		case config.StoreDriverPostgres:
			dialector = postgres.Open(cfg.URL)
		default:
			return nil, fmt.Errorf("driver %q is not a SQL driver", driver)
		}

		db, err := Open(ctx, dialector, cfg.ConnectTimeout, newGormLogger(log))
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", string(cfg.ResolveDriver())).Msg("database initialized")
		return db, nil
	}
}

// Open connects with the given dialector, pings, installs the connection
// error callbacks and runs migrations.
func Open(ctx context.Context, dialector gorm.Dialector, timeout time.Duration, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := registerConnectionErrors(db); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table in Models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SQLiteDSN turns a sqlite:// URL or bare path into a go-sqlite3 DSN with
// WAL and a busy timeout unless the caller already set options.
func SQLiteDSN(url string) string {
	dsn := strings.TrimPrefix(url, "sqlite://")
	dsn = strings.TrimPrefix(dsn, "sqlite:")
	if strings.Contains(dsn, "?") || dsn == ":memory:" {
		return dsn
	}
	return dsn + "?" + sqlitePragmas
}

// newGormLogger routes gorm's own logging through zerolog. SQL statements are
// only printed at debug level.
func newGormLogger(log zerolog.Logger) logger.Interface {
	level := logger.Warn
	if log.GetLevel() <= zerolog.DebugLevel {
		level = logger.Info
	}
	gl := log.With().Str("component", "gorm").Logger()
	return logger.New(&gl, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
