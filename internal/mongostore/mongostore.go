// Package mongostore implements store.Store on MongoDB.
//
// Each entity lives in its own collection (books, collections, loans). A
// book's membership set is the inline "collections" array, so membership
// edits are $addToSet / $pull updates on book documents.
//
// Multi-document steps (membership rewrite, collection delete) run inside a
// transaction when Config.MongoTransactions is set, which requires a replica
// set. Otherwise they run one after another and a failure between them can
// leave the first step applied.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/connector"
	"github.com/mrlokans/librarian/internal/store"
)

const (
	booksCollection       = "books"
	collectionsCollection = "collections"
	loansCollection       = "loans"
)

// Store is the MongoDB implementation of store.Store.
type Store struct {
	conn         *connector.Lazy[*mongo.Database]
	transactions bool
}

var _ store.Store = (*Store)(nil)

func NewStore(conn *connector.Lazy[*mongo.Database], transactions bool) *Store {
	return &Store{conn: conn, transactions: transactions}
}

// Dialer connects, pings the primary and ensures indexes, so an unreachable
// server fails the first call instead of queueing operations.
func Dialer(cfg config.Store, log zerolog.Logger) connector.Dialer[*mongo.Database] {
	return func(ctx context.Context) (*mongo.Database, error) {
		if cfg.URL == "" {
			return nil, connector.ErrMissingConnectionString
		}

		opts := options.Client().ApplyURI(cfg.URL)
		if cfg.ConnectTimeout > 0 {
			opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
		}

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ping mongodb: %w", err)
		}

		db := client.Database(cfg.MongoDatabase)
		if err := ensureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}

		log.Info().Str("database", cfg.MongoDatabase).Msg("mongodb initialized")
		return db, nil
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		booksCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "collections", Value: 1}}},
		},
		collectionsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "name", Value: 1}}},
		},
		loansCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "loanDate", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *Store) db(ctx context.Context) (*mongo.Database, error) {
	return s.conn.Get(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	return storeErr(db.Client().Ping(ctx, readpref.Primary()))
}

func (s *Store) Close(ctx context.Context) error {
	return s.conn.Close(func(db *mongo.Database) error {
		return db.Client().Disconnect(ctx)
	})
}

// atomically runs fn in a transaction when enabled, directly otherwise.
func (s *Store) atomically(ctx context.Context, db *mongo.Database, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return storeErr(fn(ctx))
	}
	session, err := db.Client().StartSession()
	if err != nil {
		return storeErr(err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return storeErr(err)
}

// storeErr translates driver errors: a missing document becomes
// store.ErrNotFound and an unreachable server wraps connector.ErrConnection.
func storeErr(err error) error {
	switch {
	case err == nil, errors.Is(err, store.ErrNotFound), errors.Is(err, connector.ErrConnection):
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case unreachable(err):
		return fmt.Errorf("%w: %w", connector.ErrConnection, err)
	default:
		return err
	}
}

func unreachable(err error) bool {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	var selection topology.ServerSelectionError
	return errors.As(err, &selection)
}

func byOwner(userID, id string) bson.M {
	return bson.M{"_id": id, "userId": userID}
}
