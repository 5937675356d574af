package collections

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/librarian/internal/connector"
	"github.com/mrlokans/librarian/internal/database/dialect"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

var joinedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "collections.db")

	db, err := gorm.Open(dialect.SQLite(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Collection{},
		&entities.BookCollection{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(connector.Ready(db)), db
}

func seedBooks(t *testing.T, db *gorm.DB, userID string, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, db.Create(&entities.Book{
			ID:     id,
			UserID: userID,
			Title:  "Book " + id,
			Author: "Someone",
			Genre:  "fiction",
			Status: entities.BookStatusUnread,
		}).Error)
	}
}

func members(t *testing.T, db *gorm.DB, collectionID string) []string {
	t.Helper()
	var ids []string
	require.NoError(t, db.Model(&entities.BookCollection{}).
		Where("collection_id = ?", collectionID).
		Order("book_id").
		Pluck("book_id", &ids).Error)
	return ids
}

func TestRepository_CRUD(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"Sci-Fi", "Classics", "To Read"} {
		require.NoError(t, repo.CreateCollection(ctx, &entities.Collection{
			UserID: "alice",
			Name:   name,
			Color:  entities.DefaultCollectionColor,
		}))
	}
	require.NoError(t, repo.CreateCollection(ctx, &entities.Collection{UserID: "bob", Name: "Bob's"}))

	list, err := repo.ListCollections(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Classics", list[0].Name)
	assert.Equal(t, "Sci-Fi", list[1].Name)
	assert.Equal(t, "To Read", list[2].Name)

	got, err := repo.GetCollection(ctx, "alice", list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "gray", got.Color)

	_, err = repo.GetCollection(ctx, "bob", list[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	name := "Old Classics"
	updated, err := repo.UpdateCollection(ctx, "alice", got.ID, store.CollectionPatch{
		Name:      &name,
		UpdatedAt: time.Now().Add(time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, "Old Classics", updated.Name)
	assert.Equal(t, "gray", updated.Color)

	_, err = repo.UpdateCollection(ctx, "bob", got.ID, store.CollectionPatch{Name: &name, UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRepository_SetCollectionMembership(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	seedBooks(t, db, "alice", "b1", "b2", "b3")
	seedBooks(t, db, "bob", "x1")

	collection := &entities.Collection{UserID: "alice", Name: "Picks"}
	require.NoError(t, repo.CreateCollection(ctx, collection))

	t.Run("sets the exact member list", func(t *testing.T) {
		require.NoError(t, repo.SetCollectionMembership(ctx, "alice", collection.ID, []string{"b1", "b2", "b2"}, joinedAt))
		assert.Equal(t, []string{"b1", "b2"}, members(t, db, collection.ID))

		var rows []entities.BookCollection
		require.NoError(t, db.Where("collection_id = ?", collection.ID).Find(&rows).Error)
		for _, row := range rows {
			assert.True(t, row.CreatedAt.Equal(joinedAt), "got %s", row.CreatedAt)
		}
	})

	t.Run("replaces rather than appends", func(t *testing.T) {
		require.NoError(t, repo.SetCollectionMembership(ctx, "alice", collection.ID, []string{"b2"}, joinedAt))
		assert.Equal(t, []string{"b2"}, members(t, db, collection.ID))
	})

	t.Run("ignores books of other users", func(t *testing.T) {
		require.NoError(t, repo.SetCollectionMembership(ctx, "alice", collection.ID, []string{"b3", "x1", "nope"}, joinedAt))
		assert.Equal(t, []string{"b3"}, members(t, db, collection.ID))
	})

	t.Run("empty list clears", func(t *testing.T) {
		require.NoError(t, repo.SetCollectionMembership(ctx, "alice", collection.ID, nil, joinedAt))
		assert.Empty(t, members(t, db, collection.ID))
	})

	t.Run("collection of another user", func(t *testing.T) {
		err := repo.SetCollectionMembership(ctx, "bob", collection.ID, []string{"x1"}, joinedAt)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Empty(t, members(t, db, collection.ID))
	})
}

func TestRepository_DeleteCollection_CascadesMembership(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	seedBooks(t, db, "alice", "b1", "b2")
	keep := &entities.Collection{UserID: "alice", Name: "Keep"}
	drop := &entities.Collection{UserID: "alice", Name: "Drop"}
	require.NoError(t, repo.CreateCollection(ctx, keep))
	require.NoError(t, repo.CreateCollection(ctx, drop))
	require.NoError(t, repo.SetCollectionMembership(ctx, "alice", keep.ID, []string{"b1"}, joinedAt))
	require.NoError(t, repo.SetCollectionMembership(ctx, "alice", drop.ID, []string{"b1", "b2"}, joinedAt))

	assert.ErrorIs(t, repo.DeleteCollection(ctx, "bob", drop.ID), store.ErrNotFound)
	require.NoError(t, repo.DeleteCollection(ctx, "alice", drop.ID))

	_, err := repo.GetCollection(ctx, "alice", drop.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, members(t, db, drop.ID))
	assert.Equal(t, []string{"b1"}, members(t, db, keep.ID))
}
