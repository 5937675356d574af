// Package collections provides relational storage for user collections and
// the membership rewrite that backs "choose the books in this collection".
package collections

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librarian/internal/connector"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

var _ store.CollectionStore = (*Repository)(nil)

// Repository handles all collection database operations.
type Repository struct {
	conn *connector.Lazy[*gorm.DB]
}

// NewRepository creates a new collections repository.
func NewRepository(conn *connector.Lazy[*gorm.DB]) *Repository {
	return &Repository{conn: conn}
}

func (r *Repository) db(ctx context.Context) (*gorm.DB, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, err
	}
	return db.WithContext(ctx), nil
}

// ListCollections returns the user's collections sorted by name.
func (r *Repository) ListCollections(ctx context.Context, userID string) ([]entities.Collection, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var collections []entities.Collection
	err = db.Where("user_id = ?", userID).Order("name ASC").Find(&collections).Error
	return collections, err
}

// GetCollection retrieves a collection owned by the user.
func (r *Repository) GetCollection(ctx context.Context, userID, id string) (*entities.Collection, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	return getCollection(db, userID, id)
}

// CreateCollection inserts a collection. A missing id is generated.
func (r *Repository) CreateCollection(ctx context.Context, collection *entities.Collection) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	if collection.ID == "" {
		collection.ID = uuid.NewString()
	}
	return db.Create(collection).Error
}

// UpdateCollection applies patch to a collection owned by the user.
func (r *Repository) UpdateCollection(ctx context.Context, userID, id string, patch store.CollectionPatch) (*entities.Collection, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": patch.UpdatedAt}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}

	result := db.Model(&entities.Collection{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return getCollection(db, userID, id)
}

// DeleteCollection removes the collection and every membership pointing at it.
func (r *Repository) DeleteCollection(ctx context.Context, userID, id string) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Collection{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return tx.Where("collection_id = ? AND user_id = ?", id, userID).Delete(&entities.BookCollection{}).Error
	})
}

// SetCollectionMembership replaces the members of a collection with the
// user's books among bookIDs. Both steps run in one transaction.
func (r *Repository) SetCollectionMembership(ctx context.Context, userID, collectionID string, bookIDs []string, at time.Time) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := getCollection(tx, userID, collectionID); err != nil {
			return err
		}

		if err := tx.Where("collection_id = ? AND user_id = ?", collectionID, userID).
			Delete(&entities.BookCollection{}).Error; err != nil {
			return err
		}

		bookIDs = store.UniqueIDs(bookIDs)
		if len(bookIDs) == 0 {
			return nil
		}

		var owned []string
		if err := tx.Model(&entities.Book{}).
			Where("user_id = ? AND id IN ?", userID, bookIDs).
			Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return nil
		}

		rows := make([]entities.BookCollection, 0, len(owned))
		for _, bookID := range owned {
			rows = append(rows, entities.BookCollection{
				BookID:       bookID,
				CollectionID: collectionID,
				UserID:       userID,
				CreatedAt:    at,
			})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

func getCollection(db *gorm.DB, userID, id string) (*entities.Collection, error) {
	var collection entities.Collection
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}
