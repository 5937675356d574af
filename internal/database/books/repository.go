// Package books provides relational storage for books and their collection
// memberships.
//
// Memberships live in the book_collections table; every read attaches them
// to Book.CollectionIDs so callers see the same shape the document store
// returns.
//
//	repo := books.NewRepository(conn)
//	list, err := repo.ListBooks(ctx, userID, store.BookFilter{Status: entities.BookStatusUnread})
package books

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librarian/internal/connector"
	"github.com/mrlokans/librarian/internal/database/dialect"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

var _ store.BookStore = (*Repository)(nil)

// Repository handles all book database operations.
type Repository struct {
	conn *connector.Lazy[*gorm.DB]
}

// NewRepository creates a new books repository.
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

// ListBooks returns the user's books matching filter, newest first.
func (r *Repository) ListBooks(ctx context.Context, userID string, filter store.BookFilter) ([]entities.Book, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Where("user_id = ?", userID)

	if filter.Query != "" {
		pattern := "%" + EscapeLike(strings.ToLower(filter.Query)) + "%"
		query = query.Where(
			"("+dialect.Lower(db, "title")+` LIKE ? ESCAPE '\' OR `+
				dialect.Lower(db, "author")+` LIKE ? ESCAPE '\' OR `+
				dialect.Lower(db, "isbn")+` LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Genre != "" {
		query = query.Where("genre = ?", filter.Genre)
	}
	if filter.CollectionID != "" {
		members := db.Model(&entities.BookCollection{}).
			Select("book_id").
			Where("collection_id = ? AND user_id = ?", filter.CollectionID, userID)
		query = query.Where("id IN (?)", members)
	}

	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var books []entities.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, err
	}
	if err := attachCollections(db, books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook retrieves a book owned by the user.
func (r *Repository) GetBook(ctx context.Context, userID, id string) (*entities.Book, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	return getBook(db, userID, id)
}

// CreateBook inserts the book with its memberships. A missing id is generated.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return insertBook(tx, book)
	})
}

// CreateBooks inserts several books in one transaction.
func (r *Repository) CreateBooks(ctx context.Context, books []entities.Book) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for i := range books {
			if err := insertBook(tx, &books[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateBook applies patch to a book owned by the user and returns the result.
func (r *Repository) UpdateBook(ctx context.Context, userID, id string, patch store.BookPatch) (*entities.Book, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var updated *entities.Book
	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(patchColumns(patch))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrNotFound
		}

		if patch.CollectionIDs != nil {
			if err := tx.Where("book_id = ? AND user_id = ?", id, userID).
				Delete(&entities.BookCollection{}).Error; err != nil {
				return err
			}
			if err := insertMemberships(tx, userID, id, *patch.CollectionIDs, patch.UpdatedAt); err != nil {
				return err
			}
		}

		book, err := getBook(tx, userID, id)
		if err != nil {
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBook removes a book owned by the user together with its memberships.
func (r *Repository) DeleteBook(ctx context.Context, userID, id string) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Book{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return tx.Where("book_id = ? AND user_id = ?", id, userID).Delete(&entities.BookCollection{}).Error
	})
}

// CountBooks returns how many books the user owns.
func (r *Repository) CountBooks(ctx context.Context, userID string) (int64, error) {
	db, err := r.db(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = db.Model(&entities.Book{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// AddBookToCollections adds the book to each collection, skipping existing
// memberships.
func (r *Repository) AddBookToCollections(ctx context.Context, userID, bookID string, collectionIDs []string, at time.Time) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Book{}).
			Where("id = ? AND user_id = ?", bookID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return store.ErrNotFound
		}
		return insertMemberships(tx, userID, bookID, collectionIDs, at)
	})
}

// RemoveBookFromCollection drops a single membership. Missing rows are not an error.
func (r *Repository) RemoveBookFromCollection(ctx context.Context, userID, bookID, collectionID string) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	return db.Where("book_id = ? AND collection_id = ? AND user_id = ?", bookID, collectionID, userID).
		Delete(&entities.BookCollection{}).Error
}

func getBook(db *gorm.DB, userID, id string) (*entities.Book, error) {
	var book entities.Book
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	books := []entities.Book{book}
	if err := attachCollections(db, books); err != nil {
		return nil, err
	}
	return &books[0], nil
}

func insertBook(tx *gorm.DB, book *entities.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	book.CollectionIDs = store.UniqueIDs(book.CollectionIDs)
	if err := tx.Create(book).Error; err != nil {
		return err
	}
	return insertMemberships(tx, book.UserID, book.ID, book.CollectionIDs, book.CreatedAt)
}

func insertMemberships(tx *gorm.DB, userID, bookID string, collectionIDs []string, at time.Time) error {
	collectionIDs = store.UniqueIDs(collectionIDs)
	if len(collectionIDs) == 0 {
		return nil
	}
	rows := make([]entities.BookCollection, 0, len(collectionIDs))
	for _, collectionID := range collectionIDs {
		rows = append(rows, entities.BookCollection{
			BookID:       bookID,
			CollectionID: collectionID,
			UserID:       userID,
			CreatedAt:    at,
		})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// attachCollections fills CollectionIDs of each book from book_collections.
func attachCollections(db *gorm.DB, books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]string, len(books))
	for i := range books {
		ids[i] = books[i].ID
	}

	var rows []entities.BookCollection
	if err := db.Where("book_id IN ?", ids).Order("created_at, collection_id").Find(&rows).Error; err != nil {
		return err
	}

	byBook := make(map[string][]string, len(books))
	for _, row := range rows {
		byBook[row.BookID] = append(byBook[row.BookID], row.CollectionID)
	}
	for i := range books {
		books[i].CollectionIDs = byBook[books[i].ID]
		if books[i].CollectionIDs == nil {
			books[i].CollectionIDs = []string{}
		}
	}
	return nil
}

func patchColumns(patch store.BookPatch) map[string]any {
	updates := map[string]any{"updated_at": patch.UpdatedAt}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Author != nil {
		updates["author"] = *patch.Author
	}
	if patch.ISBN != nil {
		updates["isbn"] = *patch.ISBN
	}
	if patch.Genre != nil {
		updates["genre"] = *patch.Genre
	}
	if patch.CoverImage != nil {
		updates["cover_image"] = *patch.CoverImage
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.PublicationYear != nil {
		updates["publication_year"] = nilIfZero(*patch.PublicationYear)
	}
	if patch.Rating != nil {
		updates["rating"] = nilIfZero(*patch.Rating)
	}
	if patch.CompletedDate != nil {
		if patch.CompletedDate.IsZero() {
			updates["completed_date"] = nil
		} else {
			updates["completed_date"] = *patch.CompletedDate
		}
	}
	return updates
}

func nilIfZero(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

// EscapeLike escapes LIKE wildcards so user input matches literally
// under ESCAPE '\'.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
