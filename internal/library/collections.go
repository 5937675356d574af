package library

import (
	"context"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

func (s *Service) ListCollections(ctx context.Context, userID string) ([]entities.Collection, error) {
	const op = "fetch collections"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}

	collections, err := s.store.ListCollections(ctx, userID)
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return collections, nil
}

func (s *Service) GetCollection(ctx context.Context, userID, id string) (*entities.Collection, error) {
	const op = "fetch collection"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}

	collection, err := s.store.GetCollection(ctx, userID, id)
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return collection, nil
}

func (s *Service) CreateCollection(ctx context.Context, userID string, in CollectionInput) (*entities.Collection, error) {
	const op = "create collection"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(op, err)
	}

	now := s.stamp()
	collection := &entities.Collection{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateCollection(ctx, collection); err != nil {
		return nil, s.fail(op, userID, err)
	}
	return collection, nil
}

func (s *Service) UpdateCollection(ctx context.Context, userID, id string, in CollectionUpdate) (*entities.Collection, error) {
	const op = "update collection"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(op, err)
	}

	collection, err := s.store.UpdateCollection(ctx, userID, id, store.CollectionPatch{
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		UpdatedAt:   s.stamp(),
	})
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return collection, nil
}

// DeleteCollection removes the collection and detaches it from every book.
func (s *Service) DeleteCollection(ctx context.Context, userID, id string) error {
	const op = "delete collection"
	if err := authorize(op, userID); err != nil {
		return err
	}
	if err := s.store.DeleteCollection(ctx, userID, id); err != nil {
		return s.fail(op, userID, err)
	}
	return nil
}

// ListBooksInCollection returns the collection's books, newest first.
func (s *Service) ListBooksInCollection(ctx context.Context, userID, collectionID string) ([]entities.Book, error) {
	const op = "fetch books in collection"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCollection(ctx, userID, collectionID); err != nil {
		return nil, s.fail(op, userID, err)
	}

	books, err := s.store.ListBooks(ctx, userID, store.BookFilter{CollectionID: collectionID})
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return books, nil
}

// SetCollectionMembership makes bookIDs the exact member list of the
// collection. Ids the caller does not own are ignored.
func (s *Service) SetCollectionMembership(ctx context.Context, userID, collectionID string, bookIDs []string) error {
	const op = "add books to collection"
	if err := authorize(op, userID); err != nil {
		return err
	}

	err := s.store.SetCollectionMembership(ctx, userID, collectionID, store.UniqueIDs(bookIDs), s.stamp())
	if err != nil {
		return s.fail(op, userID, err)
	}
	s.log.Debug().
		Str("user_id", userID).
		Str("collection_id", collectionID).
		Int("requested", len(bookIDs)).
		Msg("collection membership replaced")
	return nil
}

// AddBookToCollections adds the book to each collection. Existing
// memberships are kept.
func (s *Service) AddBookToCollections(ctx context.Context, userID, bookID string, collectionIDs []string) error {
	const op = "add book to collections"
	if err := authorize(op, userID); err != nil {
		return err
	}
	ids := store.UniqueIDs(collectionIDs)
	if len(ids) == 0 {
		return invalidField(op, "collections", "cannot be blank")
	}

	unknown, err := s.unknownCollection(ctx, userID, ids)
	if err != nil {
		return s.fail(op, userID, err)
	}
	if unknown != "" {
		return &Error{Op: op, Kind: ErrNotFound}
	}
	if err := s.store.AddBookToCollections(ctx, userID, bookID, ids, s.stamp()); err != nil {
		return s.fail(op, userID, err)
	}
	return nil
}

// RemoveBookFromCollection detaches the book. A book that is not a member
// is not an error.
func (s *Service) RemoveBookFromCollection(ctx context.Context, userID, bookID, collectionID string) error {
	const op = "remove book from collection"
	if err := authorize(op, userID); err != nil {
		return err
	}
	if _, err := s.store.GetCollection(ctx, userID, collectionID); err != nil {
		return s.fail(op, userID, err)
	}
	if err := s.store.RemoveBookFromCollection(ctx, userID, bookID, collectionID); err != nil {
		return s.fail(op, userID, err)
	}
	return nil
}
