package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

func (s *Service) ListBooks(ctx context.Context, userID string, filter BookFilter) ([]entities.Book, error) {
	const op = "fetch books"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, invalid(op, err)
	}

	books, err := s.store.ListBooks(ctx, userID, store.BookFilter{
		Query:        strings.TrimSpace(filter.Query),
		Status:       entities.BookStatus(unlessAll(filter.Status)),
		Genre:        unlessAll(filter.Genre),
		CollectionID: unlessAll(filter.Collection),
		Limit:        filter.Limit,
	})
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return books, nil
}

func (s *Service) GetBook(ctx context.Context, userID, id string) (*entities.Book, error) {
	const op = "fetch book"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, userID, id)
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return book, nil
}

func (s *Service) CreateBook(ctx context.Context, userID string, in BookInput) (*entities.Book, error) {
	const op = "create book"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(op, err)
	}

	collectionIDs := store.UniqueIDs(in.CollectionIDs)
	if err := s.checkCollections(ctx, op, userID, collectionIDs); err != nil {
		return nil, err
	}

	now := s.stamp()
	book := &entities.Book{
		UserID:          userID,
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Genre:           in.Genre,
		PublicationYear: positive(in.PublicationYear),
		CoverImage:      in.CoverImage,
		Status:          in.Status,
		Rating:          positive(in.Rating),
		Notes:           in.Notes,
		CompletedDate:   in.CompletedDate,
		CollectionIDs:   collectionIDs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if book.Status == entities.BookStatusCompleted && book.CompletedDate == nil {
		book.CompletedDate = &now
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, s.fail(op, userID, err)
	}
	s.log.Debug().Str("user_id", userID).Str("book_id", book.ID).Msg("book created")
	return book, nil
}

func (s *Service) UpdateBook(ctx context.Context, userID, id string, in BookUpdate) (*entities.Book, error) {
	const op = "update book"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(op, err)
	}

	patch := store.BookPatch{
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Genre:           in.Genre,
		CoverImage:      in.CoverImage,
		Notes:           in.Notes,
		Status:          in.Status,
		PublicationYear: in.PublicationYear,
		Rating:          in.Rating,
		CompletedDate:   in.CompletedDate,
		UpdatedAt:       s.stamp(),
	}

	if in.CollectionIDs != nil {
		ids := store.UniqueIDs(*in.CollectionIDs)
		if err := s.checkCollections(ctx, op, userID, ids); err != nil {
			return nil, err
		}
		patch.CollectionIDs = &ids
	}

	if in.Status != nil {
		existing, err := s.store.GetBook(ctx, userID, id)
		if err != nil {
			return nil, s.fail(op, userID, err)
		}
		stampCompletion(existing, &patch)
	}

	book, err := s.store.UpdateBook(ctx, userID, id, patch)
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return book, nil
}

func (s *Service) DeleteBook(ctx context.Context, userID, id string) error {
	const op = "delete book"
	if err := authorize(op, userID); err != nil {
		return err
	}
	if err := s.store.DeleteBook(ctx, userID, id); err != nil {
		return s.fail(op, userID, err)
	}
	return nil
}

// SuggestBook picks a random unread book.
func (s *Service) SuggestBook(ctx context.Context, userID string) (*entities.Book, error) {
	const op = "suggest book"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}

	unread, err := s.store.ListBooks(ctx, userID, store.BookFilter{Status: entities.BookStatusUnread})
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	if len(unread) == 0 {
		return nil, &Error{Op: op, Kind: ErrNotFound}
	}
	return &unread[s.pick(len(unread))], nil
}

// stampCompletion keeps the completion date consistent with a status change.
func stampCompletion(existing *entities.Book, patch *store.BookPatch) {
	switch {
	case *patch.Status == entities.BookStatusCompleted:
		if patch.CompletedDate == nil && existing.CompletedDate == nil {
			stamp := patch.UpdatedAt
			patch.CompletedDate = &stamp
		}
	case existing.Status == entities.BookStatusCompleted:
		patch.CompletedDate = &time.Time{}
	}
}

// checkCollections rejects ids that do not name a collection owned by userID.
func (s *Service) checkCollections(ctx context.Context, op, userID string, ids []string) error {
	unknown, err := s.unknownCollection(ctx, userID, ids)
	if err != nil {
		return s.fail(op, userID, err)
	}
	if unknown != "" {
		return invalidField(op, "collections", fmt.Sprintf("unknown collection %q", unknown))
	}
	return nil
}

// unknownCollection returns the first id not owned by userID, or "".
func (s *Service) unknownCollection(ctx context.Context, userID string, ids []string) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}
	owned, err := s.store.ListCollections(ctx, userID)
	if err != nil {
		return "", err
	}
	known := make(map[string]bool, len(owned))
	for _, c := range owned {
		known[c.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return id, nil
		}
	}
	return "", nil
}

func unlessAll(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, FilterAll) {
		return ""
	}
	return v
}

func positive(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}
