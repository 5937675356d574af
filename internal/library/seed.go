package library

import (
	"context"

	"github.com/mrlokans/librarian/internal/entities"
)

type defaultBook struct {
	title  string
	author string
	genre  string
	year   int
	cover  string
}

var defaultBooks = []defaultBook{
	{"To Kill a Mockingbird", "Harper Lee", "fiction", 1960, "https://covers.openlibrary.org/b/id/8810494-L.jpg"},
	{"1984", "George Orwell", "fiction", 1949, "https://covers.openlibrary.org/b/id/8575708-L.jpg"},
	{"The Great Gatsby", "F. Scott Fitzgerald", "fiction", 1925, "https://covers.openlibrary.org/b/id/8432047-L.jpg"},
	{"Pride and Prejudice", "Jane Austen", "fiction", 1813, "https://covers.openlibrary.org/b/id/8479103-L.jpg"},
	{"The Hobbit", "J.R.R. Tolkien", "fantasy", 1937, "https://covers.openlibrary.org/b/id/8406786-L.jpg"},
}

// SeedDefaultBooks gives an empty library a starter set of unread classics
// and returns how many books were inserted. A library with any book is left
// alone. Two concurrent first calls may both insert.
func (s *Service) SeedDefaultBooks(ctx context.Context, userID string) (int, error) {
	const op = "seed default books"
	if err := authorize(op, userID); err != nil {
		return 0, err
	}

	count, err := s.store.CountBooks(ctx, userID)
	if err != nil {
		return 0, s.fail(op, userID, err)
	}
	if count > 0 {
		return 0, nil
	}

	now := s.stamp()
	books := make([]entities.Book, 0, len(defaultBooks))
	for _, d := range defaultBooks {
		year := d.year
		books = append(books, entities.Book{
			UserID:          userID,
			Title:           d.title,
			Author:          d.author,
			Genre:           d.genre,
			PublicationYear: &year,
			CoverImage:      d.cover,
			Status:          entities.BookStatusUnread,
			CollectionIDs:   []string{},
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	if err := s.store.CreateBooks(ctx, books); err != nil {
		return 0, s.fail(op, userID, err)
	}

	s.log.Info().Str("user_id", userID).Int("count", len(books)).Msg("seeded default books")
	return len(books), nil
}
