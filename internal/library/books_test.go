package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/entities"
)

func dune() BookInput {
	return BookInput{Title: "Dune", Author: "Frank Herbert", Genre: "sci-fi", ISBN: "9780441013593"}
}

func TestCreateAndGetBook(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	in := dune()
	in.Title = "  Dune  "
	in.PublicationYear = 1965
	in.Rating = 4
	created, err := svc.CreateBook(ctx, "alice", in)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.UserID)
	assert.Equal(t, "Dune", created.Title)
	assert.Equal(t, entities.BookStatusUnread, created.Status)
	assert.Nil(t, created.CompletedDate)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := svc.GetBook(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Author, got.Author)
	assert.Equal(t, created.ISBN, got.ISBN)
	require.NotNil(t, got.PublicationYear)
	assert.Equal(t, 1965, *got.PublicationYear)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4, *got.Rating)
	assert.Empty(t, got.CollectionIDs)

	_, err = svc.GetBook(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBook_Validation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(*BookInput)
		field string
	}{
		{"missing title", func(in *BookInput) { in.Title = "   " }, "title"},
		{"missing author", func(in *BookInput) { in.Author = "" }, "author"},
		{"missing genre", func(in *BookInput) { in.Genre = "" }, "genre"},
		{"rating too high", func(in *BookInput) { in.Rating = 6 }, "rating"},
		{"negative rating", func(in *BookInput) { in.Rating = -1 }, "rating"},
		{"unknown status", func(in *BookInput) { in.Status = "abandoned" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := dune()
			tt.edit(&in)

			_, err := svc.CreateBook(ctx, "alice", in)
			require.ErrorIs(t, err, ErrValidation)

			var libErr *Error
			require.True(t, errors.As(err, &libErr))
			assert.Contains(t, libErr.Fields, tt.field)
		})
	}

	books, err := svc.ListBooks(ctx, "alice", BookFilter{})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestCreateBook_CompletedStampsDate(t *testing.T) {
	svc, _ := setupService(t)

	in := dune()
	in.Status = entities.BookStatusCompleted
	book, err := svc.CreateBook(context.Background(), "alice", in)
	require.NoError(t, err)

	require.NotNil(t, book.CompletedDate)
	assert.Equal(t, book.CreatedAt, *book.CompletedDate)
}

func TestCreateBook_Collections(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	picks, err := svc.CreateCollection(ctx, "alice", CollectionInput{Name: "Picks"})
	require.NoError(t, err)
	foreign, err := svc.CreateCollection(ctx, "bob", CollectionInput{Name: "Bob's"})
	require.NoError(t, err)

	in := dune()
	in.CollectionIDs = []string{picks.ID, picks.ID}
	book, err := svc.CreateBook(ctx, "alice", in)
	require.NoError(t, err)
	assert.Equal(t, []string{picks.ID}, book.CollectionIDs)

	in.CollectionIDs = []string{foreign.ID}
	_, err = svc.CreateBook(ctx, "alice", in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListBooks(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.CreateBook(ctx, "alice", dune())
	require.NoError(t, err)
	second, err := svc.CreateBook(ctx, "alice", BookInput{
		Title: "Emma", Author: "Jane Austen", Genre: "fiction", Status: entities.BookStatusInProgress,
	})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, "bob", dune())
	require.NoError(t, err)

	t.Run("owner only, newest first", func(t *testing.T) {
		books, err := svc.ListBooks(ctx, "alice", BookFilter{})
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, second.ID, books[0].ID)
		assert.Equal(t, first.ID, books[1].ID)
		for _, b := range books {
			assert.Equal(t, "alice", b.UserID)
		}
	})

	t.Run("query matches accented titles case-insensitively", func(t *testing.T) {
		emile, err := svc.CreateBook(ctx, "alice", BookInput{Title: "Émile", Author: "Rousseau", Genre: "philosophy"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = svc.DeleteBook(ctx, "alice", emile.ID) })

		books, err := svc.ListBooks(ctx, "alice", BookFilter{Query: "émile"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, emile.ID, books[0].ID)
	})

	t.Run("all means no filter", func(t *testing.T) {
		books, err := svc.ListBooks(ctx, "alice", BookFilter{Status: "all", Genre: "all", Collection: "all"})
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("query matches author case-insensitively", func(t *testing.T) {
		books, err := svc.ListBooks(ctx, "alice", BookFilter{Query: "AUSTEN"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, second.ID, books[0].ID)
	})

	t.Run("query is not a pattern", func(t *testing.T) {
		books, err := svc.ListBooks(ctx, "alice", BookFilter{Query: "%"})
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("status and genre", func(t *testing.T) {
		books, err := svc.ListBooks(ctx, "alice", BookFilter{Status: "in-progress"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, second.ID, books[0].ID)

		books, err = svc.ListBooks(ctx, "alice", BookFilter{Genre: "sci-fi"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, first.ID, books[0].ID)
	})

	t.Run("limit", func(t *testing.T) {
		books, err := svc.ListBooks(ctx, "alice", BookFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, second.ID, books[0].ID)
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, err := svc.ListBooks(ctx, "alice", BookFilter{Limit: -1})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = svc.ListBooks(ctx, "alice", BookFilter{Status: "finished"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpdateBook(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	in := dune()
	in.Rating = 3
	book, err := svc.CreateBook(ctx, "alice", in)
	require.NoError(t, err)

	completed := entities.BookStatusCompleted
	updated, err := svc.UpdateBook(ctx, "alice", book.ID, BookUpdate{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, entities.BookStatusCompleted, updated.Status)
	assert.True(t, updated.UpdatedAt.After(book.UpdatedAt))
	require.NotNil(t, updated.CompletedDate)
	assert.Equal(t, "Dune", updated.Title)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 3, *updated.Rating)

	got, err := svc.GetBook(ctx, "alice", book.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.BookStatusCompleted, got.Status)

	unread := entities.BookStatusUnread
	noRating := 0
	updated, err = svc.UpdateBook(ctx, "alice", book.ID, BookUpdate{Status: &unread, Rating: &noRating})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedDate)
	assert.Nil(t, updated.Rating)

	_, err = svc.UpdateBook(ctx, "bob", book.ID, BookUpdate{Status: &completed})
	assert.ErrorIs(t, err, ErrNotFound)

	blank := " "
	_, err = svc.UpdateBook(ctx, "alice", book.ID, BookUpdate{Title: &blank})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateBook(ctx, "alice", "missing", BookUpdate{Title: &blank})
	assert.ErrorIs(t, err, ErrValidation)

	title := "Dune Messiah"
	_, err = svc.UpdateBook(ctx, "alice", "missing", BookUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBook(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, "alice", dune())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteBook(ctx, "bob", book.ID), ErrNotFound)
	require.NoError(t, svc.DeleteBook(ctx, "alice", book.ID))

	_, err = svc.GetBook(ctx, "alice", book.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteBook(ctx, "alice", book.ID), ErrNotFound)
}

func TestSuggestBook(t *testing.T) {
	svc, _ := setupService(t, WithPicker(func(n int) int { return n - 1 }))
	ctx := context.Background()

	_, err := svc.SuggestBook(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	oldest, err := svc.CreateBook(ctx, "alice", dune())
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, "alice", BookInput{
		Title: "Emma", Author: "Jane Austen", Genre: "fiction", Status: entities.BookStatusCompleted,
	})
	require.NoError(t, err)

	suggestion, err := svc.SuggestBook(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, suggestion.ID)
}

func TestCreateBook_Concurrent(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	const n = 8

	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := dune()
			in.Title = fmt.Sprintf("Book %d", i)
			book, err := svc.CreateBook(ctx, "alice", in)
			errs[i] = err
			if err == nil {
				ids[i] = book.ID
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "duplicate id %s", ids[i])
		seen[ids[i]] = true
	}

	books, err := svc.ListBooks(ctx, "alice", BookFilter{})
	require.NoError(t, err)
	assert.Len(t, books, n)
}

func TestListBooks_OrdersByInstantAcrossOffsets(t *testing.T) {
	svc, clock := setupService(t)
	ctx := context.Background()

	clock.Set(time.Date(2024, 6, 1, 10, 0, 0, 0, time.FixedZone("", 5*60*60)))
	_, err := svc.CreateBook(ctx, "alice", BookInput{Title: "Old", Author: "X", Genre: "fiction"})
	require.NoError(t, err)

	clock.Set(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	_, err = svc.CreateBook(ctx, "alice", BookInput{Title: "New", Author: "X", Genre: "fiction"})
	require.NoError(t, err)

	books, err := svc.ListBooks(ctx, "alice", BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "New", books[0].Title)
	assert.Equal(t, "Old", books[1].Title)
	assert.Equal(t, time.UTC, books[1].CreatedAt.Location())
}
