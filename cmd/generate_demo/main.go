// Command generate_demo creates a demo SQLite library with public domain books,
// collections and loans.
// Usage: go run ./cmd/generate_demo [-db path/to/demo.db] [-user demo]
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/connector"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/logging"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	userID := flag.String("user", "demo", "owner of the demo library")
	flag.Parse()

	log := logging.New(config.Log{Level: "info", Format: "console"}, os.Stderr)
	log.Info().Str("path", *dbPath).Msg("generating demo database")

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create demo directory")
	}
	// Start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatal().Err(err).Msg("failed to remove existing demo database")
	}

	ctx := context.Background()
	st := database.NewStore(connector.New(database.Dialer(config.Store{URL: *dbPath}, log)))
	defer st.Close(ctx)

	svc := library.NewService(st, log)
	if err := generate(ctx, svc, *userID, time.Now(), log); err != nil {
		log.Fatal().Err(err).Msg("failed to generate demo database")
	}
	log.Info().Msg("demo database generated successfully")
}

type demoBook struct {
	input       library.BookInput
	collections []string
}

func generate(ctx context.Context, svc *library.Service, userID string, now time.Time, log zerolog.Logger) error {
	collections := map[string]string{}
	for _, in := range []library.CollectionInput{
		{Name: "Philosophy", Description: "Old ideas that still hold", Color: "purple"},
		{Name: "Classics", Description: "Public domain fiction", Color: "amber"},
		{Name: "Lent out", Color: "red"},
	} {
		c, err := svc.CreateCollection(ctx, userID, in)
		if err != nil {
			return err
		}
		collections[c.Name] = c.ID
	}

	var saved []*entities.Book
	for _, b := range demoBooks(now) {
		in := b.input
		for _, name := range b.collections {
			in.CollectionIDs = append(in.CollectionIDs, collections[name])
		}
		book, err := svc.CreateBook(ctx, userID, in)
		if err != nil {
			log.Warn().Err(err).Str("title", in.Title).Msg("failed to save book")
			continue
		}
		log.Info().Str("title", book.Title).Str("author", book.Author).Msg("saved")
		saved = append(saved, book)
	}

	if len(saved) == 0 {
		return nil
	}
	lent := saved[len(saved)-1]
	if _, err := svc.CreateLoan(ctx, userID, library.LoanInput{
		BookID:        lent.ID,
		BorrowerName:  "Ada Lovelace",
		BorrowerEmail: "ada@example.com",
		LoanDate:      now.AddDate(0, 0, -21),
		DueDate:       now.AddDate(0, 0, -7),
		Notes:         "Promised to bring it back after the holidays",
	}); err != nil {
		return err
	}
	return svc.AddBookToCollections(ctx, userID, lent.ID, []string{collections["Lent out"]})
}

func demoBooks(now time.Time) []demoBook {
	completed := entities.BookStatusCompleted
	inProgress := entities.BookStatusInProgress

	return []demoBook{
		{
			collections: []string{"Philosophy"},
			input: library.BookInput{
				Title:           "Meditations",
				Author:          "Marcus Aurelius",
				Genre:           "philosophy",
				PublicationYear: 180,
				Status:          completed,
				Rating:          5,
				Notes:           "You have power over your mind - not outside events.",
				CompletedDate:   ptr(now.AddDate(0, -2, 0)),
			},
		},
		{
			collections: []string{"Philosophy"},
			input: library.BookInput{
				Title:           "Letters from a Stoic",
				Author:          "Seneca",
				Genre:           "philosophy",
				PublicationYear: 65,
				Status:          inProgress,
			},
		},
		{
			collections: []string{"Classics"},
			input: library.BookInput{
				Title:           "Pride and Prejudice",
				Author:          "Jane Austen",
				Genre:           "fiction",
				PublicationYear: 1813,
				Status:          completed,
				Rating:          4,
				CompletedDate:   ptr(now.AddDate(0, -1, 0)),
			},
		},
		{
			collections: []string{"Classics"},
			input: library.BookInput{
				Title:           "Moby-Dick",
				Author:          "Herman Melville",
				Genre:           "fiction",
				PublicationYear: 1851,
			},
		},
		{
			input: library.BookInput{
				Title:           "On the Origin of Species",
				Author:          "Charles Darwin",
				Genre:           "science",
				PublicationYear: 1859,
			},
		},
		{
			collections: []string{"Classics"},
			input: library.BookInput{
				Title:           "Frankenstein",
				Author:          "Mary Shelley",
				Genre:           "fiction",
				PublicationYear: 1818,
				Status:          completed,
				Rating:          4,
			},
		},
	}
}

func ptr[T any](v T) *T { return &v }
