// Package store defines the persistence contract shared by the relational
// (internal/database) and document (internal/mongostore) backends.
//
// Every method takes the owning user id and filters by it together with the
// entity id, so a record owned by someone else is indistinguishable from a
// missing one: both yield ErrNotFound.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/mrlokans/librarian/internal/entities"
)

// ErrNotFound is returned when no record matches the owner and id.
var ErrNotFound = errors.New("record not found")

// BookFilter narrows ListBooks. Zero values mean "no filter".
type BookFilter struct {
	Query        string
	Status       entities.BookStatus
	Genre        string
	CollectionID string
	Limit        int
}

// BookPatch carries the fields of a partial book update. Nil pointers are left
// untouched. Zero PublicationYear, Rating or CompletedDate clear the column.
type BookPatch struct {
	Title           *string
	Author          *string
	ISBN            *string
	Genre           *string
	CoverImage      *string
	Notes           *string
	Status          *entities.BookStatus
	PublicationYear *int
	Rating          *int
	CompletedDate   *time.Time
	CollectionIDs   *[]string
	UpdatedAt       time.Time
}

type CollectionPatch struct {
	Name        *string
	Description *string
	Color       *string
	UpdatedAt   time.Time
}

// LoanPatch carries the fields of a partial loan update. A zero ReturnedDate
// reopens the loan.
type LoanPatch struct {
	BookID        *string
	BorrowerName  *string
	BorrowerEmail *string
	Notes         *string
	LoanDate      *time.Time
	DueDate       *time.Time
	ReturnedDate  *time.Time
	UpdatedAt     time.Time
}

type BookStore interface {
	ListBooks(ctx context.Context, userID string, filter BookFilter) ([]entities.Book, error)
	GetBook(ctx context.Context, userID, id string) (*entities.Book, error)
	CreateBook(ctx context.Context, book *entities.Book) error
	CreateBooks(ctx context.Context, books []entities.Book) error
	UpdateBook(ctx context.Context, userID, id string, patch BookPatch) (*entities.Book, error)
	DeleteBook(ctx context.Context, userID, id string) error
	CountBooks(ctx context.Context, userID string) (int64, error)
	// AddBookToCollections stamps new membership rows with at.
	AddBookToCollections(ctx context.Context, userID, bookID string, collectionIDs []string, at time.Time) error
	RemoveBookFromCollection(ctx context.Context, userID, bookID, collectionID string) error
}

type CollectionStore interface {
	ListCollections(ctx context.Context, userID string) ([]entities.Collection, error)
	GetCollection(ctx context.Context, userID, id string) (*entities.Collection, error)
	CreateCollection(ctx context.Context, collection *entities.Collection) error
	UpdateCollection(ctx context.Context, userID, id string, patch CollectionPatch) (*entities.Collection, error)
	// DeleteCollection removes the collection and its id from every owned book.
	DeleteCollection(ctx context.Context, userID, id string) error
	// SetCollectionMembership makes bookIDs the exact member list of the
	// collection. Ids of books the user does not own are ignored.
	SetCollectionMembership(ctx context.Context, userID, collectionID string, bookIDs []string, at time.Time) error
}

type LoanStore interface {
	// ListLoans returns loans newest loan date first, each with its book summary.
	ListLoans(ctx context.Context, userID string) ([]entities.Loan, error)
	GetLoan(ctx context.Context, userID, id string) (*entities.Loan, error)
	CreateLoan(ctx context.Context, loan *entities.Loan) error
	UpdateLoan(ctx context.Context, userID, id string, patch LoanPatch) (*entities.Loan, error)
	DeleteLoan(ctx context.Context, userID, id string) error
}

// Store is the full persistence surface used by the library service.
type Store interface {
	BookStore
	CollectionStore
	LoanStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// UniqueIDs returns ids without blanks or duplicates, preserving order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
