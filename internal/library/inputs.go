package library

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/mrlokans/librarian/internal/entities"
)

// FilterAll disables a filter field.
const FilterAll = "all"

var (
	statusRule = validation.In(
		entities.BookStatusUnread,
		entities.BookStatusInProgress,
		entities.BookStatusCompleted,
	).Error("must be one of unread, in-progress, completed")
	ratingRules = []validation.Rule{
		validation.Min(1).Error("must be between 1 and 5"),
		validation.Max(5).Error("must be between 1 and 5"),
	}
	yearRules = []validation.Rule{validation.Min(1), validation.Max(9999)}
)

// BookFilter selects books for ListBooks. Status, Genre and Collection
// accept "all" as no filter; Limit 0 returns every match.
type BookFilter struct {
	Query      string `form:"query" json:"query"`
	Status     string `form:"status" json:"status"`
	Genre      string `form:"genre" json:"genre"`
	Collection string `form:"collection" json:"collection"`
	Limit      int    `form:"limit" json:"limit"`
}

func (f BookFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Status, validation.In(
			FilterAll,
			string(entities.BookStatusUnread),
			string(entities.BookStatusInProgress),
			string(entities.BookStatusCompleted),
		)),
		validation.Field(&f.Limit, validation.Min(0)),
	)
}

type BookInput struct {
	Title           string              `json:"title"`
	Author          string              `json:"author"`
	ISBN            string              `json:"isbn"`
	Genre           string              `json:"genre"`
	PublicationYear int                 `json:"publication_year"`
	CoverImage      string              `json:"cover_image"`
	Status          entities.BookStatus `json:"status"`
	Rating          int                 `json:"rating"`
	Notes           string              `json:"notes"`
	CompletedDate   *time.Time          `json:"completed_date"`
	CollectionIDs   []string            `json:"collections"`
}

func (in *BookInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Genre = strings.TrimSpace(in.Genre)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	if in.Status == "" {
		in.Status = entities.BookStatusUnread
	}
	in.CompletedDate = utcPtr(in.CompletedDate)
}

func (in BookInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 512)),
		validation.Field(&in.Author, validation.Required, validation.Length(1, 256)),
		validation.Field(&in.Genre, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.ISBN, validation.Length(0, 20)),
		validation.Field(&in.CoverImage, validation.Length(0, 2048)),
		validation.Field(&in.Status, statusRule),
		validation.Field(&in.Rating, ratingRules...),
		validation.Field(&in.PublicationYear, yearRules...),
	)
}

// BookUpdate is a partial book update; nil fields are left unchanged.
// A rating or publication year of 0 clears the value.
type BookUpdate struct {
	Title           *string              `json:"title"`
	Author          *string              `json:"author"`
	ISBN            *string              `json:"isbn"`
	Genre           *string              `json:"genre"`
	PublicationYear *int                 `json:"publication_year"`
	CoverImage      *string              `json:"cover_image"`
	Status          *entities.BookStatus `json:"status"`
	Rating          *int                 `json:"rating"`
	Notes           *string              `json:"notes"`
	CompletedDate   *time.Time           `json:"completed_date"`
	CollectionIDs   *[]string            `json:"collections"`
}

func (u *BookUpdate) normalize() {
	trimPtr(u.Title)
	trimPtr(u.Author)
	trimPtr(u.ISBN)
	trimPtr(u.Genre)
	trimPtr(u.CoverImage)
	u.CompletedDate = utcPtr(u.CompletedDate)
}

func (u BookUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Title, validation.NilOrNotEmpty, validation.Length(1, 512)),
		validation.Field(&u.Author, validation.NilOrNotEmpty, validation.Length(1, 256)),
		validation.Field(&u.Genre, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&u.ISBN, validation.Length(0, 20)),
		validation.Field(&u.CoverImage, validation.Length(0, 2048)),
		validation.Field(&u.Status, validation.NilOrNotEmpty, statusRule),
		validation.Field(&u.Rating, ratingRules...),
		validation.Field(&u.PublicationYear, yearRules...),
	)
}

type CollectionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (in *CollectionInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Color = strings.TrimSpace(in.Color)
	if in.Color == "" {
		in.Color = entities.DefaultCollectionColor
	}
}

func (in CollectionInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 256)),
		validation.Field(&in.Color, validation.Length(1, 32)),
	)
}

type CollectionUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (u *CollectionUpdate) normalize() {
	trimPtr(u.Name)
	trimPtr(u.Color)
}

func (u CollectionUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.NilOrNotEmpty, validation.Length(1, 256)),
		validation.Field(&u.Color, validation.NilOrNotEmpty, validation.Length(1, 32)),
	)
}

type LoanInput struct {
	BookID        string    `json:"book_id"`
	BorrowerName  string    `json:"borrower_name"`
	BorrowerEmail string    `json:"borrower_email"`
	LoanDate      time.Time `json:"loan_date"`
	DueDate       time.Time `json:"due_date"`
	Notes         string    `json:"notes"`
}

func (in *LoanInput) normalize(now time.Time) {
	in.BookID = strings.TrimSpace(in.BookID)
	in.BorrowerName = strings.TrimSpace(in.BorrowerName)
	in.BorrowerEmail = strings.TrimSpace(in.BorrowerEmail)
	if in.LoanDate.IsZero() {
		in.LoanDate = now
	}
	in.LoanDate = in.LoanDate.UTC()
	in.DueDate = in.DueDate.UTC()
}

func (in LoanInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.BookID, validation.Required),
		validation.Field(&in.BorrowerName, validation.Required, validation.Length(1, 256)),
		validation.Field(&in.BorrowerEmail, is.EmailFormat),
		validation.Field(&in.LoanDate, validation.Required),
		validation.Field(&in.DueDate,
			validation.Required,
			validation.Min(in.LoanDate).Error("must not be before the loan date"),
		),
	)
}

// LoanUpdate is a partial loan update. A zero ReturnedDate reopens the loan.
type LoanUpdate struct {
	BookID        *string    `json:"book_id"`
	BorrowerName  *string    `json:"borrower_name"`
	BorrowerEmail *string    `json:"borrower_email"`
	LoanDate      *time.Time `json:"loan_date"`
	DueDate       *time.Time `json:"due_date"`
	ReturnedDate  *time.Time `json:"returned_date"`
	Notes         *string    `json:"notes"`
}

func (u *LoanUpdate) normalize() {
	trimPtr(u.BookID)
	trimPtr(u.BorrowerName)
	trimPtr(u.BorrowerEmail)
	u.LoanDate = utcPtr(u.LoanDate)
	u.DueDate = utcPtr(u.DueDate)
	u.ReturnedDate = utcPtr(u.ReturnedDate)
}

// applyTo overlays the update on an existing loan so the merged result can
// be validated as a whole.
func (u LoanUpdate) applyTo(loan entities.Loan) LoanInput {
	in := LoanInput{
		BookID:        loan.BookID,
		BorrowerName:  loan.BorrowerName,
		BorrowerEmail: loan.BorrowerEmail,
		LoanDate:      loan.LoanDate,
		DueDate:       loan.DueDate,
		Notes:         loan.Notes,
	}
	if u.BookID != nil {
		in.BookID = *u.BookID
	}
	if u.BorrowerName != nil {
		in.BorrowerName = *u.BorrowerName
	}
	if u.BorrowerEmail != nil {
		in.BorrowerEmail = *u.BorrowerEmail
	}
	if u.LoanDate != nil {
		in.LoanDate = *u.LoanDate
	}
	if u.DueDate != nil {
		in.DueDate = *u.DueDate
	}
	if u.Notes != nil {
		in.Notes = *u.Notes
	}
	return in
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
