package entities

import "time"

type BookStatus string

const (
	BookStatusUnread     BookStatus = "unread"
	BookStatusInProgress BookStatus = "in-progress"
	BookStatusCompleted  BookStatus = "completed"
)

// BookStatuses lists every valid status in display order.
var BookStatuses = []BookStatus{BookStatusUnread, BookStatusInProgress, BookStatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s BookStatus) Valid() bool {
	for _, known := range BookStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Book struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	UserID          string     `gorm:"index;size:255;not null" json:"user_id" bson:"userId"`
	Title           string     `gorm:"index;size:512;not null" json:"title" bson:"title"`
	Author          string     `gorm:"index;size:256;not null" json:"author" bson:"author"`
	ISBN            string     `gorm:"size:20" json:"isbn,omitempty" bson:"isbn,omitempty"`
	Genre           string     `gorm:"index;size:100;not null" json:"genre" bson:"genre"`
	PublicationYear *int       `json:"publication_year,omitempty" bson:"publicationYear,omitempty"`
	CoverImage      string     `gorm:"size:2048" json:"cover_image,omitempty" bson:"coverImage,omitempty"`
	Status          BookStatus `gorm:"size:20;default:'unread'" json:"status" bson:"status"`
	Rating          *int       `json:"rating,omitempty" bson:"rating,omitempty"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty" bson:"notes,omitempty"`
	CompletedDate   *time.Time `json:"completed_date,omitempty" bson:"completedDate,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updatedAt"`

	// Membership set. Stored inline by the document store and in
	// book_collections by the relational store.
	CollectionIDs []string `gorm:"-" json:"collections" bson:"collections"`
}

func (Book) TableName() string {
	return "books"
}

// InCollection reports whether the book is a member of the given collection.
func (b *Book) InCollection(collectionID string) bool {
	for _, id := range b.CollectionIDs {
		if id == collectionID {
			return true
		}
	}
	return false
}

// BookCollection is a membership row of the relational store.
type BookCollection struct {
	BookID       string    `gorm:"primaryKey;size:36"`
	CollectionID string    `gorm:"primaryKey;size:36;index"`
	UserID       string    `gorm:"index;size:255;not null"`
	CreatedAt    time.Time
}

func (BookCollection) TableName() string {
	return "book_collections"
}

// BookSummary is the slice of a book denormalized into loan listings.
type BookSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	CoverImage string `json:"cover_image,omitempty"`
}

// Summary returns the display fields of the book.
func (b *Book) Summary() *BookSummary {
	return &BookSummary{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		CoverImage: b.CoverImage,
	}
}
