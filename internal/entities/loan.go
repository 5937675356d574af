package entities

import "time"

type LoanState string

const (
	LoanStateActive   LoanState = "active"
	LoanStateOverdue  LoanState = "overdue"
	LoanStateReturned LoanState = "returned"
)

type Loan struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	UserID        string     `gorm:"index;size:255;not null" json:"user_id" bson:"userId"`
	BookID        string     `gorm:"index;size:36;not null" json:"book_id" bson:"bookId"`
	BorrowerName  string     `gorm:"size:256;not null" json:"borrower_name" bson:"borrowerName"`
	BorrowerEmail string     `gorm:"size:255" json:"borrower_email,omitempty" bson:"borrowerEmail,omitempty"`
	LoanDate      time.Time  `gorm:"index" json:"loan_date" bson:"loanDate"`
	DueDate       time.Time  `json:"due_date" bson:"dueDate"`
	ReturnedDate  *time.Time `json:"returned_date,omitempty" bson:"returnedDate,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updatedAt"`

	// Populated on reads; nil when the referenced book no longer exists.
	Book *BookSummary `gorm:"-" json:"book,omitempty" bson:"-"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsActive reports whether the book has not been returned yet.
func (l *Loan) IsActive() bool {
	return l.ReturnedDate == nil
}

// IsOverdue reports whether the loan is active and past its due date.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsActive() && now.After(l.DueDate)
}

// State classifies the loan at the given instant.
func (l *Loan) State(now time.Time) LoanState {
	switch {
	case !l.IsActive():
		return LoanStateReturned
	case l.IsOverdue(now):
		return LoanStateOverdue
	default:
		return LoanStateActive
	}
}
