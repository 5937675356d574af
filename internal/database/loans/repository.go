// Package loans provides relational storage for book loans.
package loans

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/connector"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

var _ store.LoanStore = (*Repository)(nil)

// Repository handles all loan database operations.
type Repository struct {
	conn *connector.Lazy[*gorm.DB]
}

// NewRepository creates a new loans repository.
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

// ListLoans returns the user's loans, most recent loan date first.
func (r *Repository) ListLoans(ctx context.Context, userID string) ([]entities.Loan, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var loans []entities.Loan
	if err := db.Where("user_id = ?", userID).Order("loan_date DESC").Find(&loans).Error; err != nil {
		return nil, err
	}
	if err := attachBooks(db, userID, loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// GetLoan retrieves a loan owned by the user.
func (r *Repository) GetLoan(ctx context.Context, userID, id string) (*entities.Loan, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	return getLoan(db, userID, id)
}

// CreateLoan inserts a loan. A missing id is generated.
func (r *Repository) CreateLoan(ctx context.Context, loan *entities.Loan) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	if loan.ID == "" {
		loan.ID = uuid.NewString()
	}
	if err := db.Create(loan).Error; err != nil {
		return err
	}
	loans := []entities.Loan{*loan}
	if err := attachBooks(db, loan.UserID, loans); err != nil {
		return err
	}
	loan.Book = loans[0].Book
	return nil
}

// UpdateLoan applies patch to a loan owned by the user.
func (r *Repository) UpdateLoan(ctx context.Context, userID, id string, patch store.LoanPatch) (*entities.Loan, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": patch.UpdatedAt}
	if patch.BookID != nil {
		updates["book_id"] = *patch.BookID
	}
	if patch.BorrowerName != nil {
		updates["borrower_name"] = *patch.BorrowerName
	}
	if patch.BorrowerEmail != nil {
		updates["borrower_email"] = *patch.BorrowerEmail
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if patch.LoanDate != nil {
		updates["loan_date"] = *patch.LoanDate
	}
	if patch.DueDate != nil {
		updates["due_date"] = *patch.DueDate
	}
	if patch.ReturnedDate != nil {
		if patch.ReturnedDate.IsZero() {
			updates["returned_date"] = nil
		} else {
			updates["returned_date"] = *patch.ReturnedDate
		}
	}

	result := db.Model(&entities.Loan{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return getLoan(db, userID, id)
}

// DeleteLoan removes a loan owned by the user.
func (r *Repository) DeleteLoan(ctx context.Context, userID, id string) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Loan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func getLoan(db *gorm.DB, userID, id string) (*entities.Loan, error) {
	var loan entities.Loan
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	loans := []entities.Loan{loan}
	if err := attachBooks(db, userID, loans); err != nil {
		return nil, err
	}
	return &loans[0], nil
}

// attachBooks resolves each loan's book reference into a summary.
func attachBooks(db *gorm.DB, userID string, loans []entities.Loan) error {
	if len(loans) == 0 {
		return nil
	}

	ids := make([]string, 0, len(loans))
	for _, loan := range loans {
		ids = append(ids, loan.BookID)
	}
	ids = store.UniqueIDs(ids)

	var books []entities.Book
	if err := db.Select("id", "title", "author", "cover_image").
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&books).Error; err != nil {
		return err
	}

	byID := make(map[string]*entities.BookSummary, len(books))
	for i := range books {
		byID[books[i].ID] = books[i].Summary()
	}
	for i := range loans {
		loans[i].Book = byID[loans[i].BookID]
	}
	return nil
}
