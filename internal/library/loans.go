package library

import (
	"context"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

// ListLoans returns the caller's loans, newest loan date first.
func (s *Service) ListLoans(ctx context.Context, userID string) ([]entities.Loan, error) {
	const op = "fetch loans"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}

	loans, err := s.store.ListLoans(ctx, userID)
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return loans, nil
}

func (s *Service) GetLoan(ctx context.Context, userID, id string) (*entities.Loan, error) {
	const op = "fetch loan"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}

	loan, err := s.store.GetLoan(ctx, userID, id)
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return loan, nil
}

// CreateLoan records a loan of an owned book. The loan date defaults to now.
func (s *Service) CreateLoan(ctx context.Context, userID string, in LoanInput) (*entities.Loan, error) {
	const op = "create loan"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}
	now := s.stamp()
	in.normalize(now)
	if err := in.Validate(); err != nil {
		return nil, invalid(op, err)
	}

	if _, err := s.store.GetBook(ctx, userID, in.BookID); err != nil {
		return nil, s.fail(op, userID, err)
	}

	loan := &entities.Loan{
		UserID:        userID,
		BookID:        in.BookID,
		BorrowerName:  in.BorrowerName,
		BorrowerEmail: in.BorrowerEmail,
		LoanDate:      in.LoanDate,
		DueDate:       in.DueDate,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateLoan(ctx, loan); err != nil {
		return nil, s.fail(op, userID, err)
	}
	s.log.Debug().Str("user_id", userID).Str("loan_id", loan.ID).Str("book_id", loan.BookID).Msg("loan created")
	return loan, nil
}

func (s *Service) UpdateLoan(ctx context.Context, userID, id string, in LoanUpdate) (*entities.Loan, error) {
	const op = "update loan"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}
	in.normalize()

	existing, err := s.store.GetLoan(ctx, userID, id)
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	if err := in.applyTo(*existing).Validate(); err != nil {
		return nil, invalid(op, err)
	}
	if in.BookID != nil && *in.BookID != existing.BookID {
		if _, err := s.store.GetBook(ctx, userID, *in.BookID); err != nil {
			return nil, s.fail(op, userID, err)
		}
	}

	loan, err := s.store.UpdateLoan(ctx, userID, id, store.LoanPatch{
		BookID:        in.BookID,
		BorrowerName:  in.BorrowerName,
		BorrowerEmail: in.BorrowerEmail,
		Notes:         in.Notes,
		LoanDate:      in.LoanDate,
		DueDate:       in.DueDate,
		ReturnedDate:  in.ReturnedDate,
		UpdatedAt:     s.stamp(),
	})
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return loan, nil
}

// MarkReturned closes the loan with a returned date of now.
func (s *Service) MarkReturned(ctx context.Context, userID, id string) (*entities.Loan, error) {
	const op = "mark loan returned"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}

	now := s.stamp()
	loan, err := s.store.UpdateLoan(ctx, userID, id, store.LoanPatch{
		ReturnedDate: &now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	return loan, nil
}

func (s *Service) DeleteLoan(ctx context.Context, userID, id string) error {
	const op = "delete loan"
	if err := authorize(op, userID); err != nil {
		return err
	}
	if err := s.store.DeleteLoan(ctx, userID, id); err != nil {
		return s.fail(op, userID, err)
	}
	return nil
}

// LoanState classifies a loan against the service clock.
func (s *Service) LoanState(loan *entities.Loan) entities.LoanState {
	return loan.State(s.now())
}
