package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
)

// LoanService defines the loan operations used by LoansController.
type LoanService interface {
	ListLoans(ctx context.Context, userID string) ([]entities.Loan, error)
	GetLoan(ctx context.Context, userID, id string) (*entities.Loan, error)
	CreateLoan(ctx context.Context, userID string, in library.LoanInput) (*entities.Loan, error)
	UpdateLoan(ctx context.Context, userID, id string, in library.LoanUpdate) (*entities.Loan, error)
	MarkReturned(ctx context.Context, userID, id string) (*entities.Loan, error)
	DeleteLoan(ctx context.Context, userID, id string) error
	LoanState(loan *entities.Loan) entities.LoanState
}

// LoanResponse is a loan with its state at response time.
type LoanResponse struct {
	entities.Loan
	State entities.LoanState `json:"state"`
}

type LoansController struct {
	service LoanService
}

func NewLoansController(service LoanService) *LoansController {
	return &LoansController{service: service}
}

func (lc *LoansController) toResponse(loan *entities.Loan) LoanResponse {
	return LoanResponse{Loan: *loan, State: lc.service.LoanState(loan)}
}

// ListLoans returns the caller's loans, newest loan date first.
// GET /api/loans
func (lc *LoansController) ListLoans(c *gin.Context) {
	loans, err := lc.service.ListLoans(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]LoanResponse, 0, len(loans))
	for i := range loans {
		resp = append(resp, lc.toResponse(&loans[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/loans/:id
func (lc *LoansController) GetLoan(c *gin.Context) {
	loan, err := lc.service.GetLoan(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lc.toResponse(loan))
}

// POST /api/loans
func (lc *LoansController) CreateLoan(c *gin.Context) {
	var in library.LoanInput
	if !bindJSON(c, &in) {
		return
	}

	loan, err := lc.service.CreateLoan(c.Request.Context(), GetUserID(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, lc.toResponse(loan))
}

// PATCH /api/loans/:id
func (lc *LoansController) UpdateLoan(c *gin.Context) {
	var in library.LoanUpdate
	if !bindJSON(c, &in) {
		return
	}

	loan, err := lc.service.UpdateLoan(c.Request.Context(), GetUserID(c), c.Param("id"), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lc.toResponse(loan))
}

// MarkReturned closes the loan now.
// POST /api/loans/:id/return
func (lc *LoansController) MarkReturned(c *gin.Context) {
	loan, err := lc.service.MarkReturned(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lc.toResponse(loan))
}

// DELETE /api/loans/:id
func (lc *LoansController) DeleteLoan(c *gin.Context) {
	if err := lc.service.DeleteLoan(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, "loan deleted")
}
