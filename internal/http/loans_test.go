package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/entities"
)

func TestLoansController(t *testing.T) {
	server := setupTestServer(t)
	book := createBook(t, server, "alice", "Dune", "sci-fi")

	now := time.Now().UTC()
	w := server.do(t, http.MethodPost, "/api/loans", "alice", map[string]any{
		"book_id":        book.ID,
		"borrower_name":  "Carol",
		"borrower_email": "carol@example.com",
		"loan_date":      now.AddDate(0, 0, -14),
		"due_date":       now.AddDate(0, 0, -1),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loan := decode[LoanResponse](t, w)
	assert.Equal(t, entities.LoanStateOverdue, loan.State)
	require.NotNil(t, loan.Book)
	assert.Equal(t, "Dune", loan.Book.Title)

	t.Run("list", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/api/loans", "alice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		loans := decode[[]LoanResponse](t, w)
		require.Len(t, loans, 1)
		assert.Equal(t, loan.ID, loans[0].ID)

		w = server.do(t, http.MethodGet, "/api/loans", "bob", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("foreign book", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/api/loans", "bob", map[string]any{
			"book_id":       book.ID,
			"borrower_name": "Carol",
			"due_date":      now.AddDate(0, 0, 7),
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("patch", func(t *testing.T) {
		w := server.do(t, http.MethodPatch, "/api/loans/"+loan.ID, "alice", map[string]any{
			"due_date": now.AddDate(0, 0, 7),
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, entities.LoanStateActive, decode[LoanResponse](t, w).State)
	})

	t.Run("return", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/api/loans/"+loan.ID+"/return", "alice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		returned := decode[LoanResponse](t, w)
		assert.Equal(t, entities.LoanStateReturned, returned.State)
		assert.NotNil(t, returned.ReturnedDate)

		w = server.do(t, http.MethodGet, "/api/loans/"+loan.ID, "alice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, entities.LoanStateReturned, decode[LoanResponse](t, w).State)
	})

	t.Run("delete", func(t *testing.T) {
		w := server.do(t, http.MethodDelete, "/api/loans/"+loan.ID, "bob", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = server.do(t, http.MethodDelete, "/api/loans/"+loan.ID, "alice", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = server.do(t, http.MethodGet, "/api/loans/"+loan.ID, "alice", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
