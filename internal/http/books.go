package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
)

// BookService defines the book operations used by BooksController.
type BookService interface {
	ListBooks(ctx context.Context, userID string, filter library.BookFilter) ([]entities.Book, error)
	GetBook(ctx context.Context, userID, id string) (*entities.Book, error)
	CreateBook(ctx context.Context, userID string, in library.BookInput) (*entities.Book, error)
	UpdateBook(ctx context.Context, userID, id string, in library.BookUpdate) (*entities.Book, error)
	DeleteBook(ctx context.Context, userID, id string) error
	SuggestBook(ctx context.Context, userID string) (*entities.Book, error)
	AddBookToCollections(ctx context.Context, userID, bookID string, collectionIDs []string) error
	RemoveBookFromCollection(ctx context.Context, userID, bookID, collectionID string) error
}

type BooksController struct {
	service BookService
}

func NewBooksController(service BookService) *BooksController {
	return &BooksController{service: service}
}

// ListBooks returns the caller's books, newest first.
// GET /api/books?query=&status=&genre=&collection=&limit=
func (bc *BooksController) ListBooks(c *gin.Context) {
	var filter library.BookFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBadRequest(c, "invalid query parameters")
		return
	}

	books, err := bc.service.ListBooks(c.Request.Context(), GetUserID(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	book, err := bc.service.GetBook(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var in library.BookInput
	if !bindJSON(c, &in) {
		return
	}

	book, err := bc.service.CreateBook(c.Request.Context(), GetUserID(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, book)
}

// UpdateBook applies a partial update.
// PATCH /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	var in library.BookUpdate
	if !bindJSON(c, &in) {
		return
	}

	book, err := bc.service.UpdateBook(c.Request.Context(), GetUserID(c), c.Param("id"), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	if err := bc.service.DeleteBook(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, "book deleted")
}

// SuggestBook returns a random unread book.
// GET /api/books/suggestion
func (bc *BooksController) SuggestBook(c *gin.Context) {
	book, err := bc.service.SuggestBook(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// AddToCollections adds the book to the given collections.
// POST /api/books/:id/collections
func (bc *BooksController) AddToCollections(c *gin.Context) {
	var req struct {
		CollectionIDs []string `json:"collection_ids"`
	}
	if !bindJSON(c, &req) {
		return
	}

	err := bc.service.AddBookToCollections(c.Request.Context(), GetUserID(c), c.Param("id"), req.CollectionIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, "book added to collections")
}

// DELETE /api/books/:id/collections/:collectionId
func (bc *BooksController) RemoveFromCollection(c *gin.Context) {
	err := bc.service.RemoveBookFromCollection(c.Request.Context(), GetUserID(c), c.Param("id"), c.Param("collectionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, "book removed from collection")
}
