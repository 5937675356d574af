package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
)

// CollectionService defines the collection operations used by CollectionsController.
type CollectionService interface {
	ListCollections(ctx context.Context, userID string) ([]entities.Collection, error)
	GetCollection(ctx context.Context, userID, id string) (*entities.Collection, error)
	CreateCollection(ctx context.Context, userID string, in library.CollectionInput) (*entities.Collection, error)
	UpdateCollection(ctx context.Context, userID, id string, in library.CollectionUpdate) (*entities.Collection, error)
	DeleteCollection(ctx context.Context, userID, id string) error
	ListBooksInCollection(ctx context.Context, userID, collectionID string) ([]entities.Book, error)
	SetCollectionMembership(ctx context.Context, userID, collectionID string, bookIDs []string) error
}

type CollectionsController struct {
	service CollectionService
}

func NewCollectionsController(service CollectionService) *CollectionsController {
	return &CollectionsController{service: service}
}

// GET /api/collections
func (cc *CollectionsController) ListCollections(c *gin.Context) {
	collections, err := cc.service.ListCollections(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, collections)
}

// GET /api/collections/:id
func (cc *CollectionsController) GetCollection(c *gin.Context) {
	collection, err := cc.service.GetCollection(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

// POST /api/collections
func (cc *CollectionsController) CreateCollection(c *gin.Context) {
	var in library.CollectionInput
	if !bindJSON(c, &in) {
		return
	}

	collection, err := cc.service.CreateCollection(c.Request.Context(), GetUserID(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, collection)
}

// PATCH /api/collections/:id
func (cc *CollectionsController) UpdateCollection(c *gin.Context) {
	var in library.CollectionUpdate
	if !bindJSON(c, &in) {
		return
	}

	collection, err := cc.service.UpdateCollection(c.Request.Context(), GetUserID(c), c.Param("id"), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

// DeleteCollection removes the collection; its books are kept.
// DELETE /api/collections/:id
func (cc *CollectionsController) DeleteCollection(c *gin.Context) {
	if err := cc.service.DeleteCollection(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, "collection deleted")
}

// GET /api/collections/:id/books
func (cc *CollectionsController) ListBooks(c *gin.Context) {
	books, err := cc.service.ListBooksInCollection(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// SetBooks replaces the collection's members with book_ids.
// PUT /api/collections/:id/books
func (cc *CollectionsController) SetBooks(c *gin.Context) {
	var req struct {
		BookIDs []string `json:"book_ids"`
	}
	if !bindJSON(c, &req) {
		return
	}

	err := cc.service.SetCollectionMembership(c.Request.Context(), GetUserID(c), c.Param("id"), req.BookIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, "collection updated")
}
