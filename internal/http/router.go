package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(logging.GinLogger(cfg.Logger))
	router.Use(gin.Recovery())

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	health := NewHealthController(cfg.Store, cfg.Version)
	books := NewBooksController(cfg.Library)
	collections := NewCollectionsController(cfg.Library)
	loans := NewLoansController(cfg.Library)
	stats := NewStatsController(cfg.Library, cfg.SeedOnVisit)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)

	api := router.Group("/api")

	api.GET("/dashboard", stats.Dashboard)
	api.GET("/stats", stats.Stats)
	api.GET("/stats/goal", stats.ReadingGoal)

	// Books
	api.GET("/books", books.ListBooks)
	api.POST("/books", books.CreateBook)
	api.GET("/books/suggestion", books.SuggestBook)
	api.GET("/books/:id", books.GetBook)
	api.PATCH("/books/:id", books.UpdateBook)
	api.DELETE("/books/:id", books.DeleteBook)
	api.POST("/books/:id/collections", books.AddToCollections)
	api.DELETE("/books/:id/collections/:collectionId", books.RemoveFromCollection)

	// Collections
	api.GET("/collections", collections.ListCollections)
	api.POST("/collections", collections.CreateCollection)
	api.GET("/collections/:id", collections.GetCollection)
	api.PATCH("/collections/:id", collections.UpdateCollection)
	api.DELETE("/collections/:id", collections.DeleteCollection)
	api.GET("/collections/:id/books", collections.ListBooks)
	api.PUT("/collections/:id/books", collections.SetBooks)

	// Loans
	api.GET("/loans", loans.ListLoans)
	api.POST("/loans", loans.CreateLoan)
	api.GET("/loans/:id", loans.GetLoan)
	api.PATCH("/loans/:id", loans.UpdateLoan)
	api.DELETE("/loans/:id", loans.DeleteLoan)
	api.POST("/loans/:id/return", loans.MarkReturned)

	return router
}
