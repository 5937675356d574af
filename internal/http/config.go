package http

import (
	"github.com/rs/zerolog"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/library"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Library *library.Service
	Store   Pinger

	// Identity resolution. Nil injects no user, so every API call is unauthorized.
	AuthMiddleware *auth.Middleware

	Logger zerolog.Logger

	// Seed an empty library when the dashboard is opened
	SeedOnVisit bool

	// Application info
	Version string
}
