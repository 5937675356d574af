// Package auth resolves the caller's user id for HTTP requests.
//
// Identity is established outside the application. Three modes are supported:
//   - "none": every request acts as the configured default user (default)
//   - "header": an upstream identity proxy sets the user id header
//   - "jwt": an HS256 bearer token is verified and its subject is the user id
//
// # Configuration
//
//	AUTH_MODE=none|header|jwt
//	AUTH_DEFAULT_USER_ID=local     # Used in "none" mode
//	AUTH_USER_HEADER=X-User-ID     # Used in "header" mode
//	AUTH_JWT_SECRET=<secret>       # Required in "jwt" mode
//	AUTH_JWT_ISSUER=<issuer>       # Optional, checked when set
//
// # Usage
//
//	router.Use(auth.NewMiddleware(cfg.Auth, logger).Handler())
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c)
//
// A request without identity is not rejected here: it reaches the handler
// with an empty user id and the library service answers it as unauthorized.
// Only a bearer token that fails verification is rejected by the middleware.
package auth
