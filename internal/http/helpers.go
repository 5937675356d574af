package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/library"
)

// GetUserID extracts the caller's user id from the Gin context.
// Returns "" when the request carries no identity.
func GetUserID(c *gin.Context) string {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "not_found"
	CodeValidation       = "validation_failed"
	CodeStoreUnavailable = "store_unavailable"
	CodeInternal         = "internal"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeValidation})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error().Err(err).Str("context", context).Msg("internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal})
}

// respondServiceError maps a library error to its HTTP status.
func respondServiceError(c *gin.Context, err error) {
	var libErr *library.Error
	if !errors.As(err, &libErr) {
		respondInternalError(c, err, c.FullPath())
		return
	}

	resp := ErrorResponse{Error: libErr.Error()}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, library.ErrUnauthorized):
		status, resp.Code = http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, library.ErrNotFound):
		status, resp.Code = http.StatusNotFound, CodeNotFound
	case errors.Is(err, library.ErrValidation):
		status, resp.Code = http.StatusBadRequest, CodeValidation
		if len(libErr.Fields) > 0 {
			resp.Details = libErr.Fields
		}
	case errors.Is(err, library.ErrConnection):
		status, resp.Code = http.StatusServiceUnavailable, CodeStoreUnavailable
	default:
		resp.Code = CodeInternal
	}
	c.JSON(status, resp)
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// bindJSON decodes the request body or responds with a 400 error and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBadRequest(c, "invalid request body")
		return false
	}
	return true
}
