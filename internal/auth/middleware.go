package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mrlokans/librarian/internal/config"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was identified
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeHeader AuthType = "header"
	AuthTypeBearer AuthType = "bearer"
)

var ErrInvalidToken = errors.New("invalid token")

// Middleware resolves the user id of each request.
type Middleware struct {
	config      config.Auth
	log         zerolog.Logger
	publicPaths map[string]bool
}

func NewMiddleware(cfg config.Auth, log zerolog.Logger) *Middleware {
	return &Middleware{
		config: cfg,
		log:    log.With().Str("component", "auth").Logger(),
		publicPaths: map[string]bool{
			"/health": true,
			"/ping":   true,
		},
	}
}

// Handler returns a Gin middleware handler for the configured mode.
func (m *Middleware) Handler() gin.HandlerFunc {
	switch m.config.Mode {
	case config.AuthModeHeader:
		return m.headerHandler()
	case config.AuthModeJWT:
		return m.bearerHandler()
	default:
		return m.noAuthHandler()
	}
}

// noAuthHandler injects the default user for all requests.
func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		setUser(c, m.config.DefaultUserID, AuthTypeNone)
		c.Next()
	}
}

func (m *Middleware) headerHandler() gin.HandlerFunc {
	header := m.config.UserHeader
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(header)); userID != "" {
			setUser(c, userID, AuthTypeHeader)
		}
		c.Next()
	}
}

func (m *Middleware) bearerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization header",
			})
			return
		}

		subject, err := ParseToken(m.config, parts[1])
		if err != nil {
			m.log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		setUser(c, subject, AuthTypeBearer)
		c.Next()
	}
}

// ParseToken verifies an HS256 token and returns its subject.
func ParseToken(cfg config.Auth, tokenString string) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// NewToken signs an HS256 token for userID that expires after ttl.
func NewToken(cfg config.Auth, userID string, ttl time.Duration) (string, error) {
	if cfg.JWTSecret == "" {
		return "", errors.New("no signing secret configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    cfg.JWTIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

func setUser(c *gin.Context, userID string, authType AuthType) {
	c.Set(ContextKeyUserID, userID)
	c.Set(ContextKeyAuthType, authType)
}

// GetUserID retrieves the caller's user id from the context.
// Returns "" when the request carries no identity.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// GetAuthType retrieves how the caller was identified.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
