package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone   AuthMode = "none"   // Every request acts as Auth.DefaultUserID (default)
	AuthModeHeader AuthMode = "header" // Trust the user id header set by an upstream identity proxy
	AuthModeJWT    AuthMode = "jwt"    // Verify an HS256 bearer token and use its subject
)

type StoreDriver string

const (
	StoreDriverSQLite   StoreDriver = "sqlite"
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverMongo    StoreDriver = "mongo"
)

type (
	Config struct {
		HTTP
		Global
		Store
		Auth
		Log
		Library
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Store struct {
		// Driver overrides the driver inferred from URL.
		Driver         StoreDriver
		URL            string
		ConnectTimeout time.Duration

		MongoDatabase     string
		MongoTransactions bool // Requires a replica set
	}
	Auth struct {
		Mode          AuthMode
		DefaultUserID string
		UserHeader    string
		JWTSecret     string
		JWTIssuer     string
	}
	Log struct {
		Level  string
		Format string // "json" or "console"
	}
	Library struct {
		ReadingGoal int
		SeedOnVisit bool
	}
)

// ResolveDriver returns the explicit driver, or infers it from the URL scheme.
// Anything that is not a mongo or postgres URL is treated as an SQLite path.
func (s Store) ResolveDriver() StoreDriver {
	if s.Driver != "" {
		return s.Driver
	}
	url := strings.ToLower(s.URL)
	switch {
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return StoreDriverMongo
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return StoreDriverPostgres
	default:
		return StoreDriverSQLite
	}
}

// getDatabaseURL returns the connection string, checking both new and legacy env vars
func getDatabaseURL(v *viper.Viper) string {
	if url := v.GetString("DATABASE_URL"); url != "" {
		return url
	}
	return v.GetString("MONGODB_URI")
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	// Store defaults. DATABASE_URL has none on purpose: the connector
	// reports it missing on first use.
	v.SetDefault("store_driver", "")
	v.SetDefault("store_connect_timeout", "10s")
	v.SetDefault("mongodb_database", "librarian")
	v.SetDefault("mongodb_transactions", false)

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_default_user_id", "local")
	v.SetDefault("auth_user_header", "X-User-ID")
	v.SetDefault("auth_jwt_secret", "")
	v.SetDefault("auth_jwt_issuer", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("reading_goal", 12)
	v.SetDefault("seed_on_visit", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Store: Store{
			Driver:            StoreDriver(v.GetString("STORE_DRIVER")),
			URL:               getDatabaseURL(v),
			ConnectTimeout:    v.GetDuration("STORE_CONNECT_TIMEOUT"),
			MongoDatabase:     v.GetString("MONGODB_DATABASE"),
			MongoTransactions: v.GetBool("MONGODB_TRANSACTIONS"),
		},
		Auth: Auth{
			Mode:          AuthMode(v.GetString("AUTH_MODE")),
			DefaultUserID: v.GetString("AUTH_DEFAULT_USER_ID"),
			UserHeader:    v.GetString("AUTH_USER_HEADER"),
			JWTSecret:     v.GetString("AUTH_JWT_SECRET"),
			JWTIssuer:     v.GetString("AUTH_JWT_ISSUER"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Library: Library{
			ReadingGoal: v.GetInt("READING_GOAL"),
			SeedOnVisit: v.GetBool("SEED_ON_VISIT"),
		},
	}
}
