package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/connector"
	"github.com/mrlokans/librarian/internal/database"
	http_controllers "github.com/mrlokans/librarian/internal/http"
	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/mongostore"
	"github.com/mrlokans/librarian/internal/store"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// NewStore picks the backend for the configured driver. Nothing is dialed
// until the first operation.
func NewStore(cfg config.Store, log zerolog.Logger) (store.Store, error) {
	switch driver := cfg.ResolveDriver(); driver {
	case config.StoreDriverMongo:
		return mongostore.NewStore(connector.New(mongostore.Dialer(cfg, log)), cfg.MongoTransactions), nil
	case config.StoreDriverSQLite, config.StoreDriverPostgres:
		return database.NewStore(connector.New(database.Dialer(cfg, log))), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// NewService builds the library service with the configured defaults.
func NewService(cfg *config.Config, st store.Store, log zerolog.Logger) *library.Service {
	return library.NewService(st, log, library.WithReadingGoal(cfg.Library.ReadingGoal))
}

func Serve(router *gin.Engine, cfg *config.Config, log zerolog.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Dur("timeout", timeout).Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info().Msg("server exiting")
	return nil
}

func Run(cfg *config.Config, version string, log zerolog.Logger) error {
	log.Info().Str("version", version).Msg("starting librarian")

	st, err := NewStore(cfg.Store, log)
	if err != nil {
		return err
	}
	if cfg.Store.URL == "" {
		log.Warn().Msg("DATABASE_URL is not set, every store operation will fail until it is configured")
	}
	if cfg.Auth.Mode == config.AuthModeJWT && cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("AUTH_MODE=jwt without AUTH_JWT_SECRET rejects every bearer token")
	}

	svc := NewService(cfg, st, log)

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Library:        svc,
		Store:          st,
		AuthMiddleware: auth.NewMiddleware(cfg.Auth, log),
		Logger:         log,
		SeedOnVisit:    cfg.Library.SeedOnVisit,
		Version:        version,
	})

	return Serve(router, cfg, log, func(ctx context.Context) {
		if err := st.Close(ctx); err != nil {
			log.Error().Err(err).Msg("error closing store")
		}
	})
}
