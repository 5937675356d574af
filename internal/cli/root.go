// Package cli holds the librarian command line. Running the binary without a
// subcommand starts the HTTP server.
package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/entrypoint"
	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/logging"
	"github.com/mrlokans/librarian/internal/store"
)

// BuildInfo is stamped into the binary via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
}

func NewRootCommand(info BuildInfo) *cobra.Command {
	serve := newServeCommand(info)

	root := &cobra.Command{
		Use:           "librarian",
		Short:         "Personal library manager: books, collections and loans",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	root.AddCommand(
		serve,
		newSeedCommand(),
		newStatsCommand(),
		newTokenCommand(),
		newVersionCommand(info),
	)
	return root
}

func Execute(ctx context.Context, info BuildInfo) error {
	return NewRootCommand(info).ExecuteContext(ctx)
}

// session is what the offline commands share: config, a logger on stderr and
// a service over the configured store.
type session struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   store.Store
	library *library.Service
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg := config.NewConfig()
	log := logging.New(cfg.Log, cmd.ErrOrStderr())

	st, err := entrypoint.NewStore(cfg.Store, log)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:     cfg,
		log:     log,
		store:   st,
		library: entrypoint.NewService(cfg, st, log),
	}, nil
}

func (s *session) close(ctx context.Context) {
	if err := s.store.Close(ctx); err != nil {
		s.log.Error().Err(err).Msg("error closing store")
	}
}

// userOrDefault falls back to AUTH_DEFAULT_USER_ID so a single-user install
// can run the offline commands without flags.
func (s *session) userOrDefault(userID string) string {
	if userID != "" {
		return userID
	}
	return s.cfg.Auth.DefaultUserID
}
