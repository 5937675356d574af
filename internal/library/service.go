// Package library implements the user-scoped operations of the personal
// library: books, collections, loans, statistics and default-content seeding.
//
// Every operation takes the caller's user id and fails with ErrUnauthorized
// when it is blank. Store errors never leave the package: they are logged and
// reported as one of the Error kinds.
package library

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/connector"
	"github.com/mrlokans/librarian/internal/store"
)

type Service struct {
	store       store.Store
	log         zerolog.Logger
	now         func() time.Time
	pick        func(n int) int
	readingGoal int
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPicker replaces the random index source used by SuggestBook.
func WithPicker(pick func(n int) int) Option {
	return func(s *Service) { s.pick = pick }
}

// WithReadingGoal sets the yearly goal used when a caller passes none.
func WithReadingGoal(goal int) Option {
	return func(s *Service) {
		if goal > 0 {
			s.readingGoal = goal
		}
	}
}

func NewService(st store.Store, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:       st,
		log:         log.With().Str("component", "library").Logger(),
		now:         time.Now,
		pick:        rand.IntN,
		readingGoal: config.DefaultReadingGoal,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stamp is the clock reading written to the store. Persisted times are UTC
// so SQL backends that keep them as text still order them correctly.
func (s *Service) stamp() time.Time {
	return s.now().UTC()
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func authorize(op, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return &Error{Op: op, Kind: ErrUnauthorized}
	}
	return nil
}

// fail maps a store error to an Error kind, logging anything unexpected.
func (s *Service) fail(op, userID string, err error) error {
	var libErr *Error
	if errors.As(err, &libErr) {
		return libErr
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return &Error{Op: op, Kind: ErrNotFound}
	case errors.Is(err, connector.ErrConnection):
		s.log.Error().Err(err).Str("op", op).Str("user_id", userID).Msg("store unavailable")
		return &Error{Op: op, Kind: ErrConnection}
	default:
		s.log.Error().Err(err).Str("op", op).Str("user_id", userID).Msg("operation failed")
		return &Error{Op: op, Kind: ErrInternal}
	}
}
