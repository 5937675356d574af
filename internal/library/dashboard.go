package library

import (
	"context"
	"errors"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/entities"
)

type Dashboard struct {
	Stats       *entities.Stats       `json:"stats"`
	RecentBooks []entities.Book       `json:"recent_books"`
	Suggestion  *entities.Book        `json:"suggestion,omitempty"`
	Goal        *entities.ReadingGoal `json:"reading_goal"`
}

// Dashboard seeds an empty library when seed is set, then gathers the
// overview. A failed seed is logged and does not fail the dashboard.
func (s *Service) Dashboard(ctx context.Context, userID string, seed bool) (*Dashboard, error) {
	if err := authorize("load dashboard", userID); err != nil {
		return nil, err
	}

	if seed {
		if _, err := s.SeedDefaultBooks(ctx, userID); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("seeding skipped")
		}
	}

	stats, err := s.ComputeStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.ListBooks(ctx, userID, BookFilter{Limit: config.DefaultRecentBooks})
	if err != nil {
		return nil, err
	}
	goal, err := s.ReadingGoal(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	suggestion, err := s.SuggestBook(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return &Dashboard{
		Stats:       stats,
		RecentBooks: recent,
		Suggestion:  suggestion,
		Goal:        goal,
	}, nil
}
