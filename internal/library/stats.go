package library

import (
	"context"
	"sort"
	"time"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

// ComputeStats summarizes the caller's whole library.
func (s *Service) ComputeStats(ctx context.Context, userID string) (*entities.Stats, error) {
	const op = "compute stats"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}

	books, err := s.store.ListBooks(ctx, userID, store.BookFilter{})
	if err != nil {
		return nil, s.fail(op, userID, err)
	}
	stats := Summarize(books, s.now())
	return &stats, nil
}

// ReadingGoal reports progress towards reading goal books this calendar
// year. A goal of 0 or less uses the configured default.
func (s *Service) ReadingGoal(ctx context.Context, userID string, goal int) (*entities.ReadingGoal, error) {
	const op = "compute reading goal"
	if err := authorize(op, userID); err != nil {
		return nil, err
	}
	if goal <= 0 {
		goal = s.readingGoal
	}

	books, err := s.store.ListBooks(ctx, userID, store.BookFilter{Status: entities.BookStatusCompleted})
	if err != nil {
		return nil, s.fail(op, userID, err)
	}

	now := s.now()
	completed := 0
	for _, n := range Summarize(books, now).MonthlyCompleted {
		completed += n
	}
	return &entities.ReadingGoal{
		Year:      now.Year(),
		Goal:      goal,
		Completed: completed,
		Percent:   min(100, completed*100/goal),
	}, nil
}

// Summarize computes library statistics in one pass. Monthly completions
// count books completed in now's calendar year, in now's location.
func Summarize(books []entities.Book, now time.Time) entities.Stats {
	stats := entities.Stats{
		TotalBooks:        len(books),
		GenreDistribution: []entities.GenreCount{},
	}
	genres := map[string]int{}

	for _, book := range books {
		switch book.Status {
		case entities.BookStatusUnread:
			stats.ByStatus.Unread++
		case entities.BookStatusInProgress:
			stats.ByStatus.InProgress++
		case entities.BookStatusCompleted:
			stats.ByStatus.Completed++
			if book.CompletedDate != nil {
				done := book.CompletedDate.In(now.Location())
				if done.Year() == now.Year() {
					stats.MonthlyCompleted[done.Month()-1]++
				}
			}
		}
		genres[book.Genre]++
	}

	for genre, count := range genres {
		stats.GenreDistribution = append(stats.GenreDistribution, entities.GenreCount{Genre: genre, Count: count})
	}
	sort.Slice(stats.GenreDistribution, func(i, j int) bool {
		a, b := stats.GenreDistribution[i], stats.GenreDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Genre < b.Genre
	})
	return stats
}
