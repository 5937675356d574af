package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
)

func TestStatsController_Dashboard(t *testing.T) {
	server := setupTestServer(t)

	w := server.do(t, http.MethodGet, "/api/dashboard", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	dashboard := decode[library.Dashboard](t, w)
	assert.Equal(t, 5, dashboard.Stats.TotalBooks)
	assert.Len(t, dashboard.RecentBooks, 5)
	assert.NotNil(t, dashboard.Suggestion)

	w = server.do(t, http.MethodGet, "/api/dashboard", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[library.Dashboard](t, w).Stats.TotalBooks)

	w = server.do(t, http.MethodGet, "/api/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatsController_Stats(t *testing.T) {
	server := setupTestServer(t)

	w := server.do(t, http.MethodGet, "/api/stats", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[entities.Stats](t, w)
	assert.Equal(t, 0, empty.TotalBooks)
	assert.Empty(t, empty.GenreDistribution)

	createBook(t, server, "alice", "Dune", "sci-fi")
	createBook(t, server, "alice", "Hyperion", "sci-fi")
	createBook(t, server, "alice", "Emma", "fiction")

	w = server.do(t, http.MethodGet, "/api/stats", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[entities.Stats](t, w)
	assert.Equal(t, 3, stats.TotalBooks)
	assert.Equal(t, 3, stats.ByStatus.Unread)
	assert.Equal(t, []entities.GenreCount{{Genre: "sci-fi", Count: 2}, {Genre: "fiction", Count: 1}}, stats.GenreDistribution)
}

func TestStatsController_ReadingGoal(t *testing.T) {
	server := setupTestServer(t)

	book := createBook(t, server, "alice", "Dune", "sci-fi")
	w := server.do(t, http.MethodPatch, "/api/books/"+book.ID, "alice", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodGet, "/api/stats/goal?goal=4", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	goal := decode[entities.ReadingGoal](t, w)
	assert.Equal(t, 4, goal.Goal)
	assert.Equal(t, 1, goal.Completed)
	assert.Equal(t, 25, goal.Percent)

	w = server.do(t, http.MethodGet, "/api/stats/goal", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12, decode[entities.ReadingGoal](t, w).Goal)

	w = server.do(t, http.MethodGet, "/api/stats/goal?goal=-3", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
