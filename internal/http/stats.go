package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
)

// StatsService defines the read-only summaries used by StatsController.
type StatsService interface {
	ComputeStats(ctx context.Context, userID string) (*entities.Stats, error)
	ReadingGoal(ctx context.Context, userID string, goal int) (*entities.ReadingGoal, error)
	Dashboard(ctx context.Context, userID string, seed bool) (*library.Dashboard, error)
}

type StatsController struct {
	service     StatsService
	seedOnVisit bool
}

func NewStatsController(service StatsService, seedOnVisit bool) *StatsController {
	return &StatsController{service: service, seedOnVisit: seedOnVisit}
}

// Dashboard returns the library overview, seeding an empty library first.
// GET /api/dashboard
func (sc *StatsController) Dashboard(c *gin.Context) {
	dashboard, err := sc.service.Dashboard(c.Request.Context(), GetUserID(c), sc.seedOnVisit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GET /api/stats
func (sc *StatsController) Stats(c *gin.Context) {
	stats, err := sc.service.ComputeStats(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ReadingGoal reports progress towards the yearly goal.
// GET /api/stats/goal?goal=
func (sc *StatsController) ReadingGoal(c *gin.Context) {
	var query struct {
		Goal int `form:"goal"`
	}
	if err := c.ShouldBindQuery(&query); err != nil || query.Goal < 0 {
		respondBadRequest(c, "goal must be a positive number")
		return
	}

	goal, err := sc.service.ReadingGoal(c.Request.Context(), GetUserID(c), query.Goal)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}
