package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// GetWorkers handles GET /api/v1/admin/workers.
func (s *Server) GetWorkers(ctx echo.Context) error {
	query, err := queries.NewGetWorkerStatusQuery(s.now())
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve workers")
	}

	status, err := s.workersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve workers")
	}

	return ctx.JSON(http.StatusOK, toWorkerStatus(status))
}

// PauseWorkers handles POST /api/v1/admin/workers/pause.
func (s *Server) PauseWorkers(ctx echo.Context) error {
	return s.setPaused(ctx, true)
}

// ResumeWorkers handles POST /api/v1/admin/workers/resume.
func (s *Server) ResumeWorkers(ctx echo.Context) error {
	return s.setPaused(ctx, false)
}

func (s *Server) setPaused(ctx echo.Context, paused bool) error {
	if err := s.pauseHandler.Handle(ctx.Request().Context(), commands.NewSetWorkerPausedCommand(paused)); err != nil {
		return s.fail(ctx, err, "Failed to update workers")
	}
	return ctx.NoContent(http.StatusNoContent)
}
