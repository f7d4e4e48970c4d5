// Package http is the echo request surface of the fulfillment backend.
// Callers are already authenticated upstream; the owner id arrives in the
// X-Owner-ID header.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// OwnerHeader carries the id of the authenticated seller.
const OwnerHeader = "X-Owner-ID"

const maxBodySize = "20M"

type (
	BatchEnqueuer interface {
		Handle(ctx context.Context, cmd commands.EnqueueBatchCommand) (kernel.UUID, error)
	}
	ConfirmationTrigger interface {
		Handle(ctx context.Context, cmd commands.TriggerConfirmationCommand) error
	}
	ConfirmationCanceller interface {
		Handle(ctx context.Context, cmd commands.CancelConfirmationCommand) error
	}
	WorkerPauser interface {
		Handle(ctx context.Context, cmd commands.SetWorkerPausedCommand) error
	}
	BatchStatusReader interface {
		Handle(ctx context.Context, q queries.GetBatchStatusQuery) (queries.GetBatchStatusQueryResponse, error)
	}
	BatchResultsReader interface {
		Handle(ctx context.Context, q queries.ListBatchResultsQuery) ([]queries.ListBatchResultsQueryResponse, error)
	}
	BatchResultsExporter interface {
		Handle(ctx context.Context, q queries.ExportBatchResultsQuery) (queries.ExportBatchResultsQueryResponse, error)
	}
	WorkerStatusReader interface {
		Handle(ctx context.Context, q queries.GetWorkerStatusQuery) (queries.GetWorkerStatusQueryResponse, error)
	}
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	enqueueHandler BatchEnqueuer
	triggerHandler ConfirmationTrigger
	cancelHandler  ConfirmationCanceller
	pauseHandler   WorkerPauser

	// Query handlers
	statusHandler  BatchStatusReader
	resultsHandler BatchResultsReader
	exportHandler  BatchResultsExporter
	workersHandler WorkerStatusReader

	documents ports.DocumentStore
	logger    *slog.Logger
	now       func() time.Time
}

func NewServer(
	enqueueHandler BatchEnqueuer,
	triggerHandler ConfirmationTrigger,
	cancelHandler ConfirmationCanceller,
	pauseHandler WorkerPauser,
	statusHandler BatchStatusReader,
	resultsHandler BatchResultsReader,
	exportHandler BatchResultsExporter,
	workersHandler WorkerStatusReader,
	documents ports.DocumentStore,
	logger *slog.Logger,
) *Server {
	return &Server{
		enqueueHandler: enqueueHandler,
		triggerHandler: triggerHandler,
		cancelHandler:  cancelHandler,
		pauseHandler:   pauseHandler,
		statusHandler:  statusHandler,
		resultsHandler: resultsHandler,
		exportHandler:  exportHandler,
		workersHandler: workersHandler,
		documents:      documents,
		logger:         logger.With("component", "http"),
		now:            time.Now,
	}
}

// NewEcho returns an echo instance with every route of s registered.
func NewEcho(s *Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	s.Register(e)
	return e
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	api := e.Group("/api/v1")

	api.POST("/batches", s.CreateBatch)
	api.GET("/batches/:id", s.GetBatch)
	api.GET("/batches/:id/results", s.GetBatchResults)
	api.GET("/batches/:id/results.csv", s.ExportBatchResults)
	api.GET("/batches/:id/document", s.GetBatchDocument)
	api.POST("/batches/:id/confirmation", s.StartConfirmation)
	api.DELETE("/batches/:id/confirmation", s.CancelConfirmation)

	api.GET("/admin/workers", s.GetWorkers)
	api.POST("/admin/workers/pause", s.PauseWorkers)
	api.POST("/admin/workers/resume", s.ResumeWorkers)
}
