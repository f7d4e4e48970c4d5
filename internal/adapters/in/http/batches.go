package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"

	"github.com/labstack/echo/v4"
)

// CreateBatch handles POST /api/v1/batches - charges the owner and queues the rows.
func (s *Server) CreateBatch(ctx echo.Context) error {
	owner, err := ownerOf(ctx)
	if err != nil {
		return err
	}

	var req NewBatch
	if err := ctx.Bind(&req); err != nil {
		return errorJSON(http.StatusBadRequest, "Invalid request body")
	}

	rows := make([]shipment.Row, 0, len(req.Rows))
	for i, r := range req.Rows {
		row, err := toRow(i+1, r)
		if err != nil {
			return errorJSON(http.StatusBadRequest, fmt.Sprintf("Invalid row %d: %s", i+1, err))
		}
		rows = append(rows, row)
	}

	cmd, err := commands.NewEnqueueBatchCommand(owner, rows, req.Template, req.RateVersion)
	if err != nil {
		return errorJSON(http.StatusBadRequest, "Invalid batch: "+err.Error())
	}

	id, err := s.enqueueHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err, "Failed to create batch")
	}

	return ctx.JSON(http.StatusCreated, BatchCreated{ID: id.String()})
}

func toRow(seq int, r NewShipmentRow) (shipment.Row, error) {
	details := shipment.Details{
		ItemReference:  r.ItemReference,
		OrderReference: r.OrderReference,
		Description:    r.Description,
		Hazard:         r.Hazard,
	}
	if r.ShipDate != "" {
		d, err := time.Parse(shipDateLayout, r.ShipDate)
		if err != nil {
			return shipment.Row{}, errors.New("ship_date must be YYYY-MM-DD")
		}
		details.ShipDate = d
	}
	return shipment.NewRow(seq, r.From.toDomain(), r.To.toDomain(), r.WeightLbs, details)
}

// GetBatch handles GET /api/v1/batches/:id - status, counts and queue position.
func (s *Server) GetBatch(ctx echo.Context) error {
	id, owner, err := batchAndOwner(ctx)
	if err != nil {
		return err
	}

	query, err := queries.NewGetBatchStatusQuery(id, owner)
	if err != nil {
		return errorJSON(http.StatusBadRequest, "Invalid batch id")
	}

	status, err := s.statusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve batch")
	}

	return ctx.JSON(http.StatusOK, toBatch(status))
}

// GetBatchResults handles GET /api/v1/batches/:id/results.
func (s *Server) GetBatchResults(ctx echo.Context) error {
	id, owner, err := batchAndOwner(ctx)
	if err != nil {
		return err
	}

	query, err := queries.NewListBatchResultsQuery(id, owner)
	if err != nil {
		return errorJSON(http.StatusBadRequest, "Invalid batch id")
	}

	records, err := s.resultsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve results")
	}

	response := make([]Result, len(records))
	for i, r := range records {
		response[i] = toResult(r)
	}
	return ctx.JSON(http.StatusOK, response)
}

// ExportBatchResults handles GET /api/v1/batches/:id/results.csv.
func (s *Server) ExportBatchResults(ctx echo.Context) error {
	id, owner, err := batchAndOwner(ctx)
	if err != nil {
		return err
	}

	query, err := queries.NewExportBatchResultsQuery(id, owner)
	if err != nil {
		return errorJSON(http.StatusBadRequest, "Invalid batch id")
	}

	export, err := s.exportHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "Failed to export results")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, attachment(export.Filename))
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", export.Content)
}

// GetBatchDocument handles GET /api/v1/batches/:id/document - the merged label PDF.
func (s *Server) GetBatchDocument(ctx echo.Context) error {
	id, owner, err := batchAndOwner(ctx)
	if err != nil {
		return err
	}

	// Ownership is checked through the status query.
	query, err := queries.NewGetBatchStatusQuery(id, owner)
	if err != nil {
		return errorJSON(http.StatusBadRequest, "Invalid batch id")
	}
	if _, err = s.statusHandler.Handle(ctx.Request().Context(), query); err != nil {
		return s.fail(ctx, err, "Failed to retrieve document")
	}

	doc, err := s.documents.Open(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve document")
	}
	defer doc.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, attachment(id.String()+".pdf"))
	return ctx.Stream(http.StatusOK, "application/pdf", doc)
}

// StartConfirmation handles POST /api/v1/batches/:id/confirmation.
func (s *Server) StartConfirmation(ctx echo.Context) error {
	id, owner, err := batchAndOwner(ctx)
	if err != nil {
		return err
	}

	var req StartConfirmation
	if err := ctx.Bind(&req); err != nil {
		return errorJSON(http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := commands.NewTriggerConfirmationCommand(id, owner, req.Session, req.CSRFToken)
	if err != nil {
		return errorJSON(http.StatusBadRequest, "Invalid marketplace session")
	}

	if err := s.triggerHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err, "Failed to start confirmation")
	}

	return ctx.NoContent(http.StatusAccepted)
}

// CancelConfirmation handles DELETE /api/v1/batches/:id/confirmation.
func (s *Server) CancelConfirmation(ctx echo.Context) error {
	id, owner, err := batchAndOwner(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCancelConfirmationCommand(id, owner)
	if err != nil {
		return errorJSON(http.StatusBadRequest, "Invalid batch id")
	}

	if err := s.cancelHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err, "Failed to cancel confirmation")
	}

	return ctx.NoContent(http.StatusNoContent)
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

func ownerOf(ctx echo.Context) (kernel.UUID, error) {
	owner, err := kernel.UUIDFromString(ctx.Request().Header.Get(OwnerHeader))
	if err == nil {
		err = owner.Validate()
	}
	if err != nil {
		return kernel.UUID{}, errorJSON(http.StatusUnauthorized, "Missing or invalid owner")
	}
	return owner, nil
}

func batchAndOwner(ctx echo.Context) (kernel.UUID, kernel.UUID, error) {
	owner, err := ownerOf(ctx)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, errorJSON(http.StatusNotFound, "Batch not found")
	}
	return id, owner, nil
}
