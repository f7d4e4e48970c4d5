package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrExportBatchResultsQueryIsNotConstructed = errors.New(
		"ExportBatchResultsQuery must be created via NewExportBatchResultsQuery constructor",
	)
)

// ExportHeader is the first line of every results export.
var ExportHeader = []string{"No", "Id", "ClassService", "FromName", "ToName", "TrackingId", "TransDate", "AddressTo"}

const (
	exportClassService = "USPS Priority"
	exportDateLayout   = "01/02/2006 03:04:05 PM"
)

// exportZone is the fixed offset TransDate is printed in.
var exportZone = time.FixedZone("UTC-5", -5*60*60)

// ExportBatchResultsQuery renders a batch's results as CSV.
//
// Example:
//
//	query, _ := NewExportBatchResultsQuery(batchID, owner)
//	export, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	return c.Blob(http.StatusOK, "text/csv", export.Content)
type ExportBatchResultsQuery struct {
	list  ListBatchResultsQuery
	guard guard.ConstructorGuard
}

func NewExportBatchResultsQuery(batchID, owner kernel.UUID) (ExportBatchResultsQuery, error) {
	list, err := NewListBatchResultsQuery(batchID, owner)
	if err != nil {
		return ExportBatchResultsQuery{}, err
	}

	return ExportBatchResultsQuery{list: list, guard: guard.NewConstructorGuard()}, nil
}

func (q ExportBatchResultsQuery) Validate() error {
	return q.guard.Validate(ErrExportBatchResultsQueryIsNotConstructed)
}

func (q ExportBatchResultsQuery) BatchID() kernel.UUID { return q.list.BatchID() }

type ExportBatchResultsQueryResponse struct {
	Filename string
	Content  []byte
}
