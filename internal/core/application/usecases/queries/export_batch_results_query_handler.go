package queries

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"gorm.io/gorm"
)

type ExportBatchResultsQueryHandler struct {
	list ListBatchResultsQueryHandler
}

func NewExportBatchResultsQueryHandler(db *gorm.DB) ExportBatchResultsQueryHandler {
	return ExportBatchResultsQueryHandler{list: NewListBatchResultsQueryHandler(db)}
}

// Handle writes one CSV line per result record, numbered from 1 in row order.
func (h ExportBatchResultsQueryHandler) Handle(
	ctx context.Context,
	query ExportBatchResultsQuery,
) (ExportBatchResultsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return ExportBatchResultsQueryResponse{}, err
	}

	records, err := h.list.Handle(ctx, query.list)
	if err != nil {
		return ExportBatchResultsQueryResponse{}, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err = w.Write(ExportHeader); err != nil {
		return ExportBatchResultsQueryResponse{}, err
	}
	for i, r := range records {
		err = w.Write([]string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(r.ID, 10),
			exportClassService,
			r.SenderName,
			r.RecipientName,
			r.TrackingNumber,
			r.CreatedAt.In(exportZone).Format(exportDateLayout),
			r.RecipientAddress,
		})
		if err != nil {
			return ExportBatchResultsQueryResponse{}, err
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return ExportBatchResultsQueryResponse{}, err
	}

	return ExportBatchResultsQueryResponse{
		Filename: query.BatchID().String() + ".csv",
		Content:  buf.Bytes(),
	}, nil
}
