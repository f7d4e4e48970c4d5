package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetBatchStatusQueryIsNotConstructed = errors.New(
		"GetBatchStatusQuery must be created via NewGetBatchStatusQuery constructor",
	)
)

// GetBatchStatusQuery reads the progress of one batch on behalf of its owner.
//
// Example:
//
//	query, err := NewGetBatchStatusQuery(batchID, owner)
//	if err != nil {
//	    return err
//	}
//
//	status, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s %d/%d (queue position %d)\n",
//	    status.Status, status.SuccessCount, status.RequestedCount, status.QueuePosition)
type GetBatchStatusQuery struct {
	batchID kernel.UUID
	owner   kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetBatchStatusQuery(batchID, owner kernel.UUID) (GetBatchStatusQuery, error) {
	if err := errors.Join(batchID.Validate(), owner.Validate()); err != nil {
		return GetBatchStatusQuery{}, err
	}

	return GetBatchStatusQuery{
		batchID: batchID,
		owner:   owner,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetBatchStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetBatchStatusQueryIsNotConstructed)
}

func (q GetBatchStatusQuery) BatchID() kernel.UUID { return q.batchID }
func (q GetBatchStatusQuery) Owner() kernel.UUID   { return q.owner }

// GetBatchStatusQueryResponse is the externally visible state of a batch.
//
// QueuePosition is the 1-based FIFO position among all QUEUED batches, or 0
// once the batch has left the queue.
type GetBatchStatusQueryResponse struct {
	ID             kernel.UUID
	Status         batch.Status
	RequestedCount int
	SuccessCount   int
	Template       string
	RateVersion    string
	UnitPrice      kernel.Cents
	SubmittedAt    time.Time
	QueuePosition  int
}
