package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/result"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrListBatchResultsQueryIsNotConstructed = errors.New(
		"ListBatchResultsQuery must be created via NewListBatchResultsQuery constructor",
	)
)

// ListBatchResultsQuery lists the per-row outcomes of one batch in row order.
type ListBatchResultsQuery struct {
	batchID kernel.UUID
	owner   kernel.UUID
	guard   guard.ConstructorGuard
}

func NewListBatchResultsQuery(batchID, owner kernel.UUID) (ListBatchResultsQuery, error) {
	if err := errors.Join(batchID.Validate(), owner.Validate()); err != nil {
		return ListBatchResultsQuery{}, err
	}

	return ListBatchResultsQuery{
		batchID: batchID,
		owner:   owner,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q ListBatchResultsQuery) Validate() error {
	return q.guard.Validate(ErrListBatchResultsQueryIsNotConstructed)
}

func (q ListBatchResultsQuery) BatchID() kernel.UUID { return q.batchID }
func (q ListBatchResultsQuery) Owner() kernel.UUID   { return q.owner }

// ListBatchResultsQueryResponse is one result record. TrackingNumber is the
// FAILED sentinel for rows whose label could not be produced.
type ListBatchResultsQueryResponse struct {
	ID               int64
	Seq              int
	ItemReference    string
	OrderReference   string
	TrackingNumber   string
	Status           result.Status
	SenderName       string
	RecipientName    string
	RecipientAddress string
	RateVersion      string
	CreatedAt        time.Time
}
