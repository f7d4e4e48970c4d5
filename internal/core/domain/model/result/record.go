// Package result provides ResultRecord, the persisted outcome of one
// processed shipment row. Records are append-only; only the confirmation
// engine changes their status afterwards.
package result

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/tracking"
	"fulfillment/internal/pkg/errs"
)

var (
	ErrRecordIsNotConstructed = errors.New("Record must be created via NewCompleted, NewFailed or RestoreRecord")
)

type Status string

const (
	Completed Status = "COMPLETED"
	Failed    Status = "FAILED"
	Confirmed Status = "CONFIRMED"
)

func (s Status) Validate() error {
	switch s {
	case Completed, Failed, Confirmed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("result status", fmt.Errorf("%q is not a valid status", string(s)))
	}
}

// Parties holds the names and address printed on the label.
type Parties struct {
	SenderName       string
	RecipientName    string
	RecipientAddress string
}

// Record is one row outcome.
type Record struct {
	id             int64
	batchID        kernel.UUID
	owner          kernel.UUID
	seq            int
	itemReference  string
	orderReference string
	tracking       tracking.Number
	status         Status
	parties        Parties
	rateVersion    string
	createdAt      time.Time

	isConstructed bool
}

// NewCompleted records a row whose label was rendered.
func NewCompleted(
	batchID, owner kernel.UUID,
	seq int,
	itemReference, orderReference string,
	number tracking.Number,
	parties Parties,
	rateVersion string,
	createdAt time.Time,
) (*Record, error) {
	if number.IsZero() {
		return nil, errs.NewValueIsRequiredError("tracking number")
	}
	return newRecord(batchID, owner, seq, itemReference, orderReference, number, Completed, parties, rateVersion, createdAt)
}

// NewFailed records a row whose retries were exhausted. It carries the
// FAILED sentinel instead of a tracking number.
func NewFailed(
	batchID, owner kernel.UUID,
	seq int,
	itemReference, orderReference string,
	parties Parties,
	rateVersion string,
	createdAt time.Time,
) (*Record, error) {
	return newRecord(batchID, owner, seq, itemReference, orderReference, tracking.Number{}, Failed, parties, rateVersion, createdAt)
}

// RestoreRecord rebuilds a stored record.
func RestoreRecord(
	id int64,
	batchID, owner kernel.UUID,
	seq int,
	itemReference, orderReference string,
	number tracking.Number,
	status Status,
	parties Parties,
	rateVersion string,
	createdAt time.Time,
) (*Record, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	if (status == Failed) != number.IsZero() {
		return nil, errs.NewValueIsInvalidErrorWithCause("tracking number",
			fmt.Errorf("status %s does not match tracking %s", status, number))
	}

	r, err := newRecord(batchID, owner, seq, itemReference, orderReference, number, status, parties, rateVersion, createdAt)
	if err != nil {
		return nil, err
	}
	r.id = id
	return r, nil
}

func newRecord(
	batchID, owner kernel.UUID,
	seq int,
	itemReference, orderReference string,
	number tracking.Number,
	status Status,
	parties Parties,
	rateVersion string,
	createdAt time.Time,
) (*Record, error) {
	if err := errors.Join(batchID.Validate(), owner.Validate()); err != nil {
		return nil, err
	}
	if seq < 1 {
		return nil, errs.NewValueIsOutOfRangeError("row number", seq, 1, "unbounded")
	}

	return &Record{
		batchID:        batchID,
		owner:          owner,
		seq:            seq,
		itemReference:  itemReference,
		orderReference: orderReference,
		tracking:       number,
		status:         status,
		parties:        parties,
		rateVersion:    rateVersion,
		createdAt:      createdAt.UTC(),
		isConstructed:  true,
	}, nil
}

func (r *Record) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRecordIsNotConstructed
	}
	return nil
}

// ID is assigned by the Job Store; zero until the record is stored.
func (r *Record) ID() int64                 { return r.id }
func (r *Record) BatchID() kernel.UUID      { return r.batchID }
func (r *Record) Owner() kernel.UUID        { return r.owner }
func (r *Record) Seq() int                  { return r.seq }
func (r *Record) ItemReference() string     { return r.itemReference }
func (r *Record) OrderReference() string    { return r.orderReference }
func (r *Record) Tracking() tracking.Number { return r.tracking }
func (r *Record) Status() Status            { return r.status }
func (r *Record) Parties() Parties          { return r.parties }
func (r *Record) RateVersion() string       { return r.rateVersion }
func (r *Record) CreatedAt() time.Time      { return r.createdAt }
func (r *Record) HasLabel() bool            { return r.status != Failed }

// Confirm marks the record confirmed on the marketplace.
func (r *Record) Confirm() error {
	if r.status == Failed {
		return errs.NewValueIsInvalidErrorWithCause("result status",
			errors.New("a failed row has no tracking number to confirm"))
	}
	r.status = Confirmed
	return nil
}
