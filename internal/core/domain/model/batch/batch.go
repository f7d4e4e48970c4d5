package batch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// MaxRows bounds the number of shipment rows accepted in one batch.
const MaxRows = 5000

var (
	ErrBatchIsNotConstructed = errors.New("Batch must be created via NewBatch or RestoreBatch constructor")
)

// Batch is one submitted job of N shipment rows.
type Batch struct {
	id             kernel.UUID
	owner          kernel.UUID
	requestedCount int
	successCount   int
	status         Status
	template       string
	rateVersion    string
	unitPrice      kernel.Cents
	submittedAt    time.Time

	isConstructed bool
}

// NewBatch creates a queued batch.
func NewBatch(
	id, owner kernel.UUID,
	requestedCount int,
	template, rateVersion string,
	unitPrice kernel.Cents,
	submittedAt time.Time,
) (*Batch, error) {
	b := &Batch{
		status:        Queued,
		submittedAt:   submittedAt.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		b.setID(id),
		b.setOwner(owner),
		b.setRequestedCount(requestedCount),
		b.setTemplate(template),
		b.setRateVersion(rateVersion),
		b.setUnitPrice(unitPrice),
	); err != nil {
		return nil, err
	}

	return b, nil
}

// RestoreBatch rebuilds a batch from storage.
func RestoreBatch(
	id, owner kernel.UUID,
	requestedCount, successCount int,
	status Status,
	template, rateVersion string,
	unitPrice kernel.Cents,
	submittedAt time.Time,
) (*Batch, error) {
	b, err := NewBatch(id, owner, requestedCount, template, rateVersion, unitPrice, submittedAt)
	if err != nil {
		return nil, err
	}

	if err = status.Validate(); err != nil {
		return nil, err
	}
	if successCount < 0 || successCount > requestedCount {
		return nil, errs.NewValueIsOutOfRangeError("success count", successCount, 0, requestedCount)
	}

	b.status = status
	b.successCount = successCount
	return b, nil
}

func (b *Batch) Validate() error {
	if b == nil || !b.isConstructed {
		return ErrBatchIsNotConstructed
	}
	return nil
}

func (b *Batch) ID() kernel.UUID           { return b.id }
func (b *Batch) Owner() kernel.UUID        { return b.owner }
func (b *Batch) RequestedCount() int       { return b.requestedCount }
func (b *Batch) SuccessCount() int         { return b.successCount }
func (b *Batch) Status() Status            { return b.status }
func (b *Batch) Template() string          { return b.template }
func (b *Batch) RateVersion() string       { return b.rateVersion }
func (b *Batch) UnitPrice() kernel.Cents   { return b.unitPrice }
func (b *Batch) SubmittedAt() time.Time    { return b.submittedAt }
func (b *Batch) Charge() kernel.Cents      { return b.unitPrice.Times(b.requestedCount) }
func (b *Batch) IsSingleItem() bool        { return b.requestedCount == 1 }
func (b *Batch) IsEqual(other *Batch) bool { return other != nil && b.id.IsEqual(other.id) }

// Claim flips a queued batch to Processing.
func (b *Batch) Claim() error {
	next, err := b.status.Claim()
	if err != nil {
		return err
	}
	b.status = next
	return nil
}

// Finalize records the synthesis outcome and returns the refund owed for the
// rows that produced no label. successCount + refunded units always equals the
// requested count.
func (b *Batch) Finalize(successCount int) (kernel.Cents, error) {
	if successCount < 0 || successCount > b.requestedCount {
		return 0, errs.NewValueIsOutOfRangeError("success count", successCount, 0, b.requestedCount)
	}

	next, err := b.status.Finalize(successCount, b.requestedCount)
	if err != nil {
		return 0, err
	}

	b.status = next
	b.successCount = successCount
	return b.unitPrice.Times(b.requestedCount - successCount), nil
}

// Abandon fails a batch whose processing was interrupted and returns the full charge.
func (b *Batch) Abandon() (kernel.Cents, error) {
	return b.Finalize(0)
}

func (b *Batch) BeginConfirmation() error {
	next, err := b.status.BeginConfirmation()
	if err != nil {
		return err
	}
	b.status = next
	return nil
}

func (b *Batch) FinishConfirmation(authAborted bool) error {
	next, err := b.status.FinishConfirmation(authAborted)
	if err != nil {
		return err
	}
	b.status = next
	return nil
}

// FailConfirmation covers operator cancel, restart recovery and store errors.
func (b *Batch) FailConfirmation() error {
	next, err := b.status.FailConfirmation()
	if err != nil {
		return err
	}
	b.status = next
	return nil
}

func (b *Batch) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	b.id = id
	return nil
}

func (b *Batch) setOwner(owner kernel.UUID) error {
	if err := owner.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("owner", err)
	}
	b.owner = owner
	return nil
}

func (b *Batch) setRequestedCount(n int) error {
	if n < 1 || n > MaxRows {
		return errs.NewValueIsOutOfRangeError("requested count", n, 1, MaxRows)
	}
	b.requestedCount = n
	return nil
}

func (b *Batch) setTemplate(template string) error {
	template = strings.TrimSpace(template)
	if template == "" {
		return errs.NewValueIsRequiredError("template")
	}
	b.template = template
	return nil
}

func (b *Batch) setRateVersion(version string) error {
	version = strings.TrimSpace(version)
	if version == "" {
		return errs.NewValueIsRequiredError("rate version")
	}
	b.rateVersion = version
	return nil
}

func (b *Batch) setUnitPrice(price kernel.Cents) error {
	if price < 0 {
		return errs.NewValueIsInvalidErrorWithCause("unit price", fmt.Errorf("%s is negative", price))
	}
	b.unitPrice = price
	return nil
}
