// Package shipment provides ShipmentRow, the validated per-parcel input of a
// batch. Rows are persisted with their batch and read back in insertion order
// by the label synthesis engine.
package shipment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"
)

var (
	ErrRowIsNotConstructed = errors.New("Row must be created via NewRow constructor")
)

// Address is a postal address as printed on a label.
type Address struct {
	Name    string
	Company string
	Street  string
	City    string
	State   string
	Zip     string
}

// Zip5 returns the first five characters of the ZIP code.
func (a Address) Zip5() string {
	if len(a.Zip) <= 5 {
		return a.Zip
	}
	return a.Zip[:5]
}

// Line returns the one-line form stored on result records.
func (a Address) Line() string {
	return strings.Join(nonEmpty(a.Street, a.City, a.State, a.Zip), " ")
}

func (a Address) validate(param string) error {
	var err error
	if strings.TrimSpace(a.State) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError(param+" state"))
	}
	if strings.TrimSpace(a.Zip) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError(param+" zip"))
	}
	return err
}

func (a Address) normalized() Address {
	return Address{
		Name:    strings.TrimSpace(a.Name),
		Company: strings.TrimSpace(a.Company),
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.ToUpper(strings.TrimSpace(a.State)),
		Zip:     strings.TrimSpace(a.Zip),
	}
}

// Details are the optional attributes of a row.
type Details struct {
	// ItemReference is the seller's reference for the item (SKU column).
	ItemReference string
	// OrderReference is the marketplace order reference column.
	OrderReference string
	Description    string
	Hazard         bool
	// ShipDate defaults to the processing date when zero.
	ShipDate time.Time
}

// Row is one validated parcel.
type Row struct {
	seq       int
	from      Address
	to        Address
	weightLbs float64
	details   Details

	isConstructed bool
}

// NewRow validates a parcel. seq is the 1-based position within the batch.
func NewRow(seq int, from, to Address, weightLbs float64, details Details) (Row, error) {
	row := Row{
		from:          from.normalized(),
		to:            to.normalized(),
		isConstructed: true,
	}

	details.ItemReference = strings.TrimSpace(details.ItemReference)
	details.OrderReference = strings.TrimSpace(details.OrderReference)
	details.Description = strings.TrimSpace(details.Description)
	row.details = details

	if err := errors.Join(
		row.setSeq(seq),
		row.from.validate("sender"),
		row.to.validate("recipient"),
		row.setWeight(weightLbs),
	); err != nil {
		return Row{}, err
	}

	return row, nil
}

func (r Row) Validate() error {
	if !r.isConstructed {
		return ErrRowIsNotConstructed
	}
	return nil
}

func (r Row) Seq() int           { return r.seq }
func (r Row) From() Address      { return r.from }
func (r Row) To() Address        { return r.to }
func (r Row) WeightLbs() float64 { return r.weightLbs }
func (r Row) Details() Details   { return r.details }

func (r *Row) setSeq(seq int) error {
	if seq < 1 {
		return errs.NewValueIsOutOfRangeError("row number", seq, 1, "unbounded")
	}
	r.seq = seq
	return nil
}

func (r *Row) setWeight(w float64) error {
	if w <= 0 || w > 70 {
		return errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%g lbs is outside (0, 70]", w))
	}
	r.weightLbs = w
	return nil
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
