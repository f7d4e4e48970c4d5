package services

import (
	"errors"
	"fmt"
	"sort"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrNoCandidate is returned when no queued batch is eligible for a lane.
var ErrNoCandidate = errors.New("no eligible batch")

// Lane restricts which batches a worker may claim.
type Lane string

const (
	// GeneralLane takes any batch.
	GeneralLane Lane = "general"
	// SingleItemLane only takes batches of exactly one row.
	SingleItemLane Lane = "single-item"
)

func (l Lane) Validate() error {
	switch l {
	case GeneralLane, SingleItemLane:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("lane", fmt.Errorf("%q is not a known lane", string(l)))
	}
}

// Admits reports whether b may be claimed from the lane.
func (l Lane) Admits(b *batch.Batch) bool {
	if l == SingleItemLane {
		return b.IsSingleItem()
	}
	return true
}

// Weight returns the selection weight of a batch of n rows. Smaller batches
// weigh more; the weight is never zero.
func Weight(n int) int {
	switch {
	case n <= 5:
		return 100
	case n <= 20:
		return 50
	case n <= 100:
		return 20
	default:
		return 5
	}
}

// BatchSelector picks the next batch to claim.
//
// Queued batches admitted by the lane are grouped by owner and only each
// owner's oldest batch is a candidate, so one owner never holds more than one
// ticket per draw. The winner is drawn with probability proportional to Weight.
type BatchSelector struct {
	rnd kernel.Rand
}

func NewBatchSelector(rnd kernel.Rand) BatchSelector {
	return BatchSelector{rnd: rnd}
}

func (s BatchSelector) Select(queued []*batch.Batch, lane Lane) (*batch.Batch, error) {
	candidates := Candidates(queued, lane)
	if len(candidates) == 0 {
		return nil, ErrNoCandidate
	}

	total := 0
	for _, c := range candidates {
		total += Weight(c.RequestedCount())
	}

	pick := s.rnd.IntN(total)
	for _, c := range candidates {
		pick -= Weight(c.RequestedCount())
		if pick < 0 {
			return c, nil
		}
	}
	return candidates[len(candidates)-1], nil
}

// Candidates returns the oldest admitted queued batch of every owner, ordered
// by submission time.
func Candidates(queued []*batch.Batch, lane Lane) []*batch.Batch {
	heads := make(map[kernel.UUID]*batch.Batch)
	for _, b := range queued {
		if b.Status() != batch.Queued || !lane.Admits(b) {
			continue
		}
		head, ok := heads[b.Owner()]
		if !ok || b.SubmittedAt().Before(head.SubmittedAt()) {
			heads[b.Owner()] = b
		}
	}

	candidates := make([]*batch.Batch, 0, len(heads))
	for _, b := range heads {
		candidates = append(candidates, b)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].SubmittedAt().Equal(candidates[j].SubmittedAt()) {
			return candidates[i].ID().String() < candidates[j].ID().String()
		}
		return candidates[i].SubmittedAt().Before(candidates[j].SubmittedAt())
	})
	return candidates
}
