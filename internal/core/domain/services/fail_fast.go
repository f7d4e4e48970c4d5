package services

// DefaultFailFastLimit is the number of initial lookups that may all fail
// before a confirmation run is aborted.
const DefaultFailFastLimit = 10

// FailFastBreaker trips when the first limit order lookups of a run all fail.
// Once any lookup has succeeded the breaker never trips.
type FailFastBreaker struct {
	limit     int
	attempts  int
	failures  int
	succeeded bool
}

func NewFailFastBreaker(limit int) *FailFastBreaker {
	if limit < 1 {
		limit = DefaultFailFastLimit
	}
	return &FailFastBreaker{limit: limit}
}

// Record counts one lookup and reports whether the breaker is now open.
func (b *FailFastBreaker) Record(ok bool) bool {
	b.attempts++
	if ok {
		b.succeeded = true
		return false
	}
	if !b.succeeded && b.attempts <= b.limit {
		b.failures++
	}
	return b.Open()
}

func (b *FailFastBreaker) Open() bool {
	return !b.succeeded && b.failures >= b.limit
}

func (b *FailFastBreaker) Attempts() int { return b.attempts }
func (b *FailFastBreaker) Failures() int { return b.failures }
