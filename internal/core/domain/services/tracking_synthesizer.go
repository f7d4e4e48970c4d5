package services

import (
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/tracking"
)

// TrackingSynthesizer issues the tracking numbers of one batch.
//
// The day code of the day-code scheme is fixed when the synthesizer is built
// and shared by every number of the batch. The mailer id is drawn from the
// family pool for every number. Uniqueness is probabilistic only.
type TrackingSynthesizer struct {
	family  tracking.Family
	dayCode string
	rnd     kernel.Rand
}

func NewTrackingSynthesizer(family tracking.Family, batchTime time.Time, rnd kernel.Rand) TrackingSynthesizer {
	s := TrackingSynthesizer{family: family, rnd: rnd}
	if family.Scheme() == tracking.DayCodeScheme {
		s.dayCode = fmt.Sprintf("%03d", batchTime.YearDay())
	}
	return s
}

// DayCode is empty for the serial scheme.
func (s TrackingSynthesizer) DayCode() string { return s.dayCode }

func (s TrackingSynthesizer) Family() tracking.Family { return s.family }

func (s TrackingSynthesizer) Next() (tracking.Number, error) {
	pool := s.family.MailerIDs()
	if len(pool) == 0 {
		return tracking.Number{}, fmt.Errorf("rate family %s has no mailer ids", s.family.Version())
	}
	mailerID := pool[s.rnd.IntN(len(pool))]

	var serial string
	switch s.family.Scheme() {
	case tracking.DayCodeScheme:
		serial = s.dayCode + kernel.RandomDigits(s.rnd, 5)
	default:
		serial = fmt.Sprintf("%07d", kernel.RandomBetween(s.rnd, 1000000, 9999999))
	}

	return tracking.NewNumber(s.family.ServiceTypeCode(), mailerID, serial)
}
