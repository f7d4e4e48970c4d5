package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/label"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/model/tracking"
)

// LabelComposer assembles the printable content of one label.
type LabelComposer struct {
	zones ZoneEstimator
	rnd   kernel.Rand
}

func NewLabelComposer(rnd kernel.Rand) LabelComposer {
	return LabelComposer{zones: NewZoneEstimator(rnd), rnd: rnd}
}

// Compose builds the content for row. now is the batch processing time and is
// used as ship date when the row has none.
func (c LabelComposer) Compose(
	row shipment.Row,
	number tracking.Number,
	dayCode string,
	family label.Family,
	now time.Time,
) label.Content {
	from, to, details := row.From(), row.To(), row.Details()

	shipDate := details.ShipDate
	if shipDate.IsZero() {
		shipDate = now
	}
	zone := Zone(from.State, to.State)
	expected := shipDate.AddDate(0, 0, c.zones.TransitDays(zone))

	account := "028W" + strconv.Itoa(kernel.RandomBetween(c.rnd, 1000000000, 9999999999))
	securityRef := strconv.Itoa(kernel.RandomBetween(c.rnd, 3000000000, 3999999999))
	if family.Account == label.CustomerNumber {
		account = "C" + strconv.Itoa(kernel.RandomBetween(c.rnd, 1000000, 9999999))
	}

	trk := number.String()
	zip5 := firstN(digitsOnly(to.Zip), 5)
	rawWeight := strconv.FormatFloat(row.WeightLbs(), 'f', -1, 64)

	return label.Content{
		Sender:         party(from),
		Recipient:      party(to),
		ShipDate:       shipDate,
		ExpectedDate:   expected,
		Zone:           zone,
		Weight:         family.FormatWeight(row.WeightLbs()),
		AccountID:      account,
		SecurityRef:    securityRef,
		DayCode:        dayCode,
		Tracking:       trk,
		TrackingSpaced: number.Spaced(),
		DataMatrix:     "420" + digitsOnly(to.Zip) + trk,
		Code128:        "420" + zip5 + trk,
		PDF417: fmt.Sprintf("[)>^RS01420%s%sPM%sZ%d%s",
			zip5, account, rawWeight, zone, shipDate.Format("20060102")),
		ItemReference:  details.ItemReference,
		OrderReference: details.OrderReference,
		Description:    details.Description,
		CarrierRoute:   CarrierRoute(zip5),
		Random0901:     "090100000" + strconv.Itoa(kernel.RandomBetween(c.rnd, 1000, 9999)),
		Hazard:         details.Hazard,
	}
}

func party(a shipment.Address) label.Party {
	return label.Party{
		Name:    a.Name,
		Company: a.Company,
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
	}
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
