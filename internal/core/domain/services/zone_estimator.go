package services

import (
	"fmt"
	"strconv"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
)

// Region is a coarse US shipping region. The numeric order is geographic
// west to east and drives the zone distance.
type Region int

const (
	West Region = iota
	Mountain
	Midwest
	South
	Northeast
)

var regionNames = [...]string{"West", "Mountain", "Midwest", "South", "Northeast"}

func (r Region) String() string {
	if r < West || r > Northeast {
		return "Region(" + strconv.Itoa(int(r)) + ")"
	}
	return regionNames[r]
}

var stateRegions = func() map[string]Region {
	m := make(map[string]Region)
	add := func(r Region, states ...string) {
		for _, s := range states {
			m[s] = r
		}
	}
	add(West, "CA", "OR", "WA", "NV", "AZ", "ID", "UT", "HI", "AK")
	add(Mountain, "MT", "WY", "CO", "NM", "ND", "SD", "NE", "KS", "OK")
	add(Midwest, "MN", "IA", "MO", "WI", "IL", "MI", "IN", "OH", "KY")
	add(South, "TX", "AR", "LA", "MS", "AL", "TN", "GA", "FL", "SC", "NC", "VA", "WV")
	add(Northeast, "PA", "NY", "VT", "NH", "ME", "MA", "RI", "CT", "NJ", "DE", "MD", "DC")
	return m
}()

// ZoneEstimator derives cosmetic routing values printed on a label.
type ZoneEstimator struct {
	rnd kernel.Rand
}

func NewZoneEstimator(rnd kernel.Rand) ZoneEstimator {
	return ZoneEstimator{rnd: rnd}
}

// RegionOf maps a state code to its region. Unknown states are Midwest.
func RegionOf(state string) Region {
	if r, ok := stateRegions[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return r
	}
	return Midwest
}

// Zone is 2 within a state, 3 within a region, else 4 plus the region
// distance capped at 8.
func Zone(fromState, toState string) int {
	from, to := RegionOf(fromState), RegionOf(toState)
	if from == to {
		if strings.EqualFold(strings.TrimSpace(fromState), strings.TrimSpace(toState)) {
			return 2
		}
		return 3
	}

	dist := int(from - to)
	if dist < 0 {
		dist = -dist
	}
	return min(4+dist, 8)
}

// TransitDays draws a delivery estimate for zone.
func (e ZoneEstimator) TransitDays(zone int) int {
	switch {
	case zone <= 2:
		return kernel.RandomBetween(e.rnd, 1, 2)
	case zone == 3:
		return kernel.RandomBetween(e.rnd, 2, 3)
	case zone <= 5:
		return kernel.RandomBetween(e.rnd, 3, 4)
	default:
		return kernel.RandomBetween(e.rnd, 4, 5)
	}
}

// CarrierRoute returns a route code that is stable for a destination ZIP:
// "C" nine times in ten, else "R", followed by a number in 001..099.
func CarrierRoute(zip string) string {
	zip5 := zip
	if len(zip5) > 5 {
		zip5 = zip5[:5]
	}
	seed, err := strconv.ParseUint(zip5, 10, 64)
	if err != nil {
		return "C001"
	}

	rnd := kernel.NewSeededRand(seed)
	kind := "C"
	if rnd.IntN(100) >= 90 {
		kind = "R"
	}
	return fmt.Sprintf("%s%03d", kind, kernel.RandomBetween(rnd, 1, 99))
}
