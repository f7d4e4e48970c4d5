package services_test

import (
	"regexp"
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
)

func TestRegionOf(t *testing.T) {
	assert.Equal(t, services.West, services.RegionOf("ca"))
	assert.Equal(t, services.Mountain, services.RegionOf("CO"))
	assert.Equal(t, services.South, services.RegionOf(" tx "))
	assert.Equal(t, services.Northeast, services.RegionOf("DC"))
	assert.Equal(t, services.Midwest, services.RegionOf("PR"), "unknown states default to Midwest")
}

func TestZone(t *testing.T) {
	testCases := []struct {
		from, to string
		expected int
	}{
		{"CA", "ca", 2},
		{"CA", "OR", 3},
		{"CA", "CO", 5},
		{"CA", "OH", 6},
		{"CA", "TX", 7},
		{"CA", "NY", 8},
		{"NY", "CA", 8},
		{"TX", "NY", 5},
		{"XX", "OH", 3},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, services.Zone(tc.from, tc.to), "%s->%s", tc.from, tc.to)
	}
}

func TestZoneEstimator_TransitDays(t *testing.T) {
	estimator := services.NewZoneEstimator(kernel.NewSeededRand(5))
	bounds := map[int][2]int{2: {1, 2}, 3: {2, 3}, 4: {3, 4}, 5: {3, 4}, 6: {4, 5}, 8: {4, 5}}

	for zone, b := range bounds {
		for range 50 {
			days := estimator.TransitDays(zone)
			assert.GreaterOrEqual(t, days, b[0])
			assert.LessOrEqual(t, days, b[1])
		}
	}
}

func TestCarrierRoute(t *testing.T) {
	format := regexp.MustCompile(`^[CR]\d{3}$`)

	assert.Equal(t, services.CarrierRoute("97301"), services.CarrierRoute("97301-1234"))
	assert.Regexp(t, format, services.CarrierRoute("10001"))
	assert.NotEqual(t, "C000", services.CarrierRoute("10001"))
	assert.Equal(t, "C001", services.CarrierRoute("ABCDE"))
}
