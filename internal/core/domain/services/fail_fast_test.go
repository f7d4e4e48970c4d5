package services_test

import (
	"testing"

	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
)

func TestFailFastBreaker(t *testing.T) {
	t.Run("trips after limit initial failures", func(t *testing.T) {
		b := services.NewFailFastBreaker(3)

		assert.False(t, b.Record(false))
		assert.False(t, b.Record(false))
		assert.True(t, b.Record(false))
		assert.Equal(t, 3, b.Failures())
	})

	t.Run("never trips after a success", func(t *testing.T) {
		b := services.NewFailFastBreaker(3)

		b.Record(false)
		b.Record(true)
		for range 10 {
			assert.False(t, b.Record(false))
		}
		assert.Equal(t, 1, b.Failures())
	})

	t.Run("failures after the first limit lookups are not counted", func(t *testing.T) {
		b := services.NewFailFastBreaker(2)

		b.Record(false)
		b.Record(true)
		b.Record(false)
		assert.Equal(t, 1, b.Failures())
		assert.False(t, b.Open())
	})

	t.Run("zero limit falls back to default", func(t *testing.T) {
		b := services.NewFailFastBreaker(0)
		for range services.DefaultFailFastLimit - 1 {
			assert.False(t, b.Record(false))
		}
		assert.True(t, b.Record(false))
	})
}
