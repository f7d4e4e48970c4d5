package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID(t *testing.T) {
	t.Run("should create unique valid ids", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		require.NoError(t, id1.Validate())
		assert.False(t, id1.IsEqual(id2))
	})

	t.Run("should round trip through string and bytes", func(t *testing.T) {
		id, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")
		require.NoError(t, err)

		raw := id.Bytes()
		restored, err := kernel.UUIDFromBytes(raw[:])
		require.NoError(t, err)
		assert.True(t, id.IsEqual(restored))
	})

	t.Run("should reject malformed input", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")
		assert.ErrorContains(t, err, "invalid UUID format")

		_, err = kernel.UUIDFromBytes([]byte{0x55, 0x0e})
		assert.ErrorContains(t, err, "invalid UUID format")
	})

	t.Run("should reject the nil id", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes(make([]byte, 16))
		assert.Equal(t, kernel.ErrUUIDIsNotConstructed, err)

		var zero kernel.UUID
		assert.ErrorIs(t, zero.Validate(), errs.ErrValueIsRequired)
	})
}

func TestCents(t *testing.T) {
	price, err := kernel.NewUnitPrice(275)
	require.NoError(t, err)

	assert.Equal(t, kernel.Cents(825), price.Times(3))
	assert.Equal(t, "8.25", price.Times(3).String())
	assert.Equal(t, "-0.05", kernel.Cents(-5).String())

	_, err = kernel.NewUnitPrice(0)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestSeededRand(t *testing.T) {
	a := kernel.NewSeededRand(42)
	b := kernel.NewSeededRand(42)

	assert.Equal(t, kernel.RandomDigits(a, 12), kernel.RandomDigits(b, 12))

	r := kernel.NewSeededRand(7)
	for range 1000 {
		v := kernel.RandomBetween(r, 3, 4)
		assert.True(t, v == 3 || v == 4)
	}
	assert.Len(t, kernel.RandomDigits(r, 5), 5)
	assert.Equal(t, 9, kernel.RandomBetween(r, 9, 9))
}
