package dedup_test

import (
	"testing"

	"fulfillment/internal/adapters/out/dedup"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_AddAndContains(t *testing.T) {
	// Given
	cache, err := dedup.Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	// When
	require.NoError(t, cache.Add(t.Context(), "9488800000000000000000001"))

	// Then
	seen, err := cache.Contains(t.Context(), "9488800000000000000000001")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = cache.Contains(t.Context(), "9488800000000000000000002")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	cache, err := dedup.Open(dir)
	require.NoError(t, err)
	require.NoError(t, cache.Add(t.Context(), "9505500000000000000000007"))
	require.NoError(t, cache.Close())

	reopened, err := dedup.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	seen, err := reopened.Contains(t.Context(), "9505500000000000000000007")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestCache_Validation(t *testing.T) {
	_, err := dedup.Open("")
	assert.Error(t, err)

	cache, err := dedup.Open(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	assert.Error(t, cache.Add(t.Context(), ""))
}
