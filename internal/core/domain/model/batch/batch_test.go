package batch_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueuedBatch(t *testing.T, requested int) *batch.Batch {
	t.Helper()
	b, err := batch.NewBatch(kernel.NewUUID(), kernel.NewUUID(), requested, "pitney_v2", "95055", 300, time.Now())
	require.NoError(t, err)
	return b
}

func TestNewBatch(t *testing.T) {
	t.Run("should create queued batch", func(t *testing.T) {
		b := newQueuedBatch(t, 3)

		require.NoError(t, b.Validate())
		assert.Equal(t, batch.Queued, b.Status())
		assert.Equal(t, 3, b.RequestedCount())
		assert.Equal(t, 0, b.SuccessCount())
		assert.Equal(t, kernel.Cents(900), b.Charge())
		assert.False(t, b.IsSingleItem())
	})

	t.Run("should join every validation error", func(t *testing.T) {
		var zero kernel.UUID

		b, err := batch.NewBatch(zero, zero, 0, " ", "", -1, time.Now())

		require.Error(t, err)
		assert.Nil(t, b)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Contains(t, err.Error(), "template")
		assert.Contains(t, err.Error(), "rate version")
		assert.Contains(t, err.Error(), "unit price")
	})

	t.Run("should reject too many rows", func(t *testing.T) {
		_, err := batch.NewBatch(kernel.NewUUID(), kernel.NewUUID(), batch.MaxRows+1, "pitney_v2", "95055", 1, time.Now())

		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var b batch.Batch
		assert.ErrorIs(t, b.Validate(), batch.ErrBatchIsNotConstructed)
	})
}

func TestRestoreBatch(t *testing.T) {
	t.Run("should reject success above requested", func(t *testing.T) {
		_, err := batch.RestoreBatch(kernel.NewUUID(), kernel.NewUUID(), 2, 3, batch.Completed,
			"pitney_v2", "95055", 100, time.Now())

		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should reject unknown status", func(t *testing.T) {
		_, err := batch.RestoreBatch(kernel.NewUUID(), kernel.NewUUID(), 2, 0, batch.Status("DONE"),
			"pitney_v2", "95055", 100, time.Now())

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestBatch_Finalize(t *testing.T) {
	testCases := []struct {
		name     string
		success  int
		expected batch.Status
		refund   kernel.Cents
	}{
		{name: "full success", success: 3, expected: batch.Completed, refund: 0},
		{name: "partial failure", success: 2, expected: batch.Partial, refund: 300},
		{name: "total outage", success: 0, expected: batch.Failed, refund: 900},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := newQueuedBatch(t, 3)
			require.NoError(t, b.Claim())

			refund, err := b.Finalize(tc.success)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, b.Status())
			assert.Equal(t, tc.success, b.SuccessCount())
			assert.Equal(t, tc.refund, refund)
			assert.Equal(t, b.Charge(), b.UnitPrice().Times(b.SuccessCount())+refund)
		})
	}

	t.Run("should not finalize a queued batch", func(t *testing.T) {
		b := newQueuedBatch(t, 3)

		_, err := b.Finalize(3)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, batch.Queued, b.Status())
	})

	t.Run("should reject success count above requested", func(t *testing.T) {
		b := newQueuedBatch(t, 3)
		require.NoError(t, b.Claim())

		_, err := b.Finalize(4)

		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestBatch_Abandon(t *testing.T) {
	b, err := batch.RestoreBatch(kernel.NewUUID(), kernel.NewUUID(), 4, 2, batch.Processing,
		"pitney_v2", "95055", 250, time.Now())
	require.NoError(t, err)

	refund, err := b.Abandon()

	require.NoError(t, err)
	assert.Equal(t, batch.Failed, b.Status())
	assert.Equal(t, 0, b.SuccessCount())
	assert.Equal(t, kernel.Cents(1000), refund)
}

func TestBatch_Claim(t *testing.T) {
	b := newQueuedBatch(t, 1)

	require.NoError(t, b.Claim())
	assert.Equal(t, batch.Processing, b.Status())
	assert.True(t, b.IsSingleItem())

	assert.ErrorIs(t, b.Claim(), errs.ErrValueIsInvalid)
}

func TestBatch_Confirmation(t *testing.T) {
	restore := func(t *testing.T, status batch.Status) *batch.Batch {
		t.Helper()
		b, err := batch.RestoreBatch(kernel.NewUUID(), kernel.NewUUID(), 2, 2, status,
			"pitney_v2", "95055", 100, time.Now())
		require.NoError(t, err)
		return b
	}

	t.Run("allowed entry states", func(t *testing.T) {
		for _, s := range []batch.Status{batch.Completed, batch.Partial, batch.Confirmed, batch.AuthError, batch.ConfirmFailed} {
			b := restore(t, s)
			require.NoError(t, b.BeginConfirmation(), s)
			assert.Equal(t, batch.Confirming, b.Status())
		}
	})

	t.Run("rejected entry states", func(t *testing.T) {
		for _, s := range []batch.Status{batch.Queued, batch.Processing, batch.Failed, batch.Confirming} {
			b := restore(t, s)
			assert.Error(t, b.BeginConfirmation(), s)
			assert.Equal(t, s, b.Status())
		}
	})

	t.Run("finish and fail", func(t *testing.T) {
		ok := restore(t, batch.Confirming)
		require.NoError(t, ok.FinishConfirmation(false))
		assert.Equal(t, batch.Confirmed, ok.Status())

		dead := restore(t, batch.Confirming)
		require.NoError(t, dead.FinishConfirmation(true))
		assert.Equal(t, batch.AuthError, dead.Status())

		cancelled := restore(t, batch.Confirming)
		require.NoError(t, cancelled.FailConfirmation())
		assert.Equal(t, batch.ConfirmFailed, cancelled.Status())

		assert.Error(t, restore(t, batch.Completed).FailConfirmation())
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, batch.Queued.IsTerminal())
	assert.False(t, batch.Processing.IsTerminal())
	assert.False(t, batch.Confirming.IsTerminal())
	assert.True(t, batch.Partial.IsTerminal())
	assert.True(t, batch.AuthError.IsTerminal())
	assert.False(t, batch.Status("bogus").IsTerminal())

	s, err := batch.ParseStatus("CONFIRM_FAILED")
	require.NoError(t, err)
	assert.Equal(t, batch.ConfirmFailed, s)
}
