package result_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/result"
	"fulfillment/internal/core/domain/model/tracking"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	batchID, owner := kernel.NewUUID(), kernel.NewUUID()
	parties := result.Parties{SenderName: "Acme", RecipientName: "Jane", RecipientAddress: "9 Elm Salem OR 97301"}
	number, err := tracking.NewNumber("9505", "90000000", "01312345")
	require.NoError(t, err)

	t.Run("completed record carries the number", func(t *testing.T) {
		r, err := result.NewCompleted(batchID, owner, 1, "SKU-1", "111-2223334-5556667", number, parties, "95055", time.Now())

		require.NoError(t, err)
		assert.Equal(t, result.Completed, r.Status())
		assert.Equal(t, number.String(), r.Tracking().String())
		assert.True(t, r.HasLabel())

		require.NoError(t, r.Confirm())
		assert.Equal(t, result.Confirmed, r.Status())
	})

	t.Run("failed record carries the sentinel", func(t *testing.T) {
		r, err := result.NewFailed(batchID, owner, 2, "", "", parties, "95055", time.Now())

		require.NoError(t, err)
		assert.Equal(t, result.Failed, r.Status())
		assert.Equal(t, tracking.FailedValue, r.Tracking().String())
		assert.False(t, r.HasLabel())
		assert.Error(t, r.Confirm())
	})

	t.Run("completed requires a number", func(t *testing.T) {
		_, err := result.NewCompleted(batchID, owner, 1, "", "", tracking.Number{}, parties, "95055", time.Now())
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("restore rejects inconsistent status", func(t *testing.T) {
		_, err := result.RestoreRecord(7, batchID, owner, 1, "", "", tracking.Number{}, result.Confirmed, parties, "95055", time.Now())
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

		r, err := result.RestoreRecord(7, batchID, owner, 1, "", "", number, result.Confirmed, parties, "95055", time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(7), r.ID())
	})
}
