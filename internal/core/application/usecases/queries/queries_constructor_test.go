package queries_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatchScopedQueries_RequireIDs(t *testing.T) {
	id, owner := kernel.NewUUID(), kernel.NewUUID()

	q, err := queries.NewGetBatchStatusQuery(id, owner)
	require.NoError(t, err)
	assert.True(t, q.BatchID().IsEqual(id))
	assert.True(t, q.Owner().IsEqual(owner))

	_, err = queries.NewGetBatchStatusQuery(kernel.UUID{}, owner)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	_, err = queries.NewListBatchResultsQuery(id, kernel.UUID{})
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	export, err := queries.NewExportBatchResultsQuery(id, owner)
	require.NoError(t, err)
	assert.True(t, export.BatchID().IsEqual(id))
}

func TestQueries_ZeroValuesAreNotConstructed(t *testing.T) {
	assert.ErrorIs(t, queries.GetBatchStatusQuery{}.Validate(), queries.ErrGetBatchStatusQueryIsNotConstructed)
	assert.ErrorIs(t, queries.ListBatchResultsQuery{}.Validate(), queries.ErrListBatchResultsQueryIsNotConstructed)
	assert.ErrorIs(t, queries.ExportBatchResultsQuery{}.Validate(), queries.ErrExportBatchResultsQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetWorkerStatusQuery{}.Validate(), queries.ErrGetWorkerStatusQueryIsNotConstructed)
}

func TestNewGetWorkerStatusQuery(t *testing.T) {
	_, err := queries.NewGetWorkerStatusQuery(time.Time{})
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	local := time.Date(2026, 1, 1, 8, 0, 0, 0, time.FixedZone("X", 3600))
	q, err := queries.NewGetWorkerStatusQuery(local)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, q.Now().Location())
}
