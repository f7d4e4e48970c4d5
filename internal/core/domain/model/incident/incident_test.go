package incident_test

import (
	"strings"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/incident"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncident(t *testing.T) {
	batchID := kernel.NewUUID()

	i, err := incident.NewIncident(incident.SourceWorker, &batchID, "  render service unreachable ", time.Now())
	require.NoError(t, err)
	assert.Equal(t, incident.SourceWorker, i.Source())
	assert.Equal(t, "render service unreachable", i.Message())
	require.NotNil(t, i.BatchID())
	assert.True(t, batchID.IsEqual(*i.BatchID()))
	require.NoError(t, i.Validate())

	_, err = incident.NewIncident("", nil, "x", time.Now())
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = incident.NewIncident(incident.SourceRetention, nil, " ", time.Now())
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	long, err := incident.NewIncident(incident.SourceRetention, nil, strings.Repeat("x", 5000), time.Now())
	require.NoError(t, err)
	assert.Len(t, long.Message(), 2000)

	var zero incident.Incident
	assert.ErrorIs(t, zero.Validate(), incident.ErrIncidentIsNotConstructed)
}
