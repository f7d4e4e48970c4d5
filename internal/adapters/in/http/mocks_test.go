package http_test

import (
	"context"
	"io"
	"strings"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/mock"
)

type MockEnqueuer struct{ mock.Mock }

func (m *MockEnqueuer) Handle(ctx context.Context, cmd commands.EnqueueBatchCommand) (kernel.UUID, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

type MockTrigger struct{ mock.Mock }

func (m *MockTrigger) Handle(ctx context.Context, cmd commands.TriggerConfirmationCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockCanceller struct{ mock.Mock }

func (m *MockCanceller) Handle(ctx context.Context, cmd commands.CancelConfirmationCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockPauser struct{ mock.Mock }

func (m *MockPauser) Handle(ctx context.Context, cmd commands.SetWorkerPausedCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockStatusReader struct{ mock.Mock }

func (m *MockStatusReader) Handle(
	ctx context.Context,
	q queries.GetBatchStatusQuery,
) (queries.GetBatchStatusQueryResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(queries.GetBatchStatusQueryResponse), args.Error(1)
}

type MockResultsReader struct{ mock.Mock }

func (m *MockResultsReader) Handle(
	ctx context.Context,
	q queries.ListBatchResultsQuery,
) ([]queries.ListBatchResultsQueryResponse, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queries.ListBatchResultsQueryResponse), args.Error(1)
}

type MockExporter struct{ mock.Mock }

func (m *MockExporter) Handle(
	ctx context.Context,
	q queries.ExportBatchResultsQuery,
) (queries.ExportBatchResultsQueryResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(queries.ExportBatchResultsQueryResponse), args.Error(1)
}

type MockWorkersReader struct{ mock.Mock }

func (m *MockWorkersReader) Handle(
	ctx context.Context,
	q queries.GetWorkerStatusQuery,
) (queries.GetWorkerStatusQueryResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(queries.GetWorkerStatusQueryResponse), args.Error(1)
}

type MockDocumentStore struct{ mock.Mock }

func (m *MockDocumentStore) Save(ctx context.Context, batchID kernel.UUID, pages [][]byte) error {
	return m.Called(ctx, batchID, pages).Error(0)
}

func (m *MockDocumentStore) Open(ctx context.Context, batchID kernel.UUID) (io.ReadCloser, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return io.NopCloser(strings.NewReader(args.String(0))), args.Error(1)
}

func (m *MockDocumentStore) Delete(ctx context.Context, batchID kernel.UUID) error {
	return m.Called(ctx, batchID).Error(0)
}
