package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/leadsync/internal/mailbox"
	"github.com/sells-group/leadsync/internal/model"
	"github.com/sells-group/leadsync/internal/store"
)

// --- Mailbox Mock ---

type mockMailClient struct {
	mock.Mock
}

func (m *mockMailClient) List(ctx context.Context, q mailbox.Query) ([]mailbox.Ref, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mailbox.Ref), args.Error(1)
}

func (m *mockMailClient) Get(ctx context.Context, id string) (*mailbox.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mailbox.Message), args.Error(1)
}

func (m *mockMailClient) MarkRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Sink Mock ---

type mockSink struct {
	mock.Mock
}

func (m *mockSink) SeenIDs(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *mockSink) Append(ctx context.Context, rec model.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// --- Journal Mock ---

type mockJournal struct {
	mock.Mock
}

func (m *mockJournal) CreateRun(ctx context.Context) (*model.Run, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockJournal) CompleteRun(ctx context.Context, runID string, status model.RunStatus, report *model.RunReport, errMsg string) error {
	args := m.Called(ctx, runID, status, report, errMsg)
	return args.Error(0)
}

func (m *mockJournal) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockJournal) RecordLead(ctx context.Context, runID string, rec model.Record) (*model.Lead, error) {
	args := m.Called(ctx, runID, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *mockJournal) ListLeads(ctx context.Context, filter store.LeadFilter) ([]model.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

func (m *mockJournal) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockJournal) Close() error {
	args := m.Called()
	return args.Error(0)
}
