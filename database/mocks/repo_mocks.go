package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Djamyahia/pharmarecon/model"
)

// MockDataSource is a testify mock of database.IDataSource.
type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) GetCatalogEntries(ctx context.Context) ([]model.CatalogEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]model.CatalogEntry)
	return entries, args.Error(1)
}

func (m *MockDataSource) RecordInventoryItems(ctx context.Context, items []model.InventoryItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockDataSource) RecordReconciliationSession(ctx context.Context, record *model.SessionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDataSource) UpdateReconciliationSessionStatus(ctx context.Context, sessionID, status string, matched, pending int) error {
	args := m.Called(ctx, sessionID, status, matched, pending)
	return args.Error(0)
}

func (m *MockDataSource) GetReconciliationSession(ctx context.Context, sessionID string) (*model.SessionRecord, error) {
	args := m.Called(ctx, sessionID)
	record, _ := args.Get(0).(*model.SessionRecord)
	return record, args.Error(1)
}
