package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Djamyahia/pharmarecon/model"
)

func newMockDatasource(t *testing.T) (*Datasource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Datasource{Conn: db}, mock
}

func TestGetCatalogEntries(t *testing.T) {
	ds, mock := newMockDatasource(t)

	rows := sqlmock.NewRows([]string{"entry_id", "name", "form", "dosage", "packaging", "manufacturer"}).
		AddRow("A1", "Doliprane", "Sachet", "300mg", "boite de 12", "Sanofi").
		AddRow("B1", "Efferalgan", "Comprimé", "500mg", "boite de 16", "UPSA")

	mock.ExpectQuery("SELECT entry_id, name, form, dosage, packaging, manufacturer").
		WillReturnRows(rows)

	entries, err := ds.GetCatalogEntries(context.Background())
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "A1", entries[0].EntryID)
	assert.Equal(t, "Efferalgan", entries[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCatalogEntriesQueryError(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectQuery("SELECT entry_id, name, form, dosage, packaging, manufacturer").
		WillReturnError(fmt.Errorf("relation does not exist"))

	_, err := ds.GetCatalogEntries(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "querying catalog entries")
}

func TestRecordInventoryItems(t *testing.T) {
	ds, mock := newMockDatasource(t)

	expiry := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)
	items := []model.InventoryItem{
		{EntryID: "A1", SessionID: "session_1", Quantity: 10, UnitPrice: decimal.NewFromFloat(2.5), ExpiryDate: &expiry},
		{EntryID: "B1", SessionID: "session_1", Quantity: 4, UnitPrice: decimal.NewFromInt(3)},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO inventory_items")
	prep.ExpectExec().
		WithArgs("A1", "session_1", int64(10), "2.5", expiry).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("B1", "session_1", int64(4), "3", nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := ds.RecordInventoryItems(context.Background(), items)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordInventoryItemsRollsBackOnFailure(t *testing.T) {
	ds, mock := newMockDatasource(t)

	items := []model.InventoryItem{
		{EntryID: "A1", SessionID: "session_1", Quantity: 10, UnitPrice: decimal.NewFromInt(1)},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO inventory_items")
	prep.ExpectExec().WillReturnError(fmt.Errorf("foreign key violation"))
	mock.ExpectRollback()

	err := ds.RecordInventoryItems(context.Background(), items)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordInventoryItemsEmptyBatch(t *testing.T) {
	ds, mock := newMockDatasource(t)

	// No database traffic at all for an empty batch.
	assert.NoError(t, ds.RecordInventoryItems(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordReconciliationSession(t *testing.T) {
	ds, mock := newMockDatasource(t)

	record := &model.SessionRecord{
		SessionID:   "session_1",
		Status:      model.SessionInProgress,
		TotalRows:   5,
		MatchedRows: 3,
		PendingRows: 2,
		StartedAt:   time.Now(),
	}

	mock.ExpectQuery("INSERT INTO reconciliation_sessions").
		WithArgs(record.SessionID, record.Status, record.TotalRows, record.MatchedRows, record.PendingRows, record.StartedAt, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	err := ds.RecordReconciliationSession(context.Background(), record)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReconciliationSessionStatus(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectExec("UPDATE reconciliation_sessions").
		WithArgs("session_1", model.SessionCompleted, 5, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ds.UpdateReconciliationSessionStatus(context.Background(), "session_1", model.SessionCompleted, 5, 0)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReconciliationSessionStatusNotFound(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectExec("UPDATE reconciliation_sessions").
		WithArgs("session_missing", model.SessionAbandoned, 0, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ds.UpdateReconciliationSessionStatus(context.Background(), "session_missing", model.SessionAbandoned, 0, 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetReconciliationSession(t *testing.T) {
	ds, mock := newMockDatasource(t)

	started := time.Now()
	mock.ExpectQuery("SELECT id, session_id, status, total_rows, matched_rows, pending_rows").
		WithArgs("session_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "status", "total_rows", "matched_rows", "pending_rows", "started_at", "completed_at"}).
			AddRow(int64(7), "session_1", model.SessionInProgress, 5, 3, 2, started, nil))

	record, err := ds.GetReconciliationSession(context.Background(), "session_1")
	assert.NoError(t, err)
	assert.Equal(t, "session_1", record.SessionID)
	assert.Equal(t, 2, record.PendingRows)
	assert.Nil(t, record.CompletedAt)
}

func TestGetReconciliationSessionNotFound(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectQuery("SELECT id, session_id, status, total_rows, matched_rows, pending_rows").
		WithArgs("session_missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "status", "total_rows", "matched_rows", "pending_rows", "started_at", "completed_at"}))

	_, err := ds.GetReconciliationSession(context.Background(), "session_missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
