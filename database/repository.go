package database

import (
	"context"

	"github.com/Djamyahia/pharmarecon/model"
)

// ICatalog is the read-only view of the canonical product catalog. The
// engine never writes catalog data.
type ICatalog interface {
	// GetCatalogEntries returns the full catalog in insertion order. The
	// order is significant: it is the deterministic tie-break for fuzzy
	// candidates and the winner for duplicate composite tuples.
	GetCatalogEntries(ctx context.Context) ([]model.CatalogEntry, error)
}

// IInventory persists matched rows into the stock inventory.
type IInventory interface {
	RecordInventoryItems(ctx context.Context, items []model.InventoryItem) error
}

// IReconciliation stores the audit trail of reconciliation sessions.
type IReconciliation interface {
	RecordReconciliationSession(ctx context.Context, record *model.SessionRecord) error
	UpdateReconciliationSessionStatus(ctx context.Context, sessionID, status string, matched, pending int) error
	GetReconciliationSession(ctx context.Context, sessionID string) (*model.SessionRecord, error)
}

// IDataSource aggregates every store the reconciliation service talks to.
type IDataSource interface {
	ICatalog
	IInventory
	IReconciliation
}
