package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Djamyahia/pharmarecon/model"
)

// RecordInventoryItems persists a batch of matched rows inside a single
// transaction, so a partial export never leaves half-written stock.
func (d *Datasource) RecordInventoryItems(ctx context.Context, items []model.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning inventory transaction")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory_items (entry_id, session_id, quantity, unit_price, expiry_date)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "preparing inventory insert")
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.ExecContext(ctx, item.EntryID, item.SessionID, item.Quantity, item.UnitPrice.String(), item.ExpiryDate)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "inserting inventory item for entry %s", item.EntryID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing inventory transaction")
	}
	return nil
}
