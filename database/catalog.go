package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Djamyahia/pharmarecon/model"
)

// GetCatalogEntries fetches the full canonical catalog ordered by insertion.
// The engine builds its in-memory index from this snapshot once per session;
// re-fetching after catalog changes is the caller's responsibility.
func (d *Datasource) GetCatalogEntries(ctx context.Context) ([]model.CatalogEntry, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT entry_id, name, form, dosage, packaging, manufacturer
		FROM catalog_entries
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "querying catalog entries")
	}
	defer rows.Close()

	var entries []model.CatalogEntry
	for rows.Next() {
		var entry model.CatalogEntry
		err := rows.Scan(&entry.EntryID, &entry.Name, &entry.Form, &entry.Dosage, &entry.Packaging, &entry.Manufacturer)
		if err != nil {
			return nil, errors.Wrap(err, "scanning catalog entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating catalog entries")
	}
	return entries, nil
}
