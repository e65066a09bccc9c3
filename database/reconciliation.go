package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/Djamyahia/pharmarecon/model"
)

// RecordReconciliationSession inserts the audit record for a new session.
func (d *Datasource) RecordReconciliationSession(ctx context.Context, record *model.SessionRecord) error {
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO reconciliation_sessions (session_id, status, total_rows, matched_rows, pending_rows, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, record.SessionID, record.Status, record.TotalRows, record.MatchedRows, record.PendingRows, record.StartedAt, record.CompletedAt).Scan(&record.ID)
	return errors.Wrap(err, "recording reconciliation session")
}

// UpdateReconciliationSessionStatus refreshes status and row counters for a
// session as resolutions and exports progress.
func (d *Datasource) UpdateReconciliationSessionStatus(ctx context.Context, sessionID, status string, matched, pending int) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE reconciliation_sessions
		SET status = $2, matched_rows = $3, pending_rows = $4,
		    completed_at = CASE WHEN $2 IN ('completed', 'abandoned') THEN NOW() ELSE completed_at END
		WHERE session_id = $1
	`, sessionID, status, matched, pending)
	if err != nil {
		return errors.Wrap(err, "updating reconciliation session status")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if affected == 0 {
		return errors.Errorf("reconciliation session %s not found", sessionID)
	}
	return nil
}

// GetReconciliationSession loads a session audit record.
func (d *Datasource) GetReconciliationSession(ctx context.Context, sessionID string) (*model.SessionRecord, error) {
	record := &model.SessionRecord{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, session_id, status, total_rows, matched_rows, pending_rows, started_at, completed_at
		FROM reconciliation_sessions
		WHERE session_id = $1
	`, sessionID).Scan(&record.ID, &record.SessionID, &record.Status, &record.TotalRows, &record.MatchedRows, &record.PendingRows, &record.StartedAt, &record.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, errors.Errorf("reconciliation session %s not found", sessionID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying reconciliation session")
	}
	return record, nil
}
