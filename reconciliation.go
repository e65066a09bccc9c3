/*
Copyright 2025 PharmaRecon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pharmarecon

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Djamyahia/pharmarecon/config"
	"github.com/Djamyahia/pharmarecon/database"
	"github.com/Djamyahia/pharmarecon/internal/cache"
	"github.com/Djamyahia/pharmarecon/model"
)

const tracerName = "pharmarecon.reconciliation"

// classifyRow classifies a single row: exact resolution first, fuzzy ranking
// only when exact fails. Classification is a pure function of (row, index)
// and never fails; a row that matches nothing lands in the ambiguous state
// with an empty candidate list.
func classifyRow(row model.ImportRow, ix *CatalogIndex, ranker *Ranker) model.RowOutcome {
	if entryID, ok := ResolveExact(row, ix); ok {
		return model.RowOutcome{Status: model.OutcomeMatched, Row: row, EntryID: entryID}
	}
	return model.RowOutcome{
		Status:     model.OutcomeAmbiguous,
		Row:        row,
		Candidates: ranker.Rank(row, ix),
	}
}

// ClassifyBatch classifies every row concurrently over a bounded worker
// pool. No row's outcome depends on any other row's, so completion order is
// irrelevant: each worker writes results back by row index. The returned
// slice is always the same length and order as rows; no row is ever dropped.
func ClassifyBatch(ctx context.Context, rows []model.ImportRow, ix *CatalogIndex, ranker *Ranker, workers int) []model.RowOutcome {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ClassifyBatch",
		trace.WithAttributes(attribute.Int("rows", len(rows)), attribute.Int("catalog_size", ix.Len())))
	defer span.End()

	outcomes := make([]model.RowOutcome, len(rows))
	if len(rows) == 0 {
		return outcomes
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(rows) {
		workers = len(rows)
	}

	jobs := make(chan int, len(rows))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					// A cancelled batch still yields a full outcome list;
					// unprocessed rows classify as ambiguous with no
					// suggestions rather than vanish.
					outcomes[i] = model.RowOutcome{Status: model.OutcomeAmbiguous, Row: rows[i]}
				default:
					outcomes[i] = classifyRow(rows[i], ix, ranker)
				}
			}
		}()
	}
	for i := range rows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// Reconciler is the reconciliation service: it owns the live sessions and
// talks to the catalog store, the inventory store and the catalog cache.
type Reconciler struct {
	datasource database.IDataSource
	cache      cache.CatalogCache
	ranker     *Ranker
	workers    int
	catalogTTL time.Duration

	mu       sync.RWMutex
	sessions map[string]*ReconciliationSession
}

// NewReconciler initializes the service from the loaded configuration. The
// catalog cache is optional; passing nil means every session fetches the
// catalog from the datasource.
func NewReconciler(db database.IDataSource, catalogCache cache.CatalogCache) (*Reconciler, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	return &Reconciler{
		datasource: db,
		cache:      catalogCache,
		ranker:     NewRanker(cnf.Matching),
		workers:    *cnf.Matching.Workers,
		catalogTTL: time.Duration(*cnf.Catalog.CacheTTLSec) * time.Second,
		sessions:   make(map[string]*ReconciliationSession),
	}, nil
}

// fetchCatalog returns the catalog snapshot, preferring the cache. Cache
// failures are logged and fall through to the datasource; classification
// must not fail because Redis is unavailable.
func (s *Reconciler) fetchCatalog(ctx context.Context) ([]model.CatalogEntry, error) {
	if s.cache != nil {
		entries, err := s.cache.GetCatalog(ctx)
		if err != nil {
			logrus.WithError(err).Warn("catalog cache read failed, falling back to datasource")
		} else if entries != nil {
			return entries, nil
		}
	}

	entries, err := s.datasource.GetCatalogEntries(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching catalog")
	}

	if s.cache != nil {
		if err := s.cache.SetCatalog(ctx, entries, s.catalogTTL); err != nil {
			logrus.WithError(err).Warn("catalog cache write failed")
		}
	}
	return entries, nil
}

// StartReconciliation creates a session for an uploaded batch: it fetches
// the catalog, builds the index, classifies every row and records the audit
// trail. The returned session is ready for resolve calls.
func (s *Reconciler) StartReconciliation(ctx context.Context, rows []model.ImportRow) (*ReconciliationSession, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "StartReconciliation")
	defer span.End()

	entries, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	ix := BuildIndex(entries)

	outcomes := ClassifyBatch(ctx, rows, ix, s.ranker, s.workers)
	session := newSession(rows, outcomes, ix)

	record := session.Record()
	if err := s.datasource.RecordReconciliationSession(ctx, &record); err != nil {
		return nil, errors.Wrap(err, "recording reconciliation session")
	}

	s.mu.Lock()
	s.sessions[session.SessionID] = session
	s.mu.Unlock()

	span.SetAttributes(attribute.String("session_id", session.SessionID))
	logrus.WithFields(logrus.Fields{
		"session_id": session.SessionID,
		"rows":       record.TotalRows,
		"matched":    record.MatchedRows,
		"pending":    record.PendingRows,
	}).Info("reconciliation session started")

	return session, nil
}

// GetSession returns a live session by id.
func (s *Reconciler) GetSession(sessionID string) (*ReconciliationSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// ResolveRow resolves a single ambiguous row in a session and refreshes the
// audit record. Audit failures are logged, not surfaced: the in-memory
// resolution already happened and is the source of truth for the session.
func (s *Reconciler) ResolveRow(ctx context.Context, sessionID string, rowIndex int, entryID string) error {
	session, ok := s.GetSession(sessionID)
	if !ok {
		return errors.Errorf("session %s not found", sessionID)
	}

	if err := session.Resolve(rowIndex, entryID); err != nil {
		return err
	}

	record := session.Record()
	if err := s.datasource.UpdateReconciliationSessionStatus(ctx, sessionID, record.Status, record.MatchedRows, record.PendingRows); err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("failed to update session audit record")
	}
	return nil
}

// ExportMatched persists the matched rows not yet exported and returns them.
// Partial export is supported: the caller may export after each resolution
// instead of waiting for the whole batch. When every row is matched the
// session transitions to completed.
func (s *Reconciler) ExportMatched(ctx context.Context, sessionID string) ([]model.MatchedRow, error) {
	session, ok := s.GetSession(sessionID)
	if !ok {
		return nil, errors.Errorf("session %s not found", sessionID)
	}

	// One export at a time per session, or two callers would both see the
	// same pending rows and double-write the inventory.
	session.exportMu.Lock()
	defer session.exportMu.Unlock()

	rows := session.MatchedRowsPendingExport()
	if len(rows) > 0 {
		items := make([]model.InventoryItem, len(rows))
		for i, row := range rows {
			items[i] = model.InventoryItem{
				EntryID:    row.EntryID,
				SessionID:  sessionID,
				Quantity:   row.Row.Quantity,
				UnitPrice:  row.Row.UnitPrice,
				ExpiryDate: row.Row.ExpiryDate,
			}
		}
		if err := s.datasource.RecordInventoryItems(ctx, items); err != nil {
			return nil, errors.Wrap(err, "persisting matched rows")
		}
		session.MarkExported(rows)
	}

	if session.markCompleted() {
		record := session.Record()
		if err := s.datasource.UpdateReconciliationSessionStatus(ctx, sessionID, record.Status, record.MatchedRows, record.PendingRows); err != nil {
			logrus.WithError(err).WithField("session_id", sessionID).Error("failed to finalize session audit record")
		}
		logrus.WithField("session_id", sessionID).Info("reconciliation session completed")
	}

	return rows, nil
}

// AbandonSession marks a session terminal and drops it from the live set.
func (s *Reconciler) AbandonSession(ctx context.Context, sessionID string) error {
	session, ok := s.GetSession(sessionID)
	if !ok {
		return errors.Errorf("session %s not found", sessionID)
	}

	session.Abandon()
	record := session.Record()
	if err := s.datasource.UpdateReconciliationSessionStatus(ctx, sessionID, record.Status, record.MatchedRows, record.PendingRows); err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("failed to update abandoned session audit record")
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
