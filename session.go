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
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wacul/ptr"

	"github.com/Djamyahia/pharmarecon/model"
)

// InvalidResolutionError is returned when a resolve call targets a row that
// is not pending, does not exist, or names an unknown catalog entry. The
// failure is local and synchronous, and session state is left unchanged, so
// callers can safely retry with corrected input.
type InvalidResolutionError struct {
	SessionID string
	RowIndex  int
	EntryID   string
	Reason    string
}

func (e InvalidResolutionError) Error() string {
	return fmt.Sprintf("invalid resolution for row %d in session %s: %s", e.RowIndex, e.SessionID, e.Reason)
}

// ReconciliationSession owns the per-batch reconciliation state: the original
// ordered rows, one outcome per row in the same order, and the set of row
// indices still pending a human decision. It is created once per uploaded
// batch and mutated only by Resolve.
//
// Outcome slots are written concurrently during classification (each worker
// owns distinct indices); afterwards all mutation goes through the session
// mutex, so two concurrent Resolve calls on the same row can never both
// succeed.
type ReconciliationSession struct {
	SessionID string

	// exportMu serializes the whole read-persist-mark export sequence.
	// mu alone is not enough: it guards each step, but two concurrent
	// exports could interleave between MatchedRowsPendingExport and
	// MarkExported and persist the same rows twice.
	exportMu sync.Mutex

	mu          sync.Mutex
	index       *CatalogIndex
	rows        []model.ImportRow
	outcomes    []model.RowOutcome
	pending     map[int]struct{}
	exported    map[int]struct{}
	status      string
	startedAt   time.Time
	completedAt *time.Time
}

// newSession wires classified outcomes into a session. Outcomes must be the
// same length and order as rows; this is the engine's core invariant and is
// asserted by construction in ClassifyBatch.
func newSession(rows []model.ImportRow, outcomes []model.RowOutcome, ix *CatalogIndex) *ReconciliationSession {
	s := &ReconciliationSession{
		SessionID: model.GenerateUUIDWithSuffix("session"),
		index:     ix,
		rows:      rows,
		outcomes:  outcomes,
		pending:   make(map[int]struct{}),
		exported:  make(map[int]struct{}),
		status:    model.SessionInProgress,
		startedAt: time.Now(),
	}
	for i, outcome := range outcomes {
		if outcome.Status == model.OutcomeAmbiguous {
			s.pending[i] = struct{}{}
		}
	}
	return s
}

// Resolve converts the ambiguous row at rowIndex into a matched row bound to
// the chosen catalog entry. The chosen entry need not be the top-ranked
// candidate, or a suggested candidate at all, as long as it exists in the
// catalog. Resolving an already-matched row, an out-of-range index, or an
// unknown entry id fails with InvalidResolutionError and no partial mutation.
func (s *ReconciliationSession) Resolve(rowIndex int, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rowIndex < 0 || rowIndex >= len(s.outcomes) {
		return InvalidResolutionError{SessionID: s.SessionID, RowIndex: rowIndex, EntryID: entryID, Reason: "row index out of range"}
	}
	if _, isPending := s.pending[rowIndex]; !isPending {
		return InvalidResolutionError{SessionID: s.SessionID, RowIndex: rowIndex, EntryID: entryID, Reason: "row is not pending resolution"}
	}
	if !s.index.Contains(entryID) {
		return InvalidResolutionError{SessionID: s.SessionID, RowIndex: rowIndex, EntryID: entryID, Reason: "unknown catalog entry"}
	}

	s.outcomes[rowIndex] = model.RowOutcome{
		Status:  model.OutcomeMatched,
		Row:     s.rows[rowIndex],
		EntryID: entryID,
	}
	delete(s.pending, rowIndex)
	return nil
}

// Outcomes returns a copy of the outcome list, always the same length and
// order as the input rows so callers can zip outcomes back by index.
func (s *ReconciliationSession) Outcomes() []model.RowOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.RowOutcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// PendingIndices returns the sorted indices of rows still awaiting a
// decision.
func (s *ReconciliationSession) PendingIndices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	indices := make([]int, 0, len(s.pending))
	for i := range s.pending {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// MatchedRows returns every currently-matched row with its catalog entry id,
// in row order. Callers may persist this subset incrementally; they do not
// have to wait for the whole batch to resolve.
func (s *ReconciliationSession) MatchedRows() []model.MatchedRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchedRowsLocked(false)
}

// MatchedRowsPendingExport returns matched rows not yet handed to the
// inventory store. Pair with MarkExported after persistence succeeds so
// incremental export never writes an item twice and a failed write can be
// retried.
func (s *ReconciliationSession) MatchedRowsPendingExport() []model.MatchedRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchedRowsLocked(true)
}

// MarkExported records that the given rows were persisted.
func (s *ReconciliationSession) MarkExported(rows []model.MatchedRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.exported[row.RowIndex] = struct{}{}
	}
}

func (s *ReconciliationSession) matchedRowsLocked(skipExported bool) []model.MatchedRow {
	matched := make([]model.MatchedRow, 0, len(s.outcomes)-len(s.pending))
	for i, outcome := range s.outcomes {
		if outcome.Status != model.OutcomeMatched {
			continue
		}
		if skipExported {
			if _, done := s.exported[i]; done {
				continue
			}
		}
		matched = append(matched, model.MatchedRow{RowIndex: i, EntryID: outcome.EntryID, Row: outcome.Row})
	}
	return matched
}

// IsComplete reports whether every row is matched.
func (s *ReconciliationSession) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) == 0
}

// Abandon marks the session terminal without resolving the remaining rows.
func (s *ReconciliationSession) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == model.SessionInProgress {
		s.status = model.SessionAbandoned
		s.completedAt = ptr.Time(time.Now())
	}
}

// markCompleted transitions the session to completed once every row is
// matched and persisted. No-op if rows are still pending.
func (s *ReconciliationSession) markCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > 0 || s.status != model.SessionInProgress {
		return false
	}
	s.status = model.SessionCompleted
	s.completedAt = ptr.Time(time.Now())
	return true
}

// Record snapshots the session into its persistent audit form.
func (s *ReconciliationSession) Record() model.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SessionRecord{
		SessionID:   s.SessionID,
		Status:      s.status,
		TotalRows:   len(s.outcomes),
		MatchedRows: len(s.outcomes) - len(s.pending),
		PendingRows: len(s.pending),
		StartedAt:   s.startedAt,
		CompletedAt: s.completedAt,
	}
}
