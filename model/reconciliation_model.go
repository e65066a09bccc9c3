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
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome status values for a classified import row.
const (
	OutcomeMatched   = "matched"   // Row is bound to exactly one catalog entry.
	OutcomeAmbiguous = "ambiguous" // Row needs a human decision among ranked candidates.
)

// ImportRow is a single supplier stock row as produced by an upstream
// spreadsheet parser. All textual fields are free text and any of them may be
// empty; rows have no identity of their own and are positional within a batch.
type ImportRow struct {
	Name         string          `json:"name"`
	Form         string          `json:"form"`
	Dosage       string          `json:"dosage"`
	Packaging    string          `json:"packaging"`
	Manufacturer string          `json:"manufacturer"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// MatchCandidate is a fuzzy-match suggestion for an ambiguous row.
// Score is always in [0, 1]; candidate lists are sorted descending by score
// with catalog insertion order breaking ties, so suggestion lists are
// reproducible across runs with identical input.
type MatchCandidate struct {
	EntryID string  `json:"entry_id"`
	Score   float64 `json:"score"`
}

// RowOutcome is the classification result for one import row. Status is
// either OutcomeMatched (EntryID set, Candidates nil) or OutcomeAmbiguous
// (EntryID empty, Candidates holds zero or more ranked suggestions).
type RowOutcome struct {
	Status     string           `json:"status"`
	Row        ImportRow        `json:"row"`
	EntryID    string           `json:"entry_id,omitempty"`
	Candidates []MatchCandidate `json:"candidates,omitempty"`
}

// MatchedRow pairs an import row with the catalog entry it resolved to,
// ready for persistence by the caller.
type MatchedRow struct {
	RowIndex int       `json:"row_index"`
	EntryID  string    `json:"entry_id"`
	Row      ImportRow `json:"row"`
}

// Session status values.
const (
	SessionInProgress = "in_progress" // Some rows are still pending resolution.
	SessionCompleted  = "completed"   // Every row is matched and persisted.
	SessionAbandoned  = "abandoned"   // The user gave up on the import.
)

// SessionRecord is the persistent audit record of a reconciliation session.
type SessionRecord struct {
	ID          int64      `json:"-"`
	SessionID   string     `json:"session_id"`
	Status      string     `json:"status"`
	TotalRows   int        `json:"total_rows"`
	MatchedRows int        `json:"matched_rows"`
	PendingRows int        `json:"pending_rows"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// InventoryItem is a matched row shaped for the inventory store.
type InventoryItem struct {
	EntryID    string          `json:"entry_id"`
	SessionID  string          `json:"session_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}
