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
	"strings"

	"github.com/Djamyahia/pharmarecon/model"
)

// keySeparator joins normalized tuple fields into a composite key. A unit
// separator cannot appear in normalized text, so distinct tuples can never
// collide.
const keySeparator = "\x1f"

// compositeKey builds the exact-match identity for a catalog entry or import
// row from already-normalized fields.
func compositeKey(name, form, dosage, packaging, manufacturer string) string {
	return strings.Join([]string{name, form, dosage, packaging, manufacturer}, keySeparator)
}

// CatalogIndex is an in-memory, read-only view of the canonical product
// catalog, built once per import session. It may be shared across concurrent
// classification work without locking.
type CatalogIndex struct {
	entries   []model.CatalogEntry
	normNames []string          // normalized entry names, aligned with entries
	byKey     map[string]string // normalized composite tuple -> entry id
	byID      map[string]int    // entry id -> position
	blocks    map[string][]int  // first normalized name token -> entry positions
}

// BuildIndex constructs a CatalogIndex from the full catalog. Entry order is
// preserved: it is the deterministic tie-break order for fuzzy candidates,
// and when two entries normalize to the identical composite tuple (an
// upstream data-quality violation), the first-inserted entry wins every
// exact lookup.
func BuildIndex(entries []model.CatalogEntry) *CatalogIndex {
	ix := &CatalogIndex{
		entries:   make([]model.CatalogEntry, len(entries)),
		normNames: make([]string, len(entries)),
		byKey:     make(map[string]string, len(entries)),
		byID:      make(map[string]int, len(entries)),
		blocks:    make(map[string][]int),
	}
	copy(ix.entries, entries)

	for i, entry := range ix.entries {
		normName := Normalize(entry.Name)
		ix.normNames[i] = normName

		key := compositeKey(
			normName,
			Normalize(entry.Form),
			Normalize(entry.Dosage),
			Normalize(entry.Packaging),
			Normalize(entry.Manufacturer),
		)
		if _, exists := ix.byKey[key]; !exists {
			ix.byKey[key] = entry.EntryID
		}
		if _, exists := ix.byID[entry.EntryID]; !exists {
			ix.byID[entry.EntryID] = i
		}

		if token, _, _ := strings.Cut(normName, " "); token != "" {
			ix.blocks[token] = append(ix.blocks[token], i)
		}
	}
	return ix
}

// LookupExact returns the entry id whose normalized composite tuple equals
// the given already-normalized fields, or false when no entry matches.
func (ix *CatalogIndex) LookupExact(name, form, dosage, packaging, manufacturer string) (string, bool) {
	id, ok := ix.byKey[compositeKey(name, form, dosage, packaging, manufacturer)]
	return id, ok
}

// Contains reports whether an entry id exists in the catalog.
func (ix *CatalogIndex) Contains(entryID string) bool {
	_, ok := ix.byID[entryID]
	return ok
}

// Entry returns the catalog entry for an id.
func (ix *CatalogIndex) Entry(entryID string) (model.CatalogEntry, bool) {
	pos, ok := ix.byID[entryID]
	if !ok {
		return model.CatalogEntry{}, false
	}
	return ix.entries[pos], true
}

// All returns the catalog entries in insertion order. Scoring every entry is
// the dominant cost of fuzzy ranking; see block for the coarse pre-filter.
func (ix *CatalogIndex) All() []model.CatalogEntry {
	return ix.entries
}

// Len returns the number of catalog entries.
func (ix *CatalogIndex) Len() int {
	return len(ix.entries)
}

// normName returns the precomputed normalized name for the entry at pos.
func (ix *CatalogIndex) normName(pos int) string {
	return ix.normNames[pos]
}

// block returns candidate entry positions sharing the row name's first
// normalized token. Blocking is purely a throughput optimization for large
// catalogs; it can miss entries whose name diverges on the first token, so
// it is only consulted when explicitly enabled, and a row whose first token
// has no block at all falls back to the full scan.
func (ix *CatalogIndex) block(normRowName string) ([]int, bool) {
	token, _, _ := strings.Cut(normRowName, " ")
	if token == "" {
		return nil, false
	}
	positions, ok := ix.blocks[token]
	return positions, ok
}
