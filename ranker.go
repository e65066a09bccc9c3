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
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/Djamyahia/pharmarecon/config"
	"github.com/Djamyahia/pharmarecon/model"
)

// Ranker computes ranked fuzzy-match candidates for rows that failed exact
// resolution. It is stateless after construction and safe for concurrent use.
type Ranker struct {
	metric            strutil.StringMetric
	threshold         float64
	formBonus         float64
	dosageBonus       float64
	manufacturerBonus float64
	maxSuggestions    int
	useBlocking       bool
}

// NewRanker builds a Ranker from matching configuration. The configuration
// is expected to have passed validation, so defaults are already applied.
func NewRanker(cfg config.MatchingConfig) *Ranker {
	return &Ranker{
		metric:            metricFor(cfg.Metric),
		threshold:         *cfg.Threshold,
		formBonus:         *cfg.FormBonus,
		dosageBonus:       *cfg.DosageBonus,
		manufacturerBonus: *cfg.ManufacturerBonus,
		maxSuggestions:    *cfg.MaxSuggestions,
		useBlocking:       cfg.EnableBlocking,
	}
}

// metricFor maps a configured metric name to its implementation. Inputs are
// normalized (lower-cased) before comparison, so case sensitivity of the
// underlying metric does not matter.
func metricFor(name string) strutil.StringMetric {
	switch name {
	case "levenshtein":
		return levenshteinSimilarity{}
	default:
		return metrics.NewSorensenDice()
	}
}

// levenshteinSimilarity adapts edit distance into a [0, 1] similarity, where
// 1.0 means identical strings.
type levenshteinSimilarity struct{}

func (levenshteinSimilarity) Compare(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	distance := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)
	return 1 - float64(distance)/float64(longest)
}

// Rank scores a row against the catalog and returns the top candidates above
// the acceptance threshold, sorted descending by score with catalog insertion
// order breaking ties. Scores at or below the threshold are noise, not weak
// suggestions, and never appear in the result.
//
// A row whose name normalizes to the empty string can never match anything
// and yields an empty candidate list. An empty catalog likewise yields an
// empty list, not an error.
func (r *Ranker) Rank(row model.ImportRow, ix *CatalogIndex) []model.MatchCandidate {
	rowName := Normalize(row.Name)
	if rowName == "" || ix.Len() == 0 {
		return nil
	}

	rowForm := Normalize(row.Form)
	rowDosage := Normalize(row.Dosage)
	rowManufacturer := Normalize(row.Manufacturer)

	positions := r.candidatePositions(rowName, ix)

	candidates := make([]model.MatchCandidate, 0, len(positions))
	for _, pos := range positions {
		entry := ix.entries[pos]
		score := r.metric.Compare(rowName, ix.normName(pos))

		if containsEither(rowForm, Normalize(entry.Form)) {
			score += r.formBonus
		}
		if containsEither(rowDosage, Normalize(entry.Dosage)) {
			score += r.dosageBonus
		}
		// Manufacturer names are not abbreviation-prone the way form and
		// dosage are, so equality is the correct, stricter rule here.
		if entryManufacturer := Normalize(entry.Manufacturer); rowManufacturer != "" && rowManufacturer == entryManufacturer {
			score += r.manufacturerBonus
		}

		if score > 1 {
			score = 1
		}
		if score <= r.threshold {
			continue
		}
		candidates = append(candidates, model.MatchCandidate{EntryID: entry.EntryID, Score: score})
	}

	// Stable sort keeps insertion order on exact score ties, so suggestion
	// lists are reproducible run to run.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > r.maxSuggestions {
		candidates = candidates[:r.maxSuggestions]
	}
	return candidates
}

// candidatePositions selects the entries worth scoring. The blocking
// pre-filter trades a sliver of recall for an order-of-magnitude fewer
// comparisons on large catalogs and is off by default.
func (r *Ranker) candidatePositions(normRowName string, ix *CatalogIndex) []int {
	if r.useBlocking {
		if positions, ok := ix.block(normRowName); ok {
			return positions
		}
	}
	positions := make([]int, ix.Len())
	for i := range positions {
		positions[i] = i
	}
	return positions
}

// containsEither reports substring containment in either direction, so
// abbreviated packaging notation like "b/12" still matches "boite de 12".
// Both sides must be non-empty: an absent field earns no bonus.
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
