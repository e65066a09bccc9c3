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
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes text so combining diacritical marks become separate
// runes, removes them, then recomposes. "dôliprâne" becomes "doliprane".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a free-text field for comparison: diacritics are
// stripped, the result is folded to lower case, and runs of whitespace are
// collapsed to single spaces with surrounding whitespace trimmed.
//
// Normalize is pure, deterministic and total. Empty or absent input
// normalizes to the empty string; the rest of the pipeline treats a missing
// field as an empty string, never as an error.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	out, _, err := transform.String(stripMarks, text)
	if err != nil {
		// A malformed rune sequence falls back to the raw input; the
		// remaining folding still applies.
		out = text
	}
	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), " ")
}
