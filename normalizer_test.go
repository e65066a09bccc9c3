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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCaseAndDiacritics(t *testing.T) {
	assert.Equal(t, "doliprane", Normalize("Doliprane"))
	assert.Equal(t, "doliprane", Normalize("DOLIPRANE"))
	assert.Equal(t, "doliprane", Normalize("dôliprâne"))

	// All three spellings of the same product collapse to one form.
	assert.Equal(t, Normalize("Doliprane"), Normalize("DOLIPRANE"))
	assert.Equal(t, Normalize("DOLIPRANE"), Normalize("dôliprâne"))
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "doliprane 1000mg", Normalize("  Doliprane   1000mg "))
	assert.Equal(t, "a b c", Normalize("a\tb\n c"))
}

func TestNormalizeEmptyAndBlank(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "", Normalize("\t\n"))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Doliprane 1000MG", "éfferalgan", "  SPASFON  Lyoc ", ""}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}
