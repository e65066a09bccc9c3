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

import "github.com/Djamyahia/pharmarecon/model"

// ResolveExact attempts a composite-field exact match for a row against the
// catalog index. Every comparable field is normalized before lookup. A hit
// short-circuits the row to matched with implicit score 1.0: exact matches
// are never second-guessed by fuzzy scores.
func ResolveExact(row model.ImportRow, ix *CatalogIndex) (string, bool) {
	return ix.LookupExact(
		Normalize(row.Name),
		Normalize(row.Form),
		Normalize(row.Dosage),
		Normalize(row.Packaging),
		Normalize(row.Manufacturer),
	)
}
