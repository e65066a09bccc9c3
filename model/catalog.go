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

// CatalogEntry is an immutable canonical product record. The catalog is
// read-only from the reconciliation engine's point of view; entries are
// fetched once per session and never mutated.
//
// Identity for exact matching is the normalized composite tuple of
// (Name, Form, Dosage, Packaging, Manufacturer). Packaging and Manufacturer
// are optional and may be empty.
type CatalogEntry struct {
	EntryID      string `json:"entry_id"`
	Name         string `json:"name"`
	Form         string `json:"form"`
	Dosage       string `json:"dosage"`
	Packaging    string `json:"packaging,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
}
