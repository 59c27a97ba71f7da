// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package extract

// 📦 ProductRecord is the per-product extraction result, keyed in the run's
// product map by sanitized display name. A record exists only when at least
// one image was staged.
type ProductRecord struct {
	// SourceID is the legacy platform's numeric product identifier.
	SourceID string `json:"id"`
	// ImageCount is the number of images successfully staged. It can be
	// lower than the number of images found remotely when individual
	// downloads failed.
	ImageCount int `json:"images"`
	// StockQuantity is the source catalog's base-variant stock.
	StockQuantity int `json:"stock"`
	// StagingPath is the local directory holding the staged image files.
	StagingPath string `json:"folder"`
}

// 🧾 Result is the outcome of one extraction run
type Result struct {
	// Products maps sanitized display names to their records.
	Products map[string]ProductRecord
	// Processed counts products that were fully processed, including ones
	// later overwritten by a display-name collision.
	Processed int
}

// Success reports whether at least one product was fully processed.
func (r *Result) Success() bool { return r.Processed > 0 }
