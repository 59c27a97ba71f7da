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

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Summary aggregates one run. The migration counters stay zero in the
// extraction report and are filled in during the upload phase.
type Summary struct {
	TotalProducts        int `json:"total_products"`
	TotalImages          int `json:"total_images"`
	TotalStock           int `json:"total_stock"`
	SuccessfulMigrations int `json:"successful_migrations,omitempty"`
	FailedMigrations     int `json:"failed_migrations,omitempty"`
}

// 📋 Report is the JSON artifact of one extraction run, the run's only
// durable output.
type Report struct {
	Timestamp string                   `json:"timestamp"`
	Products  map[string]ProductRecord `json:"products"`
	Summary   Summary                  `json:"summary"`
}

// 🏭 NewReport builds a report over the extracted product map, computing
// the summary aggregates.
func NewReport(products map[string]ProductRecord) *Report {
	r := &Report{
		Timestamp: time.Now().Format(time.RFC3339),
		Products:  products,
	}
	r.Summary.TotalProducts = len(products)
	for _, p := range products {
		r.Summary.TotalImages += p.ImageCount
		r.Summary.TotalStock += p.StockQuantity
	}
	return r
}

// 📈 RecordMigration fills in the upload-phase counters on the in-memory
// report. The extraction artifact on disk is not rewritten.
func (r *Report) RecordMigration(successful, failed int) {
	r.Summary.SuccessfulMigrations = successful
	r.Summary.FailedMigrations = failed
}

// 💾 Write persists the report as a timestamped JSON file under dir and
// returns the file path.
func (r *Report) Write(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(dir, "extraction_report_"+time.Now().Format("20060102_150405")+".json")

	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return "", errors.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Errorf("writing report: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("path", path).Msg("extraction report written")
	return path, nil
}
