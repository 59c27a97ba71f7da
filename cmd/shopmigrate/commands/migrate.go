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

package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/shopmigrate/cmd/shopmigrate/opts"
	"github.com/walteh/shopmigrate/pkg/extract"
	"github.com/walteh/shopmigrate/pkg/migrate"
	"gitlab.com/tozd/go/errors"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd(o *opts.RootOpts) *cobra.Command {
	var reportFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upload previously staged images to the destination store",
		Long: `Migrate reads an extraction report, matches each staged product against
the destination catalog by name and uploads its images, first image as
the main one. Without --report the latest report in the logs directory
is used. The staging directory is removed once the upload phase ran.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if reportFile == "" {
				latest, err := latestReport(o.Config.Paths.LogsDir)
				if err != nil {
					return err
				}
				reportFile = latest
			}

			report, err := loadReport(reportFile)
			if err != nil {
				return err
			}

			_, err = runMigration(ctx, o, report)
			return err
		},
	}

	cmd.Flags().StringVar(&reportFile, "report", "", "extraction report to migrate from")

	return cmd
}

// runMigration executes the upload phase and removes the staging tree
// afterwards whatever the outcome was. The report's migration counters are
// filled in on the way out.
func runMigration(ctx context.Context, o *opts.RootOpts, report *extract.Report) (migrate.Summary, error) {
	defer o.Staging.Remove(ctx)

	o.Console.Section("Migration")

	driver, err := migrate.New(migrate.Options{API: o.API, Staging: o.Staging, Confirm: o.Confirm})
	if err != nil {
		return migrate.Summary{}, errors.Errorf("creating migration driver: %w", err)
	}

	summary, err := driver.Run(ctx, report.Products)
	if err != nil {
		return summary, errors.Errorf("running migration: %w", err)
	}
	report.RecordMigration(summary.Successful, summary.Failed)

	o.Console.Summary(
		[2]string{"Successful", strconv.Itoa(summary.Successful)},
		[2]string{"Failed", strconv.Itoa(summary.Failed)},
		[2]string{"Skipped", strconv.Itoa(summary.Skipped)},
	)

	return summary, nil
}

// loadReport reads one extraction report from disk
func loadReport(path string) (*extract.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading extraction report: %w", err)
	}

	var report extract.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Errorf("parsing extraction report %q: %w", path, err)
	}
	return &report, nil
}

// latestReport finds the newest extraction report in the logs directory
func latestReport(logsDir string) (string, error) {
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		return "", errors.Errorf("reading logs directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, "extraction_report_") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", errors.Errorf("no extraction report found in %q, run extract first", logsDir)
	}

	// report names embed a sortable timestamp
	sort.Strings(names)
	return filepath.Join(logsDir, names[len(names)-1]), nil
}
