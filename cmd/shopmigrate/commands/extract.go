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

// Package commands contains the shopmigrate subcommands.
package commands

import (
	"context"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/walteh/shopmigrate/cmd/shopmigrate/opts"
	"github.com/walteh/shopmigrate/pkg/extract"
	"gitlab.com/tozd/go/errors"
)

// NewExtractCmd creates the extract command
func NewExtractCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Stage product images and catalog data locally",
		Long: `Extract walks the legacy FTP image tree, resolves each product against
the catalog database, downloads every image into the staging directory
and writes a JSON extraction report. Nothing touches the destination.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, _, err := runExtraction(cmd.Context(), o)
			if err != nil {
				return err
			}
			if !result.Success() {
				return errors.New("nothing was extracted")
			}
			return nil
		},
	}

	return cmd
}

// runExtraction executes the extraction phase and writes its report. The
// run command reuses it ahead of the migration phase.
func runExtraction(ctx context.Context, o *opts.RootOpts) (*extract.Result, *extract.Report, error) {
	o.Console.Section("Extraction")

	extractor, err := extract.New(extract.Options{
		Store:   o.Store,
		Catalog: o.Catalog,
		Staging: o.Staging,
	})
	if err != nil {
		return nil, nil, errors.Errorf("creating extractor: %w", err)
	}

	result, err := extractor.Run(ctx)
	if err != nil {
		return nil, nil, errors.Errorf("running extraction: %w", err)
	}

	names := make([]string, 0, len(result.Products))
	for name := range result.Products {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o.Console.Product(name, result.Products[name].ImageCount, true)
	}

	report := extract.NewReport(result.Products)
	path, err := report.Write(ctx, o.Config.Paths.LogsDir)
	if err != nil {
		return nil, nil, errors.Errorf("writing extraction report: %w", err)
	}

	o.Console.Summary(
		[2]string{"Products", strconv.Itoa(report.Summary.TotalProducts)},
		[2]string{"Images", strconv.Itoa(report.Summary.TotalImages)},
		[2]string{"Stock", strconv.Itoa(report.Summary.TotalStock)},
		[2]string{"Report", path},
	)

	return result, report, nil
}
