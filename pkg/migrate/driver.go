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

// Package migrate pushes staged product images to the destination API in
// main-then-secondary order, tracking per-product and per-run outcomes.
package migrate

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/shopmigrate/pkg/extract"
	"github.com/walteh/shopmigrate/pkg/staging"
	"github.com/walteh/shopmigrate/pkg/wooapi"
	"gitlab.com/tozd/go/errors"
)

// 🌐 Destination is the slice of the destination API client the driver uses
type Destination interface {
	FindProductByName(ctx context.Context, name string) (*wooapi.Product, error)
	UploadImage(ctx context.Context, localPath string, productID int, isMain bool) error
}

// ✋ ConfirmFunc is the yes/no decision gating the upload phase. The driver
// receives it from its caller so the core stays scriptable without a
// terminal.
type ConfirmFunc func(prompt string) bool

// 📊 Summary tracks one migration run. A product counts as successful when
// at least one of its images uploaded; it counts as failed only when none
// did. Products with nothing staged or no destination match are skipped.
type Summary struct {
	Successful int
	Failed     int
	Skipped    int
}

// 🔧 Options contains the driver's collaborators. Confirm is optional; a
// nil Confirm means the caller already decided to proceed.
type Options struct {
	API     Destination
	Staging *staging.Tree
	Confirm ConfirmFunc
}

// 🎯 Driver uploads staged products to the destination
type Driver struct {
	api     Destination
	staging *staging.Tree
	confirm ConfirmFunc
}

// 🏭 New creates a driver with the given options
func New(opts Options) (*Driver, error) {
	if opts.API == nil {
		return nil, errors.New("destination api is required")
	}
	if opts.Staging == nil {
		return nil, errors.New("staging tree is required")
	}
	return &Driver{api: opts.API, staging: opts.Staging, confirm: opts.Confirm}, nil
}

// 🏃 Run migrates every staged product. Products are visited in name order
// so runs are deterministic; one image's failure never stops the remaining
// images of its product, and one product's failure never stops the run.
func (d *Driver) Run(ctx context.Context, products map[string]extract.ProductRecord) (Summary, error) {
	logger := zerolog.Ctx(ctx)

	if len(products) == 0 {
		logger.Warn().Msg("nothing staged, skipping migration")
		return Summary{}, nil
	}

	if d.confirm != nil {
		prompt := fmt.Sprintf("Migrate %d product(s) to the destination store?", len(products))
		if !d.confirm(prompt) {
			logger.Warn().Msg("migration cancelled by user")
			return Summary{}, nil
		}
	}

	names := make([]string, 0, len(products))
	for name := range products {
		names = append(names, name)
	}
	sort.Strings(names)

	var summary Summary
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		d.migrateProduct(ctx, name, &summary)
	}

	logger.Info().
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("migration finished")
	return summary, nil
}

// migrateProduct uploads one product's staged images, index 1 as main.
func (d *Driver) migrateProduct(ctx context.Context, name string, summary *Summary) {
	logger := zerolog.Ctx(ctx).With().Str("name", name).Logger()
	ctx = logger.WithContext(ctx)

	// the staging tree, not the in-memory count, decides what gets uploaded
	images, err := d.staging.ProductImages(name)
	if err != nil {
		logger.Error().Err(err).Msg("reading staged images")
		summary.Skipped++
		return
	}
	if len(images) == 0 {
		logger.Warn().Msg("no staged images for product")
		summary.Skipped++
		return
	}

	product, err := d.api.FindProductByName(ctx, name)
	if err != nil {
		logger.Error().Err(err).Msg("searching destination product")
		summary.Failed++
		return
	}
	if product == nil {
		logger.Warn().Msg("no destination product match, skipping")
		summary.Skipped++
		return
	}

	uploaded := 0
	for idx, image := range images {
		isMain := idx == 0
		if err := d.api.UploadImage(ctx, image, product.ID, isMain); err != nil {
			logger.Error().Err(err).Str("image", image).Msg("uploading image")
			continue
		}
		uploaded++
		logger.Info().
			Int("uploaded", idx+1).
			Int("total", len(images)).
			Bool("main", isMain).
			Msg("image migrated")
	}

	switch {
	case uploaded == len(images):
		logger.Info().Int("images", uploaded).Msg("product fully migrated")
		summary.Successful++
	case uploaded > 0:
		logger.Warn().Int("uploaded", uploaded).Int("total", len(images)).Msg("product partially migrated")
		summary.Successful++
	default:
		logger.Error().Msg("all image uploads failed for product")
		summary.Failed++
	}
}
