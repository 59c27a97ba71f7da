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

// Package extract walks the source file store, correlates each product
// directory with the catalog, stages images locally and accumulates the
// per-product records for one migration run.
package extract

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/shopmigrate/pkg/catalog"
	"github.com/walteh/shopmigrate/pkg/ftpstore"
	"github.com/walteh/shopmigrate/pkg/staging"
	"gitlab.com/tozd/go/errors"
)

// 📡 FileStore is the slice of the remote file store the extractor drives
type FileStore interface {
	WithSession(ctx context.Context, fn func(ctx context.Context) error) error
	ListProductDirectories(ctx context.Context) ([]string, error)
	ListProductImages(ctx context.Context, productID string) (ftpstore.ImageSet, error)
	ProductDirPath(productID string) string
	DownloadImage(ctx context.Context, remotePath, localPath string) error
}

// 🗄️ Catalog is the slice of the catalog reader the extractor drives
type Catalog interface {
	ProductName(ctx context.Context, productID string) (string, bool, error)
	ProductStock(ctx context.Context, productID string) (int, error)
}

// 🔧 Options contains the extractor's collaborators
type Options struct {
	Store   FileStore
	Catalog Catalog
	Staging *staging.Tree
}

// 🎯 Extractor produces the full product map for one run
type Extractor struct {
	store   FileStore
	catalog Catalog
	staging *staging.Tree
}

// 🏭 New creates an extractor with the given options
func New(opts Options) (*Extractor, error) {
	if opts.Store == nil {
		return nil, errors.New("file store is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if opts.Staging == nil {
		return nil, errors.New("staging tree is required")
	}
	return &Extractor{store: opts.Store, catalog: opts.Catalog, staging: opts.Staging}, nil
}

// 🏃 Run opens a scoped file-store session and walks every candidate
// product directory. A failure on one product is logged and skipped; the
// walk never aborts because a single product failed. Connection-level
// failures are returned and abort the run.
func (e *Extractor) Run(ctx context.Context) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	result := &Result{Products: map[string]ProductRecord{}}

	err := e.store.WithSession(ctx, func(ctx context.Context) error {
		ids, err := e.store.ListProductDirectories(ctx)
		if err != nil {
			return errors.Errorf("listing product directories: %w", err)
		}

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.processProduct(ctx, id, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("processed", result.Processed).
		Int("products", len(result.Products)).
		Msg("extraction finished")
	return result, nil
}

// processProduct stages a single product's images and records the outcome.
// Per-product failures are handled here and the caller moves on; only an
// unreachable catalog comes back as an error, since retrying the connect
// for every remaining directory cannot succeed either.
func (e *Extractor) processProduct(ctx context.Context, id string, result *Result) error {
	logger := zerolog.Ctx(ctx).With().Str("product_id", id).Logger()
	ctx = logger.WithContext(ctx)

	name, found, err := e.catalog.ProductName(ctx, id)
	if err != nil {
		var connErr *catalog.ConnectionError
		if errors.As(err, &connErr) {
			return errors.Errorf("connecting to catalog: %w", err)
		}
		logger.Error().Err(err).Msg("resolving product name, skipping product")
		return nil
	}
	if !found {
		logger.Warn().Msg("product not in catalog, skipping")
		return nil
	}

	set, err := e.store.ListProductImages(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msg("listing product images, skipping product")
		return nil
	}
	if set.Empty() {
		logger.Warn().Str("name", name).Msg("no images found for product")
		return nil
	}

	dir, err := e.staging.ProductDir(name)
	if err != nil {
		logger.Error().Err(err).Msg("creating staging directory, skipping product")
		return nil
	}

	remoteDir := e.store.ProductDirPath(id)
	downloaded := 0
	for idx, image := range set.All() {
		local := e.staging.ImagePath(name, idx+1)
		if err := e.store.DownloadImage(ctx, remoteDir+image, local); err != nil {
			// a single failed download degrades the set, it does not
			// abort the product
			logger.Error().Err(err).Str("image", image).Msg("downloading image")
			continue
		}
		downloaded++
	}
	if downloaded == 0 {
		logger.Warn().Str("name", name).Msg("no images staged for product")
		return nil
	}

	stock, err := e.catalog.ProductStock(ctx, id)
	if err != nil {
		var connErr *catalog.ConnectionError
		if errors.As(err, &connErr) {
			return errors.Errorf("connecting to catalog: %w", err)
		}
		logger.Error().Err(err).Msg("resolving stock, defaulting to 0")
		stock = 0
	}

	if prior, exists := result.Products[name]; exists {
		// two source ids collapsing onto one sanitized name is ambiguous
		// source data; last writer wins, but it must be visible in the log
		logger.Warn().
			Str("name", name).
			Str("prior_id", prior.SourceID).
			Msg("display name collision, overwriting prior record")
	}

	result.Products[name] = ProductRecord{
		SourceID:      id,
		ImageCount:    downloaded,
		StockQuantity: stock,
		StagingPath:   dir,
	}
	result.Processed++

	logger.Info().Str("name", name).Int("images", downloaded).Int("stock", stock).Msg("product extracted")
	return nil
}
