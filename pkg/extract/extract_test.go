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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/shopmigrate/pkg/catalog"
	"github.com/walteh/shopmigrate/pkg/ftpstore"
	"github.com/walteh/shopmigrate/pkg/staging"
	"gitlab.com/tozd/go/errors"
)

// 🧪 fakeStore is an in-memory file store
type fakeStore struct {
	dirs        []string
	images      map[string]ftpstore.ImageSet
	listErr     map[string]error
	downloadErr map[string]bool
	connectErr  error
	sessions    int
}

func (s *fakeStore) WithSession(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.connectErr != nil {
		return s.connectErr
	}
	s.sessions++
	return fn(ctx)
}

func (s *fakeStore) ListProductDirectories(ctx context.Context) ([]string, error) {
	return s.dirs, nil
}

func (s *fakeStore) ListProductImages(ctx context.Context, id string) (ftpstore.ImageSet, error) {
	if err := s.listErr[id]; err != nil {
		return ftpstore.ImageSet{}, err
	}
	return s.images[id], nil
}

func (s *fakeStore) ProductDirPath(id string) string { return "/img/p/" + id + "/" }

func (s *fakeStore) DownloadImage(ctx context.Context, remotePath, localPath string) error {
	if s.downloadErr[remotePath] {
		return &ftpstore.OpError{Op: "download", Path: remotePath, Err: errors.New("connection reset")}
	}
	return os.WriteFile(localPath, []byte("jpegbytes"), 0o644)
}

// 🧪 fakeCatalog is an in-memory catalog
type fakeCatalog struct {
	names     map[string]string
	stocks    map[string]int
	nameErr   map[string]error
	nameCalls int
}

func (c *fakeCatalog) ProductName(ctx context.Context, id string) (string, bool, error) {
	c.nameCalls++
	if err := c.nameErr[id]; err != nil {
		return "", false, err
	}
	name, ok := c.names[id]
	return name, ok, nil
}

func (c *fakeCatalog) ProductStock(ctx context.Context, id string) (int, error) {
	return c.stocks[id], nil
}

func newTestExtractor(t *testing.T, store *fakeStore, cat *fakeCatalog) (*Extractor, *staging.Tree, context.Context) {
	tree := staging.New(filepath.Join(t.TempDir(), "staging"))

	e, err := New(Options{Store: store, Catalog: cat, Staging: tree})
	require.NoError(t, err)

	logger := zerolog.Nop()
	return e, tree, logger.WithContext(context.Background())
}

// 🧪 TestRunStagesProducts walks all directories and stages main-first
func TestRunStagesProducts(t *testing.T) {
	store := &fakeStore{
		dirs: []string{"5", "6", "7"},
		images: map[string]ftpstore.ImageSet{
			"5": {Main: "5.jpg", Additional: []string{"5-1.jpg"}},
			"7": {Additional: []string{"7-2.jpg"}},
		},
	}
	cat := &fakeCatalog{
		names:  map[string]string{"5": "Blue Mug", "7": "Shirt"},
		stocks: map[string]int{"5": 12, "7": 3},
	}
	e, tree, ctx := newTestExtractor(t, store, cat)

	result, err := e.Run(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, 2, result.Processed)

	mug := result.Products["Blue Mug"]
	assert.Equal(t, "5", mug.SourceID)
	assert.Equal(t, 2, mug.ImageCount)
	assert.Equal(t, 12, mug.StockQuantity)

	// deterministic 1-based staging names, main image first
	staged, err := tree.ProductImages("Blue Mug")
	require.NoError(t, err)
	require.Len(t, staged, 2)
	assert.Equal(t, "Blue Mug-1.jpg", filepath.Base(staged[0]))
	assert.Equal(t, "Blue Mug-2.jpg", filepath.Base(staged[1]))

	// product 6 has no catalog row and no record
	_, exists := result.Products["6"]
	assert.False(t, exists)
	assert.Equal(t, 1, store.sessions)
}

// 🧪 TestRunProductFailureIsolated keeps the walk alive when one product
// blows up during listing
func TestRunProductFailureIsolated(t *testing.T) {
	store := &fakeStore{
		dirs: []string{"1", "2", "3"},
		images: map[string]ftpstore.ImageSet{
			"1": {Main: "1.jpg"},
			"3": {Main: "3.jpg"},
		},
		listErr: map[string]error{
			"2": &ftpstore.OpError{Op: "list", Path: "/img/p/2/", Err: errors.New("550 denied")},
		},
	}
	cat := &fakeCatalog{names: map[string]string{"1": "One", "2": "Two", "3": "Three"}}
	e, _, ctx := newTestExtractor(t, store, cat)

	result, err := e.Run(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Len(t, result.Products, 2)
	assert.Contains(t, result.Products, "One")
	assert.Contains(t, result.Products, "Three")
}

// 🧪 TestRunPartialDownloads counts only staged images and still records
// the product
func TestRunPartialDownloads(t *testing.T) {
	store := &fakeStore{
		dirs: []string{"5"},
		images: map[string]ftpstore.ImageSet{
			"5": {Main: "5.jpg", Additional: []string{"5-1.jpg", "5-2.jpg"}},
		},
		downloadErr: map[string]bool{"/img/p/5/5-1.jpg": true},
	}
	cat := &fakeCatalog{names: map[string]string{"5": "Mug"}}
	e, _, ctx := newTestExtractor(t, store, cat)

	result, err := e.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Products["Mug"].ImageCount)
}

// 🧪 TestRunAllDownloadsFail records nothing for the product
func TestRunAllDownloadsFail(t *testing.T) {
	store := &fakeStore{
		dirs:        []string{"5"},
		images:      map[string]ftpstore.ImageSet{"5": {Main: "5.jpg"}},
		downloadErr: map[string]bool{"/img/p/5/5.jpg": true},
	}
	cat := &fakeCatalog{names: map[string]string{"5": "Mug"}}
	e, _, ctx := newTestExtractor(t, store, cat)

	result, err := e.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.Products)
	assert.False(t, result.Success())
}

// 🧪 TestRunNameCollision overwrites the prior record, last writer wins
func TestRunNameCollision(t *testing.T) {
	store := &fakeStore{
		dirs: []string{"5", "8"},
		images: map[string]ftpstore.ImageSet{
			"5": {Main: "5.jpg"},
			"8": {Main: "8.jpg"},
		},
	}
	cat := &fakeCatalog{names: map[string]string{"5": "Mug", "8": "Mug"}}
	e, _, ctx := newTestExtractor(t, store, cat)

	result, err := e.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "8", result.Products["Mug"].SourceID)
}

// 🧪 TestRunCatalogErrorSkipsProduct treats a query failure as skip
func TestRunCatalogErrorSkipsProduct(t *testing.T) {
	store := &fakeStore{
		dirs:   []string{"5", "6"},
		images: map[string]ftpstore.ImageSet{"6": {Main: "6.jpg"}},
	}
	cat := &fakeCatalog{
		names:   map[string]string{"6": "Shirt"},
		nameErr: map[string]error{"5": errors.New("table crashed")},
	}
	e, _, ctx := newTestExtractor(t, store, cat)

	result, err := e.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, result.Products, 1)
	assert.Contains(t, result.Products, "Shirt")
}

// 🧪 TestRunCatalogConnectionFailureIsFatal aborts on the first product
// instead of re-dialing the dead catalog for every remaining directory
func TestRunCatalogConnectionFailureIsFatal(t *testing.T) {
	refused := &catalog.ConnectionError{Err: errors.New("dial tcp: connection refused")}
	store := &fakeStore{dirs: []string{"5", "6", "7"}}
	cat := &fakeCatalog{
		nameErr: map[string]error{"5": refused, "6": refused, "7": refused},
	}
	e, _, ctx := newTestExtractor(t, store, cat)

	_, err := e.Run(ctx)
	var connErr *catalog.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 1, cat.nameCalls)
}

// 🧪 TestRunConnectionFailureIsFatal aborts the whole run
func TestRunConnectionFailureIsFatal(t *testing.T) {
	store := &fakeStore{connectErr: &ftpstore.ConnectionError{Host: "ftp.example.com", Err: errors.New("530")}}
	e, _, ctx := newTestExtractor(t, store, &fakeCatalog{})

	_, err := e.Run(ctx)
	var connErr *ftpstore.ConnectionError
	require.ErrorAs(t, err, &connErr)
}

// 🧪 TestReport aggregates the product map and writes the JSON artifact
func TestReport(t *testing.T) {
	products := map[string]ProductRecord{
		"Mug":   {SourceID: "5", ImageCount: 2, StockQuantity: 12, StagingPath: "/tmp/s/Mug"},
		"Shirt": {SourceID: "7", ImageCount: 1, StockQuantity: 3, StagingPath: "/tmp/s/Shirt"},
	}
	report := NewReport(products)

	assert.Equal(t, 2, report.Summary.TotalProducts)
	assert.Equal(t, 3, report.Summary.TotalImages)
	assert.Equal(t, 15, report.Summary.TotalStock)

	logger := zerolog.Nop()
	ctx := logger.WithContext(context.Background())

	dir := t.TempDir()
	path, err := report.Write(ctx, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.Products, decoded.Products)
	assert.Equal(t, report.Summary, decoded.Summary)
	assert.NotEmpty(t, decoded.Timestamp)
}
