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

// Package staging manages the ephemeral local tree of downloaded product
// images: one directory per sanitized product name, files named
// `<name>-<idx>.jpg` with index 1 as the main image. The tree is written
// during extraction, read back during migration and removed at run end.
package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Tree is the staging tree rooted at one working directory
type Tree struct {
	root string
}

// 🏭 New creates a tree handle. The root directory is created lazily per
// product.
func New(root string) *Tree {
	return &Tree{root: root}
}

// Root returns the tree's root directory.
func (t *Tree) Root() string { return t.root }

// 📁 ProductDir creates (or reuses) the staging directory for a product
// name and returns its path.
func (t *Tree) ProductDir(name string) (string, error) {
	dir := filepath.Join(t.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Errorf("creating staging directory: %w", err)
	}
	return dir, nil
}

// 🖼️ ImagePath returns the deterministic staging path for a product's
// image at a 1-based index.
func (t *Tree) ImagePath(name string, idx int) string {
	return filepath.Join(t.root, name, fmt.Sprintf("%s-%d.jpg", name, idx))
}

// 📂 ProductImages re-reads the product's staging directory and returns the
// full paths of its images ordered by index. The filesystem, not any
// in-memory count, is the source of truth for what is staged.
func (t *Tree) ProductImages(name string) ([]string, error) {
	dir := filepath.Join(t.root, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading staging directory: %w", err)
	}

	indexed := map[string]int{}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// sanitized names can still hold glob metacharacters, so the name is
		// cut as a literal prefix and only the index suffix gets matched
		suffix, found := strings.CutPrefix(entry.Name(), name+"-")
		if !found {
			continue
		}
		if matched, err := doublestar.Match("[0-9]*.jpg", suffix); err != nil || !matched {
			continue
		}
		idx, ok := imageIndex(name, entry.Name())
		if !ok {
			continue
		}
		indexed[entry.Name()] = idx
		files = append(files, entry.Name())
	}

	sort.Slice(files, func(i, j int) bool { return indexed[files[i]] < indexed[files[j]] })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Join(dir, f)
	}
	return paths, nil
}

// 🗑️ Remove deletes the whole staging tree. Failures are logged, never
// returned: cleanup must not block shutdown.
func (t *Tree) Remove(ctx context.Context) {
	if err := os.RemoveAll(t.root); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("root", t.root).Msg("removing staging tree")
		return
	}
	zerolog.Ctx(ctx).Info().Str("root", t.root).Msg("staging tree removed")
}

// imageIndex extracts the numeric index from `<name>-<idx>.jpg`.
func imageIndex(name, file string) (int, bool) {
	suffix := strings.TrimPrefix(file, name+"-")
	suffix = strings.TrimSuffix(suffix, ".jpg")
	idx, err := strconv.Atoi(suffix)
	if err != nil || idx < 1 {
		return 0, false
	}
	return idx, true
}
