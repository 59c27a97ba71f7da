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

package ftpstore

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// 🖼️ ImageSet is the classified contents of one product image directory.
// Main is the file named exactly `<id>.jpg` (empty when absent). Additional
// holds the `<id>-<n>.jpg` files ordered by ascending n.
type ImageSet struct {
	Main       string
	Additional []string
}

// All returns the ordered upload list: main first when present, then the
// additional images.
func (s ImageSet) All() []string {
	if s.Main == "" {
		return s.Additional
	}
	return append([]string{s.Main}, s.Additional...)
}

// Empty reports whether the directory held no usable images at all.
func (s ImageSet) Empty() bool {
	return s.Main == "" && len(s.Additional) == 0
}

// 🔍 Classify splits a directory listing into main and additional images
// for the given product id. Files that match neither convention, including
// other products' images and non-jpg entries, are ignored. The additional
// list is sorted by its numeric suffix, so `5-10.jpg` lands after `5-2.jpg`.
func Classify(productID string, names []string) ImageSet {
	additionalRe := regexp.MustCompile(`^` + regexp.QuoteMeta(productID) + `-([1-9][0-9]*)\.jpg$`)
	mainName := productID + ".jpg"

	var set ImageSet
	suffixes := map[string]int{}
	for _, name := range names {
		if !strings.HasSuffix(name, ".jpg") {
			continue
		}
		if name == mainName {
			set.Main = name
			continue
		}
		if m := additionalRe.FindStringSubmatch(name); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			suffixes[name] = n
			set.Additional = append(set.Additional, name)
		}
	}

	sort.Slice(set.Additional, func(i, j int) bool {
		return suffixes[set.Additional[i]] < suffixes[set.Additional[j]]
	})

	return set
}

// isProductID reports whether the directory name is a bare decimal product id.
func isProductID(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
