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

// Package console renders the human-readable phase output: per-product
// lines and end-of-phase summaries. Full detail lives in the log file, not
// here.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	nameWidth  = 35 // base width for product names
	countWidth = 10 // width for the image count column
)

// 🎯 Reporter writes colorized phase output to one writer
type Reporter struct {
	out io.Writer
	mu  sync.Mutex
}

// 🏭 New creates a reporter
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// 📦 Product prints one product line: a status symbol, the padded name and
// its image count.
func (r *Reporter) Product(name string, images int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	symbol := '✓'
	symbolColor := color.FgGreen
	if !ok {
		symbol = '✗'
		symbolColor = color.FgRed
	}

	coloredSymbol := color.New(symbolColor).Sprint(string(symbol))
	countLabel := fmt.Sprintf("%d image(s)", images)
	fmt.Fprintf(r.out, "  %s %-*s %*s\n", coloredSymbol, nameWidth, name, countWidth, countLabel)
}

// 📝 Section prints a phase heading
func (r *Reporter) Section(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "\n=== %s ===\n", color.New(color.Bold).Sprint(title))
}

// 📊 Summary prints label/value pairs aligned under the current section
func (r *Reporter) Summary(pairs ...[2]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pair := range pairs {
		fmt.Fprintf(r.out, "  %-*s %s\n", nameWidth, pair[0]+":", color.New(color.FgCyan).Sprint(pair[1]))
	}
}
