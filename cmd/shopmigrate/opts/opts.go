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

package opts

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/shopmigrate/pkg/catalog"
	"github.com/walteh/shopmigrate/pkg/config"
	"github.com/walteh/shopmigrate/pkg/console"
	"github.com/walteh/shopmigrate/pkg/ftpstore"
	"github.com/walteh/shopmigrate/pkg/migrate"
	"github.com/walteh/shopmigrate/pkg/staging"
	"github.com/walteh/shopmigrate/pkg/wooapi"
)

// 🔧 RootOpts contains shared dependencies used by all commands. It is
// populated once the root command's flags have been parsed.
type RootOpts struct {
	Config  *config.Config
	Store   *ftpstore.Client
	Catalog *catalog.Reader
	API     *wooapi.Client
	Staging *staging.Tree
	Console *console.Reporter
	Confirm migrate.ConfirmFunc

	// CloseLog releases the run's log file, nil until logging is set up
	CloseLog func()
}

// 🔒 Close releases everything the commands shared
func (o *RootOpts) Close(ctx context.Context) {
	if o.Catalog != nil {
		if err := o.Catalog.Close(); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("closing catalog reader")
		}
	}
	if o.CloseLog != nil {
		o.CloseLog()
	}
}
