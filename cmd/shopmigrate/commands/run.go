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
	"github.com/spf13/cobra"
	"github.com/walteh/shopmigrate/cmd/shopmigrate/opts"
	"gitlab.com/tozd/go/errors"
)

// NewRunCmd creates the run command, the full two-phase pipeline
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract and migrate in one go",
		Long: `Run executes the full pipeline: stage everything from the legacy shop,
write the extraction report, ask for confirmation and upload the staged
images to the destination store. The staging directory is removed when
the pipeline finishes, successful or not.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// staging goes away even when extraction dies partway
			defer o.Staging.Remove(ctx)

			result, report, err := runExtraction(ctx, o)
			if err != nil {
				return err
			}
			if !result.Success() {
				return errors.New("nothing was extracted, aborting migration")
			}

			_, err = runMigration(ctx, o, report)
			return err
		},
	}

	return cmd
}
