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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/walteh/shopmigrate/cmd/shopmigrate/commands"
	"github.com/walteh/shopmigrate/cmd/shopmigrate/opts"
	"gitlab.com/tozd/go/errors"
)

func main() {
	// SIGINT cancels the context so in-flight work unwinds and cleanup
	// still runs
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "shopmigrate",
		Short: "Migrate product images from a legacy shop into its replacement store",
		Long: `shopmigrate stages product images from the legacy platform's FTP tree,
correlates them with the catalog database, and pushes them into the new
store through its REST API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := initRootOpts(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewExtractCmd(rootOpts),
		commands.NewMigrateCmd(rootOpts),
		commands.NewRunCmd(rootOpts),
	)

	err := rootCmd.ExecuteContext(ctx)
	rootOpts.Close(ctx)
	if err != nil {
		// a user interrupt already unwound through the cleanup defers; it
		// is not an error outcome
		if interrupted(err) {
			fmt.Fprintln(os.Stderr, "Interrupted, cleaned up and exiting.")
			return
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// interrupted reports whether err is the context cancellation a signal
// leaves behind, possibly wrapped on its way up.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
