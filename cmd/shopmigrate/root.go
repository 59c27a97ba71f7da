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
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/shopmigrate/cmd/shopmigrate/opts"
	"github.com/walteh/shopmigrate/pkg/catalog"
	"github.com/walteh/shopmigrate/pkg/config"
	"github.com/walteh/shopmigrate/pkg/console"
	"github.com/walteh/shopmigrate/pkg/ftpstore"
	"github.com/walteh/shopmigrate/pkg/staging"
	"github.com/walteh/shopmigrate/pkg/wooapi"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	envFile    string
	stagingDir string
	debug      bool
	assumeYes  bool
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".shopmigrate.yaml", "config file path")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file with credentials")
	cmd.PersistentFlags().StringVar(&stagingDir, "staging", "", "override the staging directory")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to all prompts")
}

// initRootOpts loads configuration, sets up logging and wires the shared
// dependencies into o. The returned context carries the run's logger.
func initRootOpts(ctx context.Context, o *opts.RootOpts) (context.Context, error) {
	// credentials come from the env file first, config and process env after
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return ctx, errors.Errorf("loading env file %q: %w", envFile, err)
	}

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return ctx, errors.Errorf("loading config: %w", err)
	}
	if stagingDir != "" {
		cfg.Paths.StagingDir = stagingDir
	}

	logger, closeLog, err := setupLogging(cfg.Paths.LogsDir)
	if err != nil {
		return ctx, errors.Errorf("setting up logging: %w", err)
	}
	ctx = logger.WithContext(ctx)

	api, err := wooapi.New(cfg.API)
	if err != nil {
		closeLog()
		return ctx, errors.Errorf("creating destination api client: %w", err)
	}

	o.Config = cfg
	o.Store = ftpstore.New(cfg.FTP)
	o.Catalog = catalog.New(cfg.Catalog)
	o.API = api
	o.Staging = staging.New(cfg.Paths.StagingDir)
	o.Console = console.New(os.Stdout)
	o.Confirm = newConfirm(assumeYes)
	o.CloseLog = closeLog

	return ctx, nil
}

// setupLogging writes every event to a timestamped log file and mirrors it
// to stderr in console format.
func setupLogging(logsDir string) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return zerolog.Logger{}, nil, errors.Errorf("creating logs directory: %w", err)
	}

	path := filepath.Join(logsDir, "migration_"+time.Now().Format("20060102_150405")+".log")
	file, err := os.Create(path)
	if err != nil {
		return zerolog.Logger{}, nil, errors.Errorf("creating log file: %w", err)
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	consoleOut := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	logger := zerolog.New(zerolog.MultiLevelWriter(consoleOut, file)).
		Level(level).
		With().Timestamp().Logger()

	return logger, func() { _ = file.Close() }, nil
}

// newConfirm builds the yes/no prompt gating the upload phase. With --yes
// the prompt is skipped entirely.
func newConfirm(yes bool) func(prompt string) bool {
	return func(prompt string) bool {
		if yes {
			return true
		}
		ok, err := pterm.DefaultInteractiveConfirm.WithDefaultText(prompt).Show()
		if err != nil {
			return false
		}
		return ok
	}
}
