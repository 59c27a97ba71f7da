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

// Package config loads and validates the migration configuration from a
// YAML file plus environment overrides for credentials.
package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 📡 FTPConfig describes the source image file store
type FTPConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	BasePath    string        `yaml:"base_path"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// 🗄️ CatalogConfig describes the source catalog database
type CatalogConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	TablePrefix string `yaml:"table_prefix"`
	// LanguageID selects the localized product name row. The legacy
	// platform uses 1 for the shop's default locale.
	LanguageID int `yaml:"language_id"`
	// AttributeID selects the product variant for stock lookups. 0 is
	// the base variant.
	AttributeID int `yaml:"attribute_id"`
}

// 🌐 APIConfig describes the destination commerce REST API
type APIConfig struct {
	URL             string        `yaml:"url"`
	ConsumerKey     string        `yaml:"consumer_key"`
	ConsumerSecret  string        `yaml:"consumer_secret"`
	Timeout         time.Duration `yaml:"timeout"`
	RetryAttempts   int           `yaml:"retry_attempts"`
	RetryBackoff    float64       `yaml:"retry_backoff_factor"`
	RetryStatuses   []int         `yaml:"retry_statuses"`
	ProductPageSize int           `yaml:"product_page_size"`
	MediaPageSize   int           `yaml:"media_page_size"`
}

// 📁 PathsConfig describes local working directories
type PathsConfig struct {
	LogsDir    string `yaml:"logs_dir"`
	StagingDir string `yaml:"staging_dir"`
}

// 📚 Config is the complete migration configuration
type Config struct {
	FTP     FTPConfig     `yaml:"ftp"`
	Catalog CatalogConfig `yaml:"catalog"`
	API     APIConfig     `yaml:"api"`
	Paths   PathsConfig   `yaml:"paths"`
}

// 🏭 Default returns a config populated with the stock defaults
func Default() *Config {
	return &Config{
		FTP: FTPConfig{
			Port:        21,
			BasePath:    "/img/p/",
			DialTimeout: 30 * time.Second,
		},
		Catalog: CatalogConfig{
			Host:        "localhost",
			Port:        3306,
			Database:    "prestashop",
			TablePrefix: "ps_",
			LanguageID:  1,
			AttributeID: 0,
		},
		API: APIConfig{
			Timeout:         30 * time.Second,
			RetryAttempts:   3,
			RetryBackoff:    0.5,
			RetryStatuses:   []int{500, 502, 503, 504},
			ProductPageSize: 20,
			MediaPageSize:   5,
		},
		Paths: PathsConfig{
			LogsDir:    "logs",
			StagingDir: "temp_images",
		},
	}
}

// 🎯 Load reads the YAML config file, applies environment overrides and
// validates the result. A missing file is not an error: defaults plus
// environment are enough for a fully env-driven run.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		logger.Debug().Str("path", path).Msg("no config file, using defaults and environment")
	case err != nil:
		return nil, errors.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Errorf("parsing config: %w", err)
		}
		logger.Debug().Str("path", path).Msg("loaded configuration")
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyEnv maps the legacy environment variable names onto the config.
// Environment always wins over the file so credentials can stay out of it.
func (c *Config) applyEnv() {
	setString(&c.FTP.Host, "FTP_HOST")
	setString(&c.FTP.User, "FTP_USER")
	setString(&c.FTP.Password, "FTP_PASS")
	setInt(&c.FTP.Port, "FTP_PORT")

	setString(&c.Catalog.Host, "DB_HOST")
	setInt(&c.Catalog.Port, "DB_PORT")
	setString(&c.Catalog.Database, "DB_NAME")
	setString(&c.Catalog.User, "DB_USER")
	setString(&c.Catalog.Password, "DB_PASS")
	setString(&c.Catalog.TablePrefix, "DB_PREFIX")

	setString(&c.API.URL, "WC_API_URL")
	setString(&c.API.ConsumerKey, "WC_CONSUMER_KEY")
	setString(&c.API.ConsumerSecret, "WC_CONSUMER_SECRET")
}

// ✅ Validate checks that every connection-establishment setting is present
func (c *Config) Validate() error {
	if c.FTP.Host == "" {
		return errors.New("ftp host is required")
	}
	if c.FTP.User == "" || c.FTP.Password == "" {
		return errors.New("ftp credentials are required")
	}
	if c.Catalog.Database == "" || c.Catalog.User == "" {
		return errors.New("catalog database and user are required")
	}
	if c.API.URL == "" || c.API.ConsumerKey == "" || c.API.ConsumerSecret == "" {
		return errors.New("destination api url, consumer key and secret are required")
	}
	if c.API.RetryAttempts < 1 {
		return errors.New("retry attempts must be at least 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
