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

// Package catalog issues read-only lookups against the legacy platform's
// relational catalog: localized product names and base-variant stock.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/walteh/shopmigrate/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Reader resolves product names and stock from the catalog database.
// The connection is established lazily on first use and pooled afterwards.
type Reader struct {
	cfg config.CatalogConfig
	db  *sql.DB
}

// 🏭 New creates a reader. No connection is made until the first lookup.
func New(cfg config.CatalogConfig) *Reader {
	return &Reader{cfg: cfg}
}

// newWithDB wires an existing handle in, for tests.
func newWithDB(cfg config.CatalogConfig, db *sql.DB) *Reader {
	return &Reader{cfg: cfg, db: db}
}

func (r *Reader) dsn() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4",
		r.cfg.User, r.cfg.Password, r.cfg.Host, r.cfg.Port, r.cfg.Database)
}

// connect opens and verifies the pooled connection on first use. Subsequent
// calls reuse the live pool.
func (r *Reader) connect(ctx context.Context) error {
	if r.db != nil {
		return nil
	}

	db, err := sql.Open("mysql", r.dsn())
	if err != nil {
		return &ConnectionError{Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return &ConnectionError{Err: err}
	}

	r.db = db
	zerolog.Ctx(ctx).Info().
		Str("host", r.cfg.Host).
		Str("database", r.cfg.Database).
		Msg("catalog connection established")
	return nil
}

// 🔍 ProductName looks up the localized display name for a product id and
// returns it sanitized for filesystem use. The second return is false when
// no row matches; that is not an error. Only genuine query or connection
// failures return a non-nil error.
func (r *Reader) ProductName(ctx context.Context, productID string) (string, bool, error) {
	if err := r.connect(ctx); err != nil {
		return "", false, err
	}

	query := fmt.Sprintf(
		"SELECT pl.name FROM %sproduct_lang pl WHERE pl.id_product = ? AND pl.id_lang = ? LIMIT 1",
		r.cfg.TablePrefix)

	var name string
	err := r.readRow(ctx, query, []any{productID, r.cfg.LanguageID}, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &QueryError{Err: err}
	}

	return SanitizeName(name), true, nil
}

// 📦 ProductStock looks up the available quantity of the product's base
// variant. A missing row yields 0 with no error.
func (r *Reader) ProductStock(ctx context.Context, productID string) (int, error) {
	if err := r.connect(ctx); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(
		"SELECT sa.quantity FROM %sstock_available sa WHERE sa.id_product = ? AND sa.id_product_attribute = ? LIMIT 1",
		r.cfg.TablePrefix)

	var quantity int
	err := r.readRow(ctx, query, []any{productID, r.cfg.AttributeID}, &quantity)
	if errors.Is(err, sql.ErrNoRows) {
		zerolog.Ctx(ctx).Warn().Str("product_id", productID).Msg("no stock row for product")
		return 0, nil
	}
	if err != nil {
		return 0, &QueryError{Err: err}
	}

	return quantity, nil
}

// readRow runs a single-row lookup inside an explicit read transaction so
// read consistency stays caller-controlled and every exit path releases the
// statement resources.
func (r *Reader) readRow(ctx context.Context, query string, args []any, dst any) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst); err != nil {
		return err
	}

	return tx.Commit()
}

// 🔒 Close releases the pooled connection. Safe to call on a reader that
// never connected.
func (r *Reader) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}
