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

// Package ftpstore wraps the legacy platform's FTP image tree: digit-split
// product directories under a base path, one jpg set per product.
package ftpstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jlaffaye/ftp"
	"github.com/rs/zerolog"
	"github.com/walteh/shopmigrate/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// session is the slice of the FTP connection the client needs. *ftp.ServerConn
// is adapted behind it so tests can fake listings and downloads.
type session interface {
	List(path string) ([]*ftp.Entry, error)
	Retr(path string) (io.ReadCloser, error)
	Quit() error
}

// ftpSession adapts *ftp.ServerConn to the session interface, narrowing
// Retr's return type to io.ReadCloser.
type ftpSession struct {
	conn *ftp.ServerConn
}

func (s *ftpSession) List(path string) ([]*ftp.Entry, error) { return s.conn.List(path) }
func (s *ftpSession) Retr(path string) (io.ReadCloser, error) { return s.conn.Retr(path) }
func (s *ftpSession) Quit() error                             { return s.conn.Quit() }

// 🎯 Client is a stateful file-store session over the product image tree
type Client struct {
	cfg  config.FTPConfig
	dial func(ctx context.Context) (session, error)
	sess session
}

// 🏭 New creates a client for the configured file store. No connection is
// made until Connect or WithSession.
func New(cfg config.FTPConfig) *Client {
	c := &Client{cfg: cfg}
	c.dial = func(ctx context.Context) (session, error) {
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		conn, err := ftp.Dial(addr,
			ftp.DialWithContext(ctx),
			ftp.DialWithTimeout(cfg.DialTimeout),
		)
		if err != nil {
			return nil, err
		}
		if err := conn.Login(cfg.User, cfg.Password); err != nil {
			// the session is half-open after a failed login
			_ = conn.Quit()
			return nil, err
		}
		return &ftpSession{conn: conn}, nil
	}
	return c
}

// 🔌 Connect establishes the authenticated session. Calling it again on an
// already connected client is a no-op success.
func (c *Client) Connect(ctx context.Context) error {
	if c.sess != nil {
		return nil
	}

	sess, err := c.dial(ctx)
	if err != nil {
		return &ConnectionError{Host: c.cfg.Host, Err: err}
	}

	c.sess = sess
	zerolog.Ctx(ctx).Info().Str("host", c.cfg.Host).Msg("ftp session established")
	return nil
}

// 🔌 Disconnect closes the session best-effort. Failures are logged, never
// returned, so cleanup paths can always call it.
func (c *Client) Disconnect(ctx context.Context) {
	if c.sess == nil {
		return
	}
	if err := c.sess.Quit(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("closing ftp session")
	} else {
		zerolog.Ctx(ctx).Info().Msg("ftp session closed")
	}
	c.sess = nil
}

// 🔒 WithSession runs fn inside a connected session and guarantees the
// session is released afterwards, whether fn succeeds or not.
func (c *Client) WithSession(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Disconnect(ctx)
	return fn(ctx)
}

// 🗂️ ProductDirPath computes the remote directory for a product id by
// splitting its decimal digits one per path level: id 123 under /img/p/
// becomes /img/p/1/2/3/.
func (c *Client) ProductDirPath(productID string) string {
	var b strings.Builder
	b.WriteString(c.cfg.BasePath)
	for _, digit := range productID {
		b.WriteRune(digit)
		b.WriteByte('/')
	}
	return b.String()
}

// 📂 ListProductImages lists the product's directory and classifies its
// contents into main and additional images.
func (c *Client) ListProductImages(ctx context.Context, productID string) (ImageSet, error) {
	path := c.ProductDirPath(productID)

	entries, err := c.list(path)
	if err != nil {
		return ImageSet{}, &OpError{Op: "list", Path: path, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type == ftp.EntryTypeFile {
			names = append(names, entry.Name)
		}
	}

	set := Classify(productID, names)
	zerolog.Ctx(ctx).Debug().
		Str("product_id", productID).
		Str("main", set.Main).
		Int("additional", len(set.Additional)).
		Msg("classified product images")
	return set, nil
}

// 📥 DownloadImage streams a remote file into localPath, overwriting any
// existing file. On failure the local file may be left partially written.
func (c *Client) DownloadImage(ctx context.Context, remotePath, localPath string) error {
	if c.sess == nil {
		return &OpError{Op: "download", Path: remotePath, Err: errors.New("not connected")}
	}

	r, err := c.sess.Retr(remotePath)
	if err != nil {
		return &OpError{Op: "download", Path: remotePath, Err: err}
	}
	defer r.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return &OpError{Op: "download", Path: remotePath, Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return &OpError{Op: "download", Path: remotePath, Err: err}
	}

	zerolog.Ctx(ctx).Debug().Str("remote", remotePath).Str("local", localPath).Msg("image downloaded")
	return nil
}

// 📋 ListProductDirectories lists the immediate children of the base path
// and keeps only all-digit names, the candidate product ids. Everything
// else is silently skipped.
func (c *Client) ListProductDirectories(ctx context.Context) ([]string, error) {
	entries, err := c.list(c.cfg.BasePath)
	if err != nil {
		return nil, &OpError{Op: "list", Path: c.cfg.BasePath, Err: err}
	}

	var ids []string
	for _, entry := range entries {
		if entry.Type != ftp.EntryTypeFolder {
			continue
		}
		if isProductID(entry.Name) {
			ids = append(ids, entry.Name)
		}
	}

	zerolog.Ctx(ctx).Info().Int("count", len(ids)).Msg("listed product directories")
	return ids, nil
}

func (c *Client) list(path string) ([]*ftp.Entry, error) {
	if c.sess == nil {
		return nil, errors.New("not connected")
	}
	return c.sess.List(path)
}
