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
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jlaffaye/ftp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/shopmigrate/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// 🧪 fakeSession is an in-memory session for tests
type fakeSession struct {
	entries   map[string][]*ftp.Entry
	files     map[string]string
	listErr   error
	retrErr   error
	quitCalls int
}

func (s *fakeSession) List(path string) ([]*ftp.Entry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.entries[path], nil
}

func (s *fakeSession) Retr(path string) (io.ReadCloser, error) {
	if s.retrErr != nil {
		return nil, s.retrErr
	}
	body, ok := s.files[path]
	if !ok {
		return nil, errors.Errorf("no such file: %s", path)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (s *fakeSession) Quit() error {
	s.quitCalls++
	return nil
}

func newTestClient(sess session) (*Client, context.Context) {
	cfg := config.FTPConfig{Host: "ftp.example.com", Port: 21, BasePath: "/img/p/"}
	c := New(cfg)
	c.dial = func(ctx context.Context) (session, error) { return sess, nil }

	logger := zerolog.Nop()
	return c, logger.WithContext(context.Background())
}

// 🧪 TestProductDirPath checks the digit-split path convention
func TestProductDirPath(t *testing.T) {
	c, _ := newTestClient(&fakeSession{})

	tests := []struct {
		id   string
		path string
	}{
		{"1", "/img/p/1/"},
		{"123", "/img/p/1/2/3/"},
		{"4070", "/img/p/4/0/7/0/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.path, c.ProductDirPath(tt.id), "id %s", tt.id)
	}
}

// 🧪 TestClassify checks the main/additional convention and numeric ordering
func TestClassify(t *testing.T) {
	set := Classify("5", []string{"5.jpg", "5-2.jpg", "5-1.jpg", "6.jpg", "5-10.jpg", "notes.txt", "5-0.jpg"})

	assert.Equal(t, "5.jpg", set.Main)
	assert.Equal(t, []string{"5-1.jpg", "5-2.jpg", "5-10.jpg"}, set.Additional)
	assert.Equal(t, []string{"5.jpg", "5-1.jpg", "5-2.jpg", "5-10.jpg"}, set.All())
}

// 🧪 TestClassifyNoMain keeps order without a main image
func TestClassifyNoMain(t *testing.T) {
	set := Classify("42", []string{"42-3.jpg", "42-1.jpg"})

	assert.Empty(t, set.Main)
	assert.Equal(t, []string{"42-1.jpg", "42-3.jpg"}, set.All())
	assert.False(t, set.Empty())

	assert.True(t, Classify("42", []string{"41.jpg"}).Empty())
}

// 🧪 TestListProductDirectories keeps only all-digit folder names
func TestListProductDirectories(t *testing.T) {
	sess := &fakeSession{entries: map[string][]*ftp.Entry{
		"/img/p/": {
			{Name: "1", Type: ftp.EntryTypeFolder},
			{Name: "23", Type: ftp.EntryTypeFolder},
			{Name: "index.php", Type: ftp.EntryTypeFile},
			{Name: "tmp", Type: ftp.EntryTypeFolder},
			{Name: "9a", Type: ftp.EntryTypeFolder},
		},
	}}
	c, ctx := newTestClient(sess)
	require.NoError(t, c.Connect(ctx))

	ids, err := c.ListProductDirectories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "23"}, ids)
}

// 🧪 TestListProductImages surfaces listing failures as OpError
func TestListProductImages(t *testing.T) {
	sess := &fakeSession{entries: map[string][]*ftp.Entry{
		"/img/p/5/": {
			{Name: "5.jpg", Type: ftp.EntryTypeFile},
			{Name: "5-1.jpg", Type: ftp.EntryTypeFile},
			{Name: "thumbs", Type: ftp.EntryTypeFolder},
		},
	}}
	c, ctx := newTestClient(sess)
	require.NoError(t, c.Connect(ctx))

	set, err := c.ListProductImages(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "5.jpg", set.Main)
	assert.Equal(t, []string{"5-1.jpg"}, set.Additional)

	sess.listErr = errors.New("550 permission denied")
	_, err = c.ListProductImages(ctx, "5")
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "list", opErr.Op)
	assert.Equal(t, "/img/p/5/", opErr.Path)
}

// 🧪 TestDownloadImage writes the remote bytes and wraps failures
func TestDownloadImage(t *testing.T) {
	sess := &fakeSession{files: map[string]string{"/img/p/5/5.jpg": "jpegbytes"}}
	c, ctx := newTestClient(sess)
	require.NoError(t, c.Connect(ctx))

	local := filepath.Join(t.TempDir(), "out.jpg")
	require.NoError(t, c.DownloadImage(ctx, "/img/p/5/5.jpg", local))

	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))

	err = c.DownloadImage(ctx, "/img/p/5/5-9.jpg", local)
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "download", opErr.Op)
	assert.Equal(t, "/img/p/5/5-9.jpg", opErr.Path)
}

// 🧪 TestWithSession always releases the session, even when fn fails
func TestWithSession(t *testing.T) {
	sess := &fakeSession{}
	c, ctx := newTestClient(sess)

	err := c.WithSession(ctx, func(ctx context.Context) error {
		return errors.New("walk blew up")
	})
	require.Error(t, err)
	assert.Equal(t, 1, sess.quitCalls)
	assert.Nil(t, c.sess)

	require.NoError(t, c.WithSession(ctx, func(ctx context.Context) error { return nil }))
	assert.Equal(t, 2, sess.quitCalls)
}

// 🧪 TestConnectIdempotent makes a second Connect a no-op
func TestConnectIdempotent(t *testing.T) {
	dials := 0
	c, ctx := newTestClient(&fakeSession{})
	inner := c.dial
	c.dial = func(ctx context.Context) (session, error) {
		dials++
		return inner(ctx)
	}

	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Connect(ctx))
	assert.Equal(t, 1, dials)
}

// 🧪 TestConnectFailure wraps dial errors as ConnectionError
func TestConnectFailure(t *testing.T) {
	c, ctx := newTestClient(nil)
	c.dial = func(ctx context.Context) (session, error) {
		return nil, errors.New("530 login incorrect")
	}

	err := c.Connect(ctx)
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "ftp.example.com", connErr.Host)
}
