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

package wooapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📤 UploadImage pushes a local image to the destination media library and
// associates it with the product's ordered image list: a main image is
// prepended, a secondary image appended, previously associated images are
// preserved. Uploads are idempotent by name: when the media library already
// holds the image, the call succeeds without re-uploading.
//
// There is no rollback: if the association step fails after a successful
// raw upload, the uploaded media object stays orphaned on the destination.
func (c *Client) UploadImage(ctx context.Context, localPath string, productID int, isMain bool) error {
	logger := zerolog.Ctx(ctx)

	if _, err := os.Stat(localPath); err != nil {
		return errors.Errorf("%w: %s", ErrMissingFile, localPath)
	}

	imageName := filepath.Base(localPath)

	exists, err := c.MediaExists(ctx, imageName)
	if err != nil {
		return err
	}
	if exists {
		logger.Info().Str("image", imageName).Msg("image already uploaded, skipping")
		return nil
	}

	mediaID, err := c.uploadMedia(ctx, localPath, imageName, productID)
	if err != nil {
		return err
	}
	logger.Info().Str("image", imageName).Int("media_id", mediaID).Msg("image uploaded")

	endpoint := fmt.Sprintf("/products/%d", productID)
	var product Product
	if err := c.get(ctx, endpoint, nil, &product); err != nil {
		return &UploadError{Path: localPath, Err: err}
	}

	var images []ProductImage
	if isMain {
		images = append([]ProductImage{{ID: mediaID}}, product.Images...)
	} else {
		images = append(product.Images, ProductImage{ID: mediaID})
	}

	if err := c.put(ctx, endpoint, map[string]any{"images": images}); err != nil {
		return &UploadError{Path: localPath, Err: err}
	}

	logger.Info().
		Str("image", imageName).
		Int("product_id", productID).
		Bool("main", isMain).
		Msg("image associated with product")
	return nil
}

// uploadMedia performs the multipart POST carrying the image bytes plus
// title, alt text and associated-post metadata, and returns the new media id.
func (c *Client) uploadMedia(ctx context.Context, localPath, imageName string, productID int) (int, error) {
	payload, contentType, err := buildMediaForm(localPath, imageName, productID)
	if err != nil {
		return 0, &UploadError{Path: localPath, Err: err}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/media", payload)
	if err != nil {
		return 0, &UploadError{Path: localPath, Err: err}
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.uploads.Do(req)
	if err != nil {
		return 0, &UploadError{Path: localPath, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &UploadError{Path: localPath, Err: err}
	}

	if resp.StatusCode != http.StatusCreated {
		return 0, &APIError{Endpoint: "/media", Status: resp.StatusCode, Body: string(body)}
	}

	var media struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(body, &media); err != nil {
		return 0, errors.Errorf("decoding /media response: %w", err)
	}
	return media.ID, nil
}

// buildMediaForm assembles the multipart body. The bytes are buffered so
// the retrying transport can replay the request.
func buildMediaForm(localPath, imageName string, productID int) ([]byte, string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", imageName)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}

	altText := strings.TrimSuffix(imageName, filepath.Ext(imageName))
	fields := map[string]string{
		"title":    imageName,
		"alt_text": altText,
		"post":     fmt.Sprint(productID),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
