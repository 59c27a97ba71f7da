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

// Package wooapi is a retry-aware client for the destination commerce REST
// API: product search, media search, media upload and product image lists.
package wooapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/walteh/shopmigrate/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// 🛒 Product is the slice of the destination product resource this client
// reads and writes.
type Product struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	StockQuantity int            `json:"stock_quantity"`
	Images        []ProductImage `json:"images"`
}

// 🖼️ ProductImage is one entry of a product's ordered image list
type ProductImage struct {
	ID int `json:"id"`
}

// mediaItem is the slice of a media library entry used for dedupe checks.
type mediaItem struct {
	ID    int `json:"id"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
}

// 🎯 Client talks to the destination API with a shared retry policy. Two
// underlying HTTP clients are kept: uploads carry larger payloads and get a
// doubled timeout.
type Client struct {
	baseURL string
	key     string
	secret  string

	http    *retryablehttp.Client
	uploads *retryablehttp.Client

	productPageSize int
	mediaPageSize   int
}

// 🏭 New creates a client from the API configuration
func New(cfg config.APIConfig) (*Client, error) {
	if cfg.URL == "" || cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, errors.New("destination api url, consumer key and secret are required")
	}

	return &Client{
		baseURL:         strings.TrimRight(cfg.URL, "/"),
		key:             cfg.ConsumerKey,
		secret:          cfg.ConsumerSecret,
		http:            newRetryClient(cfg, cfg.Timeout),
		uploads:         newRetryClient(cfg, 2*cfg.Timeout),
		productPageSize: cfg.ProductPageSize,
		mediaPageSize:   cfg.MediaPageSize,
	}, nil
}

// newRetryClient builds a retryablehttp client implementing the shared
// policy: N attempts, exponential backoff scaled by the configured factor,
// retries on the configured status set and on request timeouts.
func newRetryClient(cfg config.APIConfig, timeout time.Duration) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.Logger = nil
	c.RetryMax = cfg.RetryAttempts - 1
	c.HTTPClient.Timeout = timeout
	c.CheckRetry = retryOn(cfg.RetryStatuses)
	c.Backoff = exponentialBackoff(cfg.RetryBackoff)
	// hand back the last response so callers can report its status and body
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}

func retryOn(statuses []int) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return true, nil
			}
			// non-retryable transport failures surface immediately
			return false, err
		}
		return slices.Contains(statuses, resp.StatusCode), nil
	}
}

// exponentialBackoff mirrors the legacy policy: factor * 2^attempt seconds.
func exponentialBackoff(factor float64) retryablehttp.Backoff {
	return func(min, max time.Duration, attempt int, resp *http.Response) time.Duration {
		return time.Duration(factor * math.Pow(2, float64(attempt)) * float64(time.Second))
	}
}

// 🔍 FindProductByName searches the destination products and returns the
// first case-insensitive exact name match, or nil when no product matches.
// An empty name short-circuits to nil without a network call.
func (c *Client) FindProductByName(ctx context.Context, name string) (*Product, error) {
	if name == "" {
		zerolog.Ctx(ctx).Warn().Msg("empty product name for search")
		return nil, nil
	}

	q := url.Values{}
	q.Set("search", name)
	q.Set("per_page", fmt.Sprint(c.productPageSize))

	var products []Product
	if err := c.get(ctx, "/products", q, &products); err != nil {
		return nil, err
	}

	for _, p := range products {
		if strings.EqualFold(p.Name, name) {
			return &p, nil
		}
	}

	zerolog.Ctx(ctx).Warn().Str("name", name).Msg("product not found on destination")
	return nil, nil
}

// 🔍 MediaExists reports whether the media library already holds an item
// whose title matches the image name. An empty name short-circuits to false.
func (c *Client) MediaExists(ctx context.Context, imageName string) (bool, error) {
	if imageName == "" {
		zerolog.Ctx(ctx).Warn().Msg("empty image name for media search")
		return false, nil
	}

	q := url.Values{}
	q.Set("search", imageName)
	q.Set("per_page", fmt.Sprint(c.mediaPageSize))

	var media []mediaItem
	if err := c.get(ctx, "/media", q, &media); err != nil {
		return false, err
	}

	for _, item := range media {
		if strings.EqualFold(item.Title.Rendered, imageName) {
			zerolog.Ctx(ctx).Info().Str("image", imageName).Msg("image already in media library")
			return true, nil
		}
	}
	return false, nil
}

// 📦 ProductStock fetches the product resource and returns its stock field,
// defaulting to 0 when absent.
func (c *Client) ProductStock(ctx context.Context, productID int) (int, error) {
	var p Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), nil, &p); err != nil {
		return 0, err
	}
	return p.StockQuantity, nil
}

// get issues a GET through the retrying client and decodes the JSON body.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values, v any) error {
	u := c.baseURL + endpoint
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Errorf("reading %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

// put issues a JSON PUT through the retrying client.
func (c *Client) put(ctx context.Context, endpoint string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Errorf("encoding %s payload: %w", endpoint, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+endpoint, data)
	if err != nil {
		return errors.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}
