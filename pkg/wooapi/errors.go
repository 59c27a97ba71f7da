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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// 🚫 ErrMissingFile marks an upload whose local file does not exist
var ErrMissingFile = errors.Base("image file does not exist")

// 📛 APIError reports a non-success response from a destination endpoint,
// carrying the last observed status and body once retries are exhausted.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("destination api %s: status %d: %s", e.Endpoint, e.Status, e.Body)
}

// 📛 UploadError reports a network-level failure while pushing an image or
// associating it with its product.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("uploading image %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
