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

package catalog

import "fmt"

// 🔌 ConnectionError reports a catalog database that could not be reached
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("catalog connection: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// 📛 QueryError reports a genuine query failure. A missing row is not a
// QueryError; lookups signal absence through their return values.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("catalog query: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
