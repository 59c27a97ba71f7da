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

import "strings"

// reservedChars are rejected in file and directory names on common platforms.
const reservedChars = `\/*?:"<>|`

// 🧹 SanitizeName strips filesystem-reserved characters from a display name
// so it is safe to use as a staging directory and file name prefix.
// Sanitizing an already sanitized name is a no-op.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedChars, r) {
			return -1
		}
		return r
	}, name)
}
