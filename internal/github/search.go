// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"fmt"
	"strings"
)

// buildAuthorSearchQuery constructs a GitHub search query for the open pull
// requests authored by a user, optionally scoped to one organization.
func buildAuthorSearchQuery(author, org string) string {
	parts := []string{
		"is:pr",
		"is:open",
		"archived:false",
		fmt.Sprintf("author:%s", author),
	}

	if org != "" {
		parts = append(parts, fmt.Sprintf("org:%s", org))
	}

	return strings.Join(parts, " ")
}
