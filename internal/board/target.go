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

package board

import (
	"strings"

	relaierrors "github.com/sirseerhq/sirseer-board/internal/errors"
)

// Target is a repository addressed as owner/name.
type Target struct {
	Owner string
	Name  string
}

// ParseTarget parses an "owner/name" repository identifier. Surrounding
// whitespace is ignored; anything that does not split into exactly two
// non-empty segments is rejected with an *errors.InvalidTargetError.
func ParseTarget(s string) (Target, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return Target{}, &relaierrors.InvalidTargetError{Target: s}
	}

	owner := strings.TrimSpace(parts[0])
	name := strings.TrimSpace(parts[1])
	if owner == "" || name == "" {
		return Target{}, &relaierrors.InvalidTargetError{Target: s}
	}

	return Target{Owner: owner, Name: name}, nil
}

// String returns the target in owner/name form.
func (t Target) String() string {
	return t.Owner + "/" + t.Name
}

// Team is the input of an aggregation run, as resolved from the catalog.
type Team struct {
	// Name is informational and only appears in run metadata.
	Name         string
	Repositories []string
	Members      []string
	Organization string
}

// uniqueNames trims names, drops empty ones and keeps the first occurrence
// of each.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
