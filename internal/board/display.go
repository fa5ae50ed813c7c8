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
	"fmt"
	"strings"

	relaierrors "github.com/sirseerhq/sirseer-board/internal/errors"
	"github.com/sirseerhq/sirseer-board/internal/github"
)

// Filter is a display filter toggled on the board.
type Filter string

const (
	// FilterTeam hides pull requests that are neither in a team repository
	// nor authored by a team member.
	FilterTeam Filter = "team"
	// FilterDraft shows only draft pull requests.
	FilterDraft Filter = "draft"
)

// ParseFilters parses filter names. Values may also be comma separated.
// Unknown names are rejected with ErrInvalidFilter.
func ParseFilters(values []string) ([]Filter, error) {
	var filters []Filter
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			f := Filter(name)
			switch f {
			case FilterTeam, FilterDraft:
			default:
				return nil, fmt.Errorf("%q: %w", name, relaierrors.ErrInvalidFilter)
			}
			if !hasFilter(filters, f) {
				filters = append(filters, f)
			}
		}
	}
	return filters, nil
}

// ShouldDisplay reports whether pr passes the active filters. Repository
// and member names compare case-insensitively, as GitHub does.
func ShouldDisplay(pr github.PullRequestDetail, repositories, members []string, filters []Filter) bool {
	if hasFilter(filters, FilterTeam) {
		inTeam := containsFold(repositories, pr.Repository.FullName()) ||
			containsFold(members, pr.Author.Login)
		if !inTeam {
			return false
		}
	}

	if hasFilter(filters, FilterDraft) && !pr.IsDraft {
		return false
	}

	return true
}

// Display returns the buckets of r restricted to the pull requests that pass
// the filters. Buckets left empty are dropped.
func (r *Result) Display(repositories, members []string, filters []Filter) []Bucket {
	buckets := make([]Bucket, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		var content []github.PullRequestDetail
		for _, pr := range b.Content {
			if ShouldDisplay(pr, repositories, members, filters) {
				content = append(content, pr)
			}
		}
		if len(content) > 0 {
			buckets = append(buckets, Bucket{Label: b.Label, Content: content})
		}
	}
	return buckets
}

func hasFilter(filters []Filter, f Filter) bool {
	for _, x := range filters {
		if x == f {
			return true
		}
	}
	return false
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
