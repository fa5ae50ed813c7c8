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
	"context"
	"fmt"

	"github.com/sirseerhq/sirseer-board/internal/github"
	"github.com/sirseerhq/sirseer-board/internal/metadata"
)

// DefaultPullRequestLimit is the number of open pull requests listed per
// repository or member when no limit is configured.
const DefaultPullRequestLimit = 10

// Fetcher issues the listing and detail queries of one aggregation run.
type Fetcher struct {
	client  github.Client
	tracker *metadata.Tracker
}

// NewFetcher creates a Fetcher. The tracker may be nil.
func NewFetcher(client github.Client, tracker *metadata.Tracker) *Fetcher {
	return &Fetcher{client: client, tracker: tracker}
}

// pageFunc fetches one page of a listing.
type pageFunc func(ctx context.Context, opts github.FetchOptions) (*github.PullRequestPage, error)

// pageState is the loop state of a paginated listing.
type pageState struct {
	accumulated []github.PullRequestSummary
	cursor      string
	hasMore     bool
}

// RepositoryPullRequests lists up to limit open pull requests of target.
func (f *Fetcher) RepositoryPullRequests(ctx context.Context, target Target, limit int) ([]github.PullRequestSummary, error) {
	prs, err := f.collect(ctx, limit, func(ctx context.Context, opts github.FetchOptions) (*github.PullRequestPage, error) {
		return f.client.FetchOpenPullRequests(ctx, target.Owner, target.Name, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("list pull requests of %s: %w", target, err)
	}
	return prs, nil
}

// MemberPullRequests lists up to limit open pull requests authored by member,
// restricted to organization when it is not empty.
func (f *Fetcher) MemberPullRequests(ctx context.Context, member, organization string, limit int) ([]github.PullRequestSummary, error) {
	prs, err := f.collect(ctx, limit, func(ctx context.Context, opts github.FetchOptions) (*github.PullRequestPage, error) {
		return f.client.SearchOpenPullRequests(ctx, member, organization, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("list pull requests of %s: %w", member, err)
	}
	return prs, nil
}

// Detail fetches the full record of pull request number in target.
func (f *Fetcher) Detail(ctx context.Context, target Target, number int) (*github.PullRequestDetail, error) {
	f.countCall()
	detail, err := f.client.FetchPullRequestDetail(ctx, target.Owner, target.Name, number)
	if err != nil {
		return nil, fmt.Errorf("fetch %s#%d: %w", target, number, err)
	}
	return detail, nil
}

// collect pages through a listing until limit items are accumulated or the
// provider reports no further pages. Each page asks for at most the
// remaining count, capped at github.MaxPageSize.
func (f *Fetcher) collect(ctx context.Context, limit int, fetch pageFunc) ([]github.PullRequestSummary, error) {
	if limit <= 0 {
		limit = DefaultPullRequestLimit
	}

	state := pageState{hasMore: true}
	for state.hasMore && len(state.accumulated) < limit {
		opts := github.FetchOptions{
			PageSize: min(limit-len(state.accumulated), github.MaxPageSize),
			After:    state.cursor,
		}

		f.countCall()
		page, err := fetch(ctx, opts)
		if err != nil {
			return nil, err
		}

		state.accumulated = append(state.accumulated, page.PullRequests...)

		// A next page without a fresh cursor would request the same page again.
		state.hasMore = page.HasNextPage && page.EndCursor != "" && page.EndCursor != state.cursor
		state.cursor = page.EndCursor
	}

	if len(state.accumulated) > limit {
		state.accumulated = state.accumulated[:limit]
	}
	return state.accumulated, nil
}

func (f *Fetcher) countCall() {
	if f.tracker != nil {
		f.tracker.IncrementAPICall()
	}
}
