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

import "context"

// Client defines the interface for interacting with GitHub's API.
// This interface allows for easy mocking in tests.
type Client interface {
	// FetchOpenPullRequests retrieves a page of open pull request numbers from the
	// specified repository. It supports cursor-based pagination through opts.After.
	FetchOpenPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) (*PullRequestPage, error)

	// SearchOpenPullRequests retrieves a page of open pull requests authored by the
	// given user, optionally restricted to one organization. Each summary carries
	// the repository it belongs to.
	SearchOpenPullRequests(ctx context.Context, author, org string, opts FetchOptions) (*PullRequestPage, error)

	// FetchPullRequestDetail retrieves the full record of a single pull request,
	// including its latest reviews.
	FetchPullRequestDetail(ctx context.Context, owner, repo string, number int) (*PullRequestDetail, error)
}
