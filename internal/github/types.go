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

// Package github provides types and interfaces for interacting with the GitHub API.
package github

import "time"

// MaxPageSize is the largest page GitHub's GraphQL API will return.
const MaxPageSize = 100

// ReviewState is the state of a single pull request review.
type ReviewState string

// Review states reported by GitHub. ReviewRequired is a pull request level
// decision rather than a review state, kept here so callers can use one type.
const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewRequired         ReviewState = "REVIEW_REQUIRED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewDismissed        ReviewState = "DISMISSED"
	ReviewPending          ReviewState = "PENDING"
)

// Author represents the author of a pull request or review.
type Author struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RepositoryRef identifies a repository by owner login and name.
type RepositoryRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// FullName returns the repository in owner/name form.
func (r RepositoryRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// PullRequestSummary is the minimal identity returned by paged listings.
// Repository is only set by the author search, where results span repositories.
type PullRequestSummary struct {
	Number     int            `json:"number"`
	Repository *RepositoryRef `json:"repository,omitempty"`
}

// Review is one entry of a pull request's latest reviews.
type Review struct {
	Author Author      `json:"author"`
	State  ReviewState `json:"state"`
}

// PullRequestDetail is the full record of an open pull request as shown on the board.
type PullRequestDetail struct {
	ID            string        `json:"id"`
	Number        int           `json:"number"`
	Title         string        `json:"title"`
	CreatedAt     time.Time     `json:"created_at"`
	LastEditedAt  *time.Time    `json:"last_edited_at,omitempty"`
	Author        Author        `json:"author"`
	URL           string        `json:"url"`
	IsDraft       bool          `json:"is_draft"`
	LatestReviews []Review      `json:"latest_reviews"`
	Repository    RepositoryRef `json:"repository"`
}

// PullRequestPage represents a page of pull request summaries from a GraphQL query.
// It includes pagination information to support fetching subsequent pages.
type PullRequestPage struct {
	PullRequests []PullRequestSummary
	HasNextPage  bool
	EndCursor    string
}

// FetchOptions configures how a page of pull requests is fetched.
type FetchOptions struct {
	// PageSize controls how many PRs to fetch per page.
	// Defaults to MaxPageSize if not specified and is capped at MaxPageSize.
	PageSize int

	// After is the cursor for pagination.
	// Empty string fetches from the beginning.
	After string
}

// pageSize returns the effective page size for opts.
func (o FetchOptions) pageSize() int {
	if o.PageSize <= 0 || o.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return o.PageSize
}
