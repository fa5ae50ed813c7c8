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

package testutil

import (
	"fmt"
	"time"

	"github.com/sirseerhq/sirseer-board/internal/github"
)

// BaseTime is the creation time of pull requests built without one.
var BaseTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// PullRequestBuilder helps build test pull request details
type PullRequestBuilder struct {
	pr github.PullRequestDetail
}

// NewPullRequestBuilder creates a builder for pull request number in
// owner/repo, opened by "octocat" at BaseTime.
func NewPullRequestBuilder(owner, repo string, number int) *PullRequestBuilder {
	return &PullRequestBuilder{
		pr: github.PullRequestDetail{
			ID:         fmt.Sprintf("PR_%s_%s_%d", owner, repo, number),
			Number:     number,
			Title:      fmt.Sprintf("Pull request %d", number),
			CreatedAt:  BaseTime,
			Author:     github.Author{Login: "octocat"},
			URL:        fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, number),
			Repository: github.RepositoryRef{Owner: owner, Name: repo},
		},
	}
}

// WithID overrides the node ID.
func (b *PullRequestBuilder) WithID(id string) *PullRequestBuilder {
	b.pr.ID = id
	return b
}

// WithTitle sets the title.
func (b *PullRequestBuilder) WithTitle(title string) *PullRequestBuilder {
	b.pr.Title = title
	return b
}

// WithAuthor sets the author login.
func (b *PullRequestBuilder) WithAuthor(login string) *PullRequestBuilder {
	b.pr.Author = github.Author{Login: login, AvatarURL: "https://avatars.example.com/" + login}
	return b
}

// WithCreatedAt sets the creation time.
func (b *PullRequestBuilder) WithCreatedAt(t time.Time) *PullRequestBuilder {
	b.pr.CreatedAt = t
	return b
}

// WithAge sets the creation time to d before BaseTime.
func (b *PullRequestBuilder) WithAge(d time.Duration) *PullRequestBuilder {
	b.pr.CreatedAt = BaseTime.Add(-d)
	return b
}

// WithLastEditedAt sets the last edit time.
func (b *PullRequestBuilder) WithLastEditedAt(t time.Time) *PullRequestBuilder {
	b.pr.LastEditedAt = &t
	return b
}

// AsDraft marks the pull request as a draft.
func (b *PullRequestBuilder) AsDraft() *PullRequestBuilder {
	b.pr.IsDraft = true
	return b
}

// WithReview appends a latest review.
func (b *PullRequestBuilder) WithReview(login string, state github.ReviewState) *PullRequestBuilder {
	b.pr.LatestReviews = append(b.pr.LatestReviews, github.Review{
		Author: github.Author{Login: login},
		State:  state,
	})
	return b
}

// Approved adds an approving review by login.
func (b *PullRequestBuilder) Approved(login string) *PullRequestBuilder {
	return b.WithReview(login, github.ReviewApproved)
}

// ChangesRequested adds a change request by login.
func (b *PullRequestBuilder) ChangesRequested(login string) *PullRequestBuilder {
	return b.WithReview(login, github.ReviewChangesRequested)
}

// Build returns the pull request detail.
func (b *PullRequestBuilder) Build() github.PullRequestDetail {
	pr := b.pr
	pr.LatestReviews = append([]github.Review(nil), b.pr.LatestReviews...)
	return pr
}

// GeneratePullRequests builds count pull requests numbered from 1 in
// owner/repo, each one hour older than the previous.
func GeneratePullRequests(owner, repo string, count int) []github.PullRequestDetail {
	prs := make([]github.PullRequestDetail, 0, count)
	for i := 1; i <= count; i++ {
		prs = append(prs, NewPullRequestBuilder(owner, repo, i).
			WithAge(time.Duration(i)*time.Hour).
			Build())
	}
	return prs
}
