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
	"slices"

	"github.com/sirseerhq/sirseer-board/internal/github"
)

// Bucket labels in display order.
const (
	LabelChangesRequested = "Changes requested"
	LabelApproved         = "Approved"
	LabelReviewRequired   = "Review required"
)

// Bucket is one labeled column of the board.
type Bucket struct {
	Label   string                     `json:"label"`
	Content []github.PullRequestDetail `json:"content"`
}

// bucketOrder maps each decision to its bucket label, in display order.
var bucketOrder = []struct {
	decision github.ReviewState
	label    string
}{
	{github.ReviewChangesRequested, LabelChangesRequested},
	{github.ReviewApproved, LabelApproved},
	{github.ReviewRequired, LabelReviewRequired},
}

// Decision returns the review decision of pr: CHANGES_REQUESTED if any
// reviewer's latest decisive review requests changes, otherwise APPROVED if
// any approves, otherwise REVIEW_REQUIRED.
func Decision(pr github.PullRequestDetail) github.ReviewState {
	var approved bool
	for _, state := range latestByReviewer(pr.LatestReviews) {
		switch state {
		case github.ReviewChangesRequested:
			return github.ReviewChangesRequested
		case github.ReviewApproved:
			approved = true
		}
	}
	if approved {
		return github.ReviewApproved
	}
	return github.ReviewRequired
}

// latestByReviewer folds reviews in order into one state per reviewer. A
// comment or pending review does not replace an earlier decisive one.
// Reviews without a login (deleted accounts) cannot be attributed, so each
// counts as a reviewer of its own.
func latestByReviewer(reviews []github.Review) []github.ReviewState {
	var anonymous []github.ReviewState
	index := make(map[string]int, len(reviews))
	var states []github.ReviewState
	for _, r := range reviews {
		login := r.Author.Login
		if login == "" {
			anonymous = append(anonymous, r.State)
			continue
		}
		i, seen := index[login]
		if !seen {
			index[login] = len(states)
			states = append(states, r.State)
			continue
		}
		switch r.State {
		case github.ReviewApproved, github.ReviewChangesRequested, github.ReviewDismissed:
			states[i] = r.State
		}
	}
	return append(states, anonymous...)
}

// Classify partitions prs into buckets by Decision, in the fixed order
// changes requested, approved, review required. Each bucket is sorted by
// creation time, newest first; ties keep input order. Empty buckets are
// omitted.
func Classify(prs []github.PullRequestDetail) []Bucket {
	grouped := make(map[github.ReviewState][]github.PullRequestDetail, len(bucketOrder))
	for _, pr := range prs {
		d := Decision(pr)
		grouped[d] = append(grouped[d], pr)
	}

	buckets := make([]Bucket, 0, len(bucketOrder))
	for _, b := range bucketOrder {
		content := grouped[b.decision]
		if len(content) == 0 {
			continue
		}
		slices.SortStableFunc(content, func(x, y github.PullRequestDetail) int {
			return y.CreatedAt.Compare(x.CreatedAt)
		})
		buckets = append(buckets, Bucket{Label: b.label, Content: content})
	}
	return buckets
}
