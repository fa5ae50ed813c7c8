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

// Package board aggregates the open pull requests of a team into a review
// board. A run fans out one batch per repository and one batch per team
// member; each batch pages through the open pull request listing, then
// fetches the detail record of every pull request under its own concurrency
// cap. Batches that fail contribute nothing and do not abort their siblings.
// The merged result is deduplicated (first occurrence wins) and classified
// into buckets by review decision.
//
// Basic usage:
//
//	b, err := board.AggregateTeamPullRequests(ctx, client, board.Team{
//	    Repositories: []string{"acme/gateway"},
//	    Members:      []string{"alice"},
//	    Organization: "acme",
//	}, board.WithLogger(logger))
//	if err != nil {
//	    // invalid input only; provider failures degrade the result instead
//	}
//	for _, bucket := range b.PullRequests().Buckets {
//	    // render bucket.Label and bucket.Content
//	}
//	result, err := b.Refresh(ctx)
package board
