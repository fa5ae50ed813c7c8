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
	"sync"

	"github.com/sirseerhq/sirseer-board/internal/github"
)

// Board holds the latest aggregation result of one team and can re-run it.
type Board struct {
	mu         sync.RWMutex
	aggregator *Aggregator
	team       Team
	result     *Result
}

// AggregateTeamPullRequests runs a first aggregation for team and returns a
// Board holding its result.
func AggregateTeamPullRequests(ctx context.Context, client github.Client, team Team, opts ...Option) (*Board, error) {
	b := &Board{
		aggregator: NewAggregator(client, opts...),
		team:       team,
	}
	if _, err := b.Refresh(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// PullRequests returns the result of the most recent run.
func (b *Board) PullRequests() *Result {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.result
}

// Team returns the team the board aggregates.
func (b *Board) Team() Team {
	return b.team
}

// Refresh re-runs the aggregation for the same team and replaces the held
// result. On error the previous result is kept.
func (b *Board) Refresh(ctx context.Context) (*Result, error) {
	result, err := b.aggregator.Aggregate(ctx, b.team)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.result = result
	b.mu.Unlock()

	return result, nil
}
