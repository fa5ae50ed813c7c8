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

// Package metadata types define the structures used for recording statistics
// about one aggregation run.
package metadata

import (
	"time"
)

// RunMetadata is the record of a single board aggregation run: what was
// requested and what came back, including how many batches degraded.
type RunMetadata struct {
	BoardVersion string     `json:"board_version"`
	RunID        string     `json:"run_id"`
	Parameters   RunParams  `json:"parameters"`
	Results      RunResults `json:"results"`
}

// RunParams captures the input of an aggregation run.
type RunParams struct {
	Team                  string `json:"team,omitempty"`
	Organization          string `json:"organization,omitempty"`
	Repositories          int    `json:"repositories"`
	Members               int    `json:"members"`
	PullRequestLimit      int    `json:"pull_request_limit"`
	RepositoryConcurrency int    `json:"repository_concurrency"`
	MemberConcurrency     int    `json:"member_concurrency"`
}

// RunResults contains the counters collected while the run was in flight.
type RunResults struct {
	TotalPRs      int       `json:"total_prs"`
	DuplicatePRs  int       `json:"duplicate_prs"`
	Batches       int       `json:"batches"`
	FailedBatches int       `json:"failed_batches"`
	APICallCount  int       `json:"api_calls_made"`
	Duration      string    `json:"run_duration"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
}
