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

package output

import (
	"fmt"

	"github.com/sirseerhq/sirseer-board/internal/board"
	"github.com/sirseerhq/sirseer-board/internal/github"
)

// RecordWriter defines the interface for writing board records.
type RecordWriter interface {
	// Write writes a single record to the output.
	Write(record any) error

	// Close closes the underlying writer and releases any resources.
	Close() error
}

// Record is one pull request on the board.
type Record struct {
	RunID       string                   `json:"run_id"`
	Bucket      string                   `json:"bucket"`
	PullRequest github.PullRequestDetail `json:"pull_request"`
}

// WriteResult writes every pull request of buckets as a Record, keeping
// bucket order and the order within each bucket.
func WriteResult(w RecordWriter, runID string, buckets []board.Bucket) error {
	for _, b := range buckets {
		for _, pr := range b.Content {
			rec := Record{RunID: runID, Bucket: b.Label, PullRequest: pr}
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("write %s: %w", pr.ID, err)
			}
		}
	}
	return nil
}
