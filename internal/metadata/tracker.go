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

// Package metadata tracks statistics about aggregation runs. Batches run
// concurrently, so the Tracker is safe for use from multiple goroutines.
//
// Metadata can be saved as JSON files, allowing external tools to analyze
// run history and how often batches degrade.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Tracker collects statistics during an aggregation run. Create a new
// tracker at the start of each run.
type Tracker struct {
	mu            sync.Mutex
	startTime     time.Time
	apiCallCount  int
	batches       int
	failedBatches int
	totalPRs      int
	duplicatePRs  int
}

// New creates a new metadata tracker and initializes it with the current time.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
	}
}

// IncrementAPICall records that an API call was made.
func (t *Tracker) IncrementAPICall() {
	t.mu.Lock()
	t.apiCallCount++
	t.mu.Unlock()
}

// RecordBatch records a settled batch.
func (t *Tracker) RecordBatch(failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batches++
	if failed {
		t.failedBatches++
	}
}

// RecordPullRequests records the size of the merged result and how many
// duplicates were dropped from it.
func (t *Tracker) RecordPullRequests(unique, duplicates int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalPRs = unique
	t.duplicatePRs = duplicates
}

// APICalls returns the number of API calls recorded so far.
func (t *Tracker) APICalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.apiCallCount
}

// GenerateMetadata creates the RunMetadata record for the run.
func (t *Tracker) GenerateMetadata(boardVersion, runID string, params RunParams) *RunMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := time.Now()

	return &RunMetadata{
		BoardVersion: boardVersion,
		RunID:        runID,
		Parameters:   params,
		Results: RunResults{
			TotalPRs:      t.totalPRs,
			DuplicatePRs:  t.duplicatePRs,
			Batches:       t.batches,
			FailedBatches: t.failedBatches,
			APICallCount:  t.apiCallCount,
			Duration:      completedAt.Sub(t.startTime).String(),
			StartedAt:     t.startTime,
			CompletedAt:   completedAt,
		},
	}
}

// SaveMetadata persists a RunMetadata record to a JSON file in dir. The
// file is written to a temporary name and renamed into place.
//
// The metadata file will be named: board-run-{unix}-{run id}.json
func SaveMetadata(metadata *RunMetadata, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create metadata directory: %w", err)
	}

	filename := fmt.Sprintf("board-run-%d-%s.json", metadata.Results.StartedAt.Unix(), metadata.RunID)
	path := filepath.Join(dir, filename)

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return "", fmt.Errorf("failed to save metadata file: %w", err)
	}

	return path, nil
}

// WriteMetadataToWriter serializes metadata as indented JSON to w.
func WriteMetadataToWriter(metadata *RunMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
