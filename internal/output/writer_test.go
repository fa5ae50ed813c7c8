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
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirseerhq/sirseer-board/internal/board"
	"github.com/sirseerhq/sirseer-board/internal/github"
)

// Compile-time check that Writer implements RecordWriter
var _ RecordWriter = (*Writer)(nil)

func sampleBuckets() []board.Bucket {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []board.Bucket{
		{Label: board.LabelChangesRequested, Content: []github.PullRequestDetail{
			{ID: "PR_2", Number: 2, Title: "Rework cache", CreatedAt: created,
				Repository: github.RepositoryRef{Owner: "acme", Name: "gateway"}},
		}},
		{Label: board.LabelReviewRequired, Content: []github.PullRequestDetail{
			{ID: "PR_9", Number: 9, Title: "Add metrics", CreatedAt: created, IsDraft: true},
			{ID: "PR_4", Number: 4, Title: "Bump deps", CreatedAt: created},
		}},
	}
}

func decodeLines(t *testing.T, data string) []Record {
	t.Helper()
	var records []Record
	for i, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("Invalid JSON at line %d: %v", i, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	if writer == nil {
		t.Fatal("NewWriter returned nil")
	}
	if writer.output != &buf {
		t.Error("Writer output doesn't match provided buffer")
	}
	if writer.Count() != 0 {
		t.Errorf("Initial count should be 0, got %d", writer.Count())
	}
}

func TestWriteResult(t *testing.T) {
	tests := []struct {
		name       string
		buckets    []board.Bucket
		wantIDs    []string
		wantLabels []string
	}{
		{
			name:       "bucket order then content order",
			buckets:    sampleBuckets(),
			wantIDs:    []string{"PR_2", "PR_9", "PR_4"},
			wantLabels: []string{board.LabelChangesRequested, board.LabelReviewRequired, board.LabelReviewRequired},
		},
		{
			name:    "empty board",
			buckets: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writer := NewWriter(&buf)

			if err := WriteResult(writer, "run-1", tt.buckets); err != nil {
				t.Fatalf("WriteResult failed: %v", err)
			}
			if writer.Count() != len(tt.wantIDs) {
				t.Errorf("Count mismatch: got %d, want %d", writer.Count(), len(tt.wantIDs))
			}

			records := decodeLines(t, buf.String())
			if len(records) != len(tt.wantIDs) {
				t.Fatalf("Line count mismatch: got %d, want %d", len(records), len(tt.wantIDs))
			}
			for i, rec := range records {
				if rec.RunID != "run-1" {
					t.Errorf("line %d run_id = %q", i, rec.RunID)
				}
				if rec.PullRequest.ID != tt.wantIDs[i] {
					t.Errorf("line %d id = %q, want %q", i, rec.PullRequest.ID, tt.wantIDs[i])
				}
				if rec.Bucket != tt.wantLabels[i] {
					t.Errorf("line %d bucket = %q, want %q", i, rec.Bucket, tt.wantLabels[i])
				}
			}
		})
	}
}

func TestRecord_WireFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResult(NewWriter(&buf), "run-7", sampleBuckets()[:1]); err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"run_id", "bucket", "pull_request"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("record is missing %q: %s", key, buf.String())
		}
	}
	pr := raw["pull_request"].(map[string]any)
	if pr["created_at"] != "2024-03-01T12:00:00Z" {
		t.Errorf("created_at = %v", pr["created_at"])
	}
	if _, ok := pr["last_edited_at"]; ok {
		t.Error("nil last_edited_at should be omitted")
	}
}

type failingWriter struct{ after int }

func (f *failingWriter) Write(any) error {
	if f.after == 0 {
		return errors.New("disk full")
	}
	f.after--
	return nil
}

func (f *failingWriter) Close() error { return nil }

func TestWriteResult_StopsOnError(t *testing.T) {
	err := WriteResult(&failingWriter{after: 1}, "run-1", sampleBuckets())
	if err == nil || !strings.Contains(err.Error(), "PR_9") {
		t.Errorf("WriteResult error = %v, want failure on PR_9", err)
	}
}

func TestWriter_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	numGoroutines := 10
	recordsPerGoroutine := 100

	var wg sync.WaitGroup
	errCh := make(chan error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := WriteResult(writer, "run", []board.Bucket{{
				Label:   board.LabelApproved,
				Content: make([]github.PullRequestDetail, recordsPerGoroutine),
			}}); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("Concurrent write failed: %v", err)
	}

	total := numGoroutines * recordsPerGoroutine
	if writer.Count() != total {
		t.Errorf("Count mismatch: got %d, want %d", writer.Count(), total)
	}
	if got := len(decodeLines(t, buf.String())); got != total {
		t.Errorf("Line count mismatch: got %d, want %d", got, total)
	}
}

func TestNewFileWriter(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "board.ndjson")

	writer, err := NewFileWriter(filename)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer writer.Close()

	if err := WriteResult(writer, "run-1", sampleBuckets()); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	if got := len(decodeLines(t, string(data))); got != 3 {
		t.Errorf("Line count mismatch: got %d, want 3", got)
	}
}

func TestNewFileWriter_Error(t *testing.T) {
	_, err := NewFileWriter("/non/existent/path/board.ndjson")
	if err == nil {
		t.Error("Expected error for non-existent directory, got nil")
	}
}

func TestWriter_WriteError(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	if err := writer.Write(make(chan int)); err == nil {
		t.Error("Expected error when writing non-marshalable data")
	}
	if writer.Count() != 0 {
		t.Errorf("failed writes must not be counted, got %d", writer.Count())
	}
}

func BenchmarkWriteResult(b *testing.B) {
	buckets := []board.Bucket{{
		Label:   board.LabelReviewRequired,
		Content: make([]github.PullRequestDetail, 100),
	}}
	for i := range buckets[0].Content {
		buckets[0].Content[i] = github.PullRequestDetail{ID: "PR", Number: i, Title: "Benchmark pull request"}
	}

	b.ReportAllocs()
	for b.Loop() {
		if err := WriteResult(NewWriter(&bytes.Buffer{}), "run", buckets); err != nil {
			b.Fatal(err)
		}
	}
}
