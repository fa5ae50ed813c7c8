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
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/sirseerhq/sirseer-board/internal/metadata"
	"github.com/sirseerhq/sirseer-board/internal/output"
)

// ReadRecords decodes an NDJSON board file, failing the test on any
// malformed line.
func ReadRecords(t *testing.T, filePath string) []output.Record {
	t.Helper()

	file, err := os.Open(filePath)
	if err != nil {
		t.Fatalf("Failed to open output file: %v", err)
	}
	defer file.Close()

	return ParseRecords(t, file.Name(), bufio.NewScanner(file))
}

// ParseRecordsString decodes NDJSON records from s.
func ParseRecordsString(t *testing.T, s string) []output.Record {
	t.Helper()
	return ParseRecords(t, "stdout", bufio.NewScanner(strings.NewReader(s)))
}

// ParseRecords decodes every non-empty line scanned as an output.Record.
func ParseRecords(t *testing.T, source string, scanner *bufio.Scanner) []output.Record {
	t.Helper()

	var records []output.Record
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || !strings.HasPrefix(text, "{") {
			continue
		}

		var rec output.Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			t.Errorf("%s line %d: invalid JSON: %v", source, line, err)
			continue
		}
		if rec.RunID == "" || rec.Bucket == "" || rec.PullRequest.ID == "" {
			t.Errorf("%s line %d: incomplete record: %s", source, line, text)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading %s: %v", source, err)
	}
	return records
}

// AssertNDJSONOutput validates that a file holds expectedCount board records
// sharing one run ID.
func AssertNDJSONOutput(t *testing.T, filePath string, expectedCount int) []output.Record {
	t.Helper()

	records := ReadRecords(t, filePath)
	if len(records) != expectedCount {
		t.Errorf("Expected %d records, got %d", expectedCount, len(records))
	}
	for _, rec := range records {
		if rec.RunID != records[0].RunID {
			t.Errorf("Mixed run IDs %q and %q", records[0].RunID, rec.RunID)
		}
	}
	return records
}

// RecordNumbers returns "owner/name#number" for each record, in order.
func RecordNumbers(records []output.Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		pr := rec.PullRequest
		out = append(out, pr.Repository.FullName()+"#"+strconv.Itoa(pr.Number))
	}
	return out
}

// AssertMetadataFile validates that dir holds exactly one run metadata file
// and returns it decoded.
func AssertMetadataFile(t *testing.T, dir string) *metadata.RunMetadata {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, "board-run-*.json"))
	if err != nil {
		t.Fatalf("Failed to glob metadata files: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected one metadata file in %s, found %d", dir, len(matches))
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("Failed to read metadata file: %v", err)
	}

	var md metadata.RunMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		t.Fatalf("Invalid metadata JSON: %v", err)
	}
	if md.RunID == "" || md.BoardVersion == "" {
		t.Errorf("Metadata missing run identity: %+v", md)
	}
	if md.Results.StartedAt.IsZero() || md.Results.CompletedAt.IsZero() {
		t.Errorf("Metadata missing timestamps: %+v", md.Results)
	}
	return &md
}

// AssertContainsString checks if a string contains a substring
func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, got: %s", needle, haystack)
	}
}

// AssertNotContainsString checks if a string does not contain a substring
func AssertNotContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("Expected string to NOT contain %q, got: %s", needle, haystack)
	}
}
