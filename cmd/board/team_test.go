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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	relaierrors "github.com/sirseerhq/sirseer-board/internal/errors"
	"github.com/sirseerhq/sirseer-board/internal/config"
	"github.com/sirseerhq/sirseer-board/internal/github"
	"github.com/sirseerhq/sirseer-board/internal/output"
)

const testCatalog = `kind: Group
metadata:
  name: platform
  annotations:
    github.com/team-org: org
---
kind: Component
metadata:
  name: repo-a
  annotations:
    github.com/project-slug: org/repoA
spec:
  owner: platform
---
kind: User
metadata:
  name: alice
  annotations:
    github.com/user-login: alice
spec:
  memberOf: [platform]
`

// useMockClient routes newClient to mock for the duration of the test.
func useMockClient(t *testing.T, mock *github.MockClient) {
	t.Helper()
	orig := newClient
	newClient = func(token, endpoint string) github.Client { return mock }
	t.Cleanup(func() { newClient = orig })
}

func boardMock() *github.MockClient {
	return github.NewMockClientWithOptions(
		github.WithRepository("org", "repoA",
			github.PullRequestDetail{Number: 1, ID: "A-1",
				LatestReviews: []github.Review{{Author: github.Author{Login: "bob"}, State: github.ReviewApproved}}},
			github.PullRequestDetail{Number: 2, ID: "A-2", IsDraft: true,
				LatestReviews: []github.Review{{Author: github.Author{Login: "carol"}, State: github.ReviewChangesRequested}}},
		),
		github.WithAuthored("alice", "org", "repoB",
			github.PullRequestDetail{Number: 5, ID: "B-5", Author: github.Author{Login: "alice"}}),
	)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(cfg.Catalog.Path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func readRecords(t *testing.T, data string) []output.Record {
	t.Helper()
	var records []output.Record
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var rec output.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestRunTeam_FromCatalog(t *testing.T) {
	useMockClient(t, boardMock())
	cfg := testConfig(t)

	var stdout, stderr bytes.Buffer
	err := runTeam(context.Background(), &stdout, &stderr, cfg, "platform", teamOptions{token: "test-token"})
	if err != nil {
		t.Fatalf("runTeam() error = %v", err)
	}

	records := readRecords(t, stdout.String())
	want := []struct{ id, bucket string }{
		{"A-2", "Changes requested"},
		{"A-1", "Approved"},
		{"B-5", "Review required"},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d:\n%s", len(records), len(want), stdout.String())
	}
	for i, w := range want {
		if records[i].PullRequest.ID != w.id || records[i].Bucket != w.bucket {
			t.Errorf("record %d = %s/%s, want %s/%s", i, records[i].PullRequest.ID, records[i].Bucket, w.id, w.bucket)
		}
		if records[i].RunID == "" || records[i].RunID != records[0].RunID {
			t.Errorf("record %d has run id %q", i, records[i].RunID)
		}
	}

	if !strings.Contains(stderr.String(), "Found 3 open pull requests") {
		t.Errorf("stderr missing summary: %s", stderr.String())
	}
}

func TestRunTeam_FlagsAndFilters(t *testing.T) {
	mock := boardMock()
	useMockClient(t, mock)
	cfg := config.DefaultConfig()
	cfg.Defaults.PullRequestLimit = 7

	var stdout, stderr bytes.Buffer
	err := runTeam(context.Background(), &stdout, &stderr, cfg, "", teamOptions{
		token:        "test-token",
		repositories: []string{"org/repoA"},
		members:      []string{"alice"},
		organization: "org",
		filters:      []string{"draft"},
	})
	if err != nil {
		t.Fatalf("runTeam() error = %v", err)
	}

	records := readRecords(t, stdout.String())
	if len(records) != 1 || records[0].PullRequest.ID != "A-2" {
		t.Errorf("draft filter output = %+v, want only A-2", records)
	}
	if got := mock.ListCalls[0].PageSize; got != 7 {
		t.Errorf("page size = %d, want configured limit 7", got)
	}
}

func TestRunTeam_WritesFileAndMetadata(t *testing.T) {
	useMockClient(t, boardMock())
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.Defaults.MetadataDir = filepath.Join(dir, "runs")
	outFile := filepath.Join(dir, "board.ndjson")

	var stdout, stderr bytes.Buffer
	err := runTeam(context.Background(), &stdout, &stderr, cfg, "platform", teamOptions{
		token:      "test-token",
		outputFile: outFile,
	})
	if err != nil {
		t.Fatalf("runTeam() error = %v", err)
	}

	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty when writing to a file, got %q", stdout.String())
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(readRecords(t, string(data))); got != 3 {
		t.Errorf("file has %d records, want 3", got)
	}

	files, err := filepath.Glob(filepath.Join(cfg.Defaults.MetadataDir, "board-run-*.json"))
	if err != nil || len(files) != 1 {
		t.Fatalf("metadata files = %v (err %v), want exactly one", files, err)
	}
}

func TestRunTeam_Errors(t *testing.T) {
	tests := []struct {
		name     string
		team     string
		opts     teamOptions
		mock     *github.MockClient
		wantErr  error
		wantMsg  string
		wantCode int
	}{
		{
			name:     "unknown team",
			team:     "search",
			opts:     teamOptions{token: "t"},
			wantErr:  relaierrors.ErrTeamNotFound,
			wantCode: 4,
		},
		{
			name:     "invalid repository",
			opts:     teamOptions{token: "t", repositories: []string{"not-a-repo"}},
			wantErr:  relaierrors.ErrInvalidTarget,
			wantCode: 4,
		},
		{
			name:     "invalid filter",
			opts:     teamOptions{token: "t", repositories: []string{"org/repoA"}, filters: []string{"mine"}},
			wantErr:  relaierrors.ErrInvalidFilter,
			wantCode: 4,
		},
		{
			name:     "nothing to aggregate",
			opts:     teamOptions{token: "t"},
			wantMsg:  "nothing to aggregate",
			wantCode: 1,
		},
		{
			name: "all batches failed",
			opts: teamOptions{token: "t", repositories: []string{"org/repoA"}},
			mock: github.NewMockClientWithOptions(
				github.WithError("org/repoA", fmt.Errorf("bad credentials: %w", relaierrors.ErrInvalidToken)),
			),
			wantErr:  relaierrors.ErrInvalidToken,
			wantCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := tt.mock
			if mock == nil {
				mock = boardMock()
			}
			useMockClient(t, mock)
			cfg := testConfig(t)

			var stdout, stderr bytes.Buffer
			err := runTeam(context.Background(), &stdout, &stderr, cfg, tt.team, tt.opts)
			if err == nil {
				t.Fatal("runTeam() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("runTeam() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("runTeam() error = %v, want containing %q", err, tt.wantMsg)
			}
			if got := mapErrorToExitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestRunTeam_PartialFailureSucceeds(t *testing.T) {
	mock := boardMock()
	mock.Errors["user:alice"] = relaierrors.ErrNetworkFailure
	useMockClient(t, mock)
	cfg := testConfig(t)

	var stdout, stderr bytes.Buffer
	if err := runTeam(context.Background(), &stdout, &stderr, cfg, "platform", teamOptions{token: "t"}); err != nil {
		t.Fatalf("runTeam() error = %v", err)
	}
	if got := len(readRecords(t, stdout.String())); got != 2 {
		t.Errorf("got %d records, want the 2 from the repository batch", got)
	}
	if !strings.Contains(stderr.String(), "Warning: member alice skipped (network)") {
		t.Errorf("stderr missing failure warning: %s", stderr.String())
	}
}

func TestResolveToken(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GitHub.TokenEnv = "BOARD_TEST_TOKEN"

	t.Setenv("BOARD_TEST_TOKEN", "")
	if _, err := resolveToken("", cfg); err == nil || !strings.Contains(err.Error(), "BOARD_TEST_TOKEN") {
		t.Errorf("resolveToken() error = %v, want missing token error naming the variable", err)
	}

	t.Setenv("BOARD_TEST_TOKEN", "env-token")
	if got, _ := resolveToken("", cfg); got != "env-token" {
		t.Errorf("resolveToken() = %q, want env-token", got)
	}
	if got, _ := resolveToken("flag-token", cfg); got != "flag-token" {
		t.Errorf("resolveToken() = %q, want flag-token", got)
	}
}

func TestMapErrorToExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("boom"), 1},
		{relaierrors.ErrInvalidToken, 2},
		{fmt.Errorf("wrapped: %w", relaierrors.ErrRepoNotFound), 2},
		{relaierrors.ErrRateLimit, 2},
		{relaierrors.ErrNetworkFailure, 3},
		{&relaierrors.InvalidTargetError{Target: "x"}, 4},
		{relaierrors.ErrInvalidLimit, 4},
		{relaierrors.ErrTeamNotFound, 4},
	}

	for _, tt := range tests {
		if got := mapErrorToExitCode(tt.err); got != tt.want {
			t.Errorf("mapErrorToExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"dev", "prod"} {
		if _, err := newLogger(level); err != nil {
			t.Errorf("newLogger(%q) error = %v", level, err)
		}
	}
	if _, err := newLogger("loud"); err == nil {
		t.Error("newLogger(loud) should fail")
	}
}

func TestRootCommand_Team(t *testing.T) {
	useMockClient(t, boardMock())
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("GITHUB_TOKEN", "test-token")

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"team", "--repo", "org/repoA", "--member", "alice", "--limit", "5", "--filter", "team", "--filter", "draft"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	records := readRecords(t, stdout.String())
	if len(records) != 1 || records[0].PullRequest.ID != "A-2" {
		t.Errorf("got %+v, want only the draft A-2", records)
	}
	if github.UserAgent != "sirseer-board/"+version {
		t.Errorf("UserAgent = %q", github.UserAgent)
	}
}

func TestRootCommand_NegativeLimit(t *testing.T) {
	mock := boardMock()
	useMockClient(t, mock)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("GITHUB_TOKEN", "test-token")

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"team", "--repo", "org/repoA", "--limit", "-1"})

	err := cmd.Execute()
	if !errors.Is(err, relaierrors.ErrInvalidLimit) {
		t.Fatalf("Execute() error = %v, want ErrInvalidLimit", err)
	}
	if got := mapErrorToExitCode(err); got != 4 {
		t.Errorf("exit code = %d, want 4", got)
	}
	if len(mock.ListCalls) != 0 {
		t.Errorf("no request should be made, got %d", len(mock.ListCalls))
	}
}
