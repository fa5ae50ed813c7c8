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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME and the working directory at an empty temp dir and
// clears the variables LoadConfig reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	for _, k := range []string{
		"GITHUB_GRAPHQL_ENDPOINT",
		"SIRSEER_PULL_REQUEST_LIMIT",
		"SIRSEER_REPOSITORY_CONCURRENCY",
		"SIRSEER_MEMBER_CONCURRENCY",
		"SIRSEER_METADATA_DIR",
		"SIRSEER_CATALOG_PATH",
		"SIRSEER_SERVER_ADDRESS",
		"SIRSEER_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.GitHub.GraphQLEndpoint != "https://api.github.com/graphql" {
		t.Errorf("GraphQLEndpoint = %s, want https://api.github.com/graphql", cfg.GitHub.GraphQLEndpoint)
	}
	if cfg.GitHub.TokenEnv != "GITHUB_TOKEN" {
		t.Errorf("TokenEnv = %s, want GITHUB_TOKEN", cfg.GitHub.TokenEnv)
	}
	if cfg.Defaults.PullRequestLimit != 10 {
		t.Errorf("PullRequestLimit = %d, want 10", cfg.Defaults.PullRequestLimit)
	}
	if cfg.Concurrency.Repository != 5 || cfg.Concurrency.Member != 3 {
		t.Errorf("Concurrency = %+v, want {5 3}", cfg.Concurrency)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	configPath := filepath.Join(dir, "config.yaml")

	configContent := `
github:
  graphql_endpoint: https://github.enterprise.com/api/graphql
  token_env: GITHUB_ENTERPRISE_TOKEN

defaults:
  pull_request_limit: 25
  metadata_dir: /custom/runs

concurrency:
  repository: 8
  member: 2

catalog:
  path: /etc/board/catalog.yaml

server:
  address: 127.0.0.1:9000
  read_timeout: 5s
  write_timeout: 2m

logging:
  level: dev
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.GitHub.GraphQLEndpoint != "https://github.enterprise.com/api/graphql" {
		t.Errorf("GraphQLEndpoint = %s", cfg.GitHub.GraphQLEndpoint)
	}
	if cfg.GitHub.TokenEnv != "GITHUB_ENTERPRISE_TOKEN" {
		t.Errorf("TokenEnv = %s", cfg.GitHub.TokenEnv)
	}
	if cfg.Defaults.PullRequestLimit != 25 {
		t.Errorf("PullRequestLimit = %d, want 25", cfg.Defaults.PullRequestLimit)
	}
	if cfg.Defaults.MetadataDir != "/custom/runs" {
		t.Errorf("MetadataDir = %s", cfg.Defaults.MetadataDir)
	}
	if cfg.Concurrency.Repository != 8 || cfg.Concurrency.Member != 2 {
		t.Errorf("Concurrency = %+v, want {8 2}", cfg.Concurrency)
	}
	if cfg.Catalog.Path != "/etc/board/catalog.yaml" {
		t.Errorf("Catalog.Path = %s", cfg.Catalog.Path)
	}
	if cfg.Server.Address != "127.0.0.1:9000" {
		t.Errorf("Server.Address = %s", cfg.Server.Address)
	}
	if cfg.Server.ReadTimeout != 5*time.Second || cfg.Server.WriteTimeout != 2*time.Minute {
		t.Errorf("Server timeouts = %v/%v", cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	}
	if cfg.Logging.Level != "dev" {
		t.Errorf("Logging.Level = %s", cfg.Logging.Level)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("defaults:\n  pull_request_limit: 40\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Defaults.PullRequestLimit != 40 {
		t.Errorf("PullRequestLimit = %d, want 40", cfg.Defaults.PullRequestLimit)
	}
	if cfg.Concurrency.Repository != 5 {
		t.Errorf("Repository concurrency = %d, want default 5", cfg.Concurrency.Repository)
	}
	if cfg.GitHub.TokenEnv != "GITHUB_TOKEN" {
		t.Errorf("TokenEnv = %s, want default", cfg.GitHub.TokenEnv)
	}
}

func TestLoadConfig_DiscoversDefaultLocations(t *testing.T) {
	tests := []struct {
		name string
		path func(dir string) string
	}{
		{name: "working directory", path: func(dir string) string { return filepath.Join(dir, ".sirseer-board.yaml") }},
		{name: "home directory", path: func(dir string) string { return filepath.Join(dir, ".sirseer", "board.yml") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := tt.path(dir)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte("defaults:\n  pull_request_limit: 33\n"), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadConfig("")
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Defaults.PullRequestLimit != 33 {
				t.Errorf("PullRequestLimit = %d, want 33", cfg.Defaults.PullRequestLimit)
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := isolate(t)

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("defaults: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(bad)
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("LoadConfig(bad) error = %v, want parse error", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_GRAPHQL_ENDPOINT", "https://ghe.example.com/graphql")
	t.Setenv("SIRSEER_PULL_REQUEST_LIMIT", "75")
	t.Setenv("SIRSEER_REPOSITORY_CONCURRENCY", "7")
	t.Setenv("SIRSEER_MEMBER_CONCURRENCY", "4")
	t.Setenv("SIRSEER_CATALOG_PATH", "/srv/catalog.yaml")
	t.Setenv("SIRSEER_SERVER_ADDRESS", ":9999")
	t.Setenv("SIRSEER_LOG_LEVEL", "DEV")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.GitHub.GraphQLEndpoint != "https://ghe.example.com/graphql" {
		t.Errorf("GraphQLEndpoint = %s", cfg.GitHub.GraphQLEndpoint)
	}
	if cfg.Defaults.PullRequestLimit != 75 {
		t.Errorf("PullRequestLimit = %d, want 75", cfg.Defaults.PullRequestLimit)
	}
	if cfg.Concurrency.Repository != 7 || cfg.Concurrency.Member != 4 {
		t.Errorf("Concurrency = %+v, want {7 4}", cfg.Concurrency)
	}
	if cfg.Catalog.Path != "/srv/catalog.yaml" {
		t.Errorf("Catalog.Path = %s", cfg.Catalog.Path)
	}
	if cfg.Server.Address != ":9999" {
		t.Errorf("Server.Address = %s", cfg.Server.Address)
	}
	if cfg.Logging.Level != "dev" {
		t.Errorf("Logging.Level = %s, want dev", cfg.Logging.Level)
	}
}

func TestEnvOverrides_RejectsMalformedNumbers(t *testing.T) {
	for _, v := range []string{"abc", "0", "-3"} {
		t.Run(v, func(t *testing.T) {
			isolate(t)
			t.Setenv("SIRSEER_PULL_REQUEST_LIMIT", v)

			_, err := LoadConfig("")
			if err == nil || !strings.Contains(err.Error(), "SIRSEER_PULL_REQUEST_LIMIT") {
				t.Errorf("LoadConfig() error = %v, want error naming the variable", err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, ".env")
	content := "BOARD_TEST_FROM_FILE=file\nBOARD_TEST_PRESET=file\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BOARD_TEST_PRESET", "process")
	t.Setenv("BOARD_TEST_FROM_FILE", "")
	os.Unsetenv("BOARD_TEST_FROM_FILE")

	if err := LoadEnvFile(""); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("BOARD_TEST_FROM_FILE") })

	if got := os.Getenv("BOARD_TEST_FROM_FILE"); got != "file" {
		t.Errorf("BOARD_TEST_FROM_FILE = %q, want file", got)
	}
	if got := os.Getenv("BOARD_TEST_PRESET"); got != "process" {
		t.Errorf("BOARD_TEST_PRESET = %q, want process (not overridden)", got)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	dir := isolate(t)
	if err := LoadEnvFile(filepath.Join(dir, "nope.env")); err != nil {
		t.Errorf("LoadEnvFile() error = %v, want nil for missing file", err)
	}
}

func TestToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GitHub.TokenEnv = "BOARD_TEST_TOKEN"
	t.Setenv("BOARD_TEST_TOKEN", "ghp_secret")

	if got := cfg.Token(); got != "ghp_secret" {
		t.Errorf("Token() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty endpoint", mutate: func(c *Config) { c.GitHub.GraphQLEndpoint = "" }, wantErr: "endpoint"},
		{name: "zero limit", mutate: func(c *Config) { c.Defaults.PullRequestLimit = 0 }, wantErr: "pull request limit"},
		{name: "zero repository concurrency", mutate: func(c *Config) { c.Concurrency.Repository = 0 }, wantErr: "repository concurrency"},
		{name: "negative member concurrency", mutate: func(c *Config) { c.Concurrency.Member = -1 }, wantErr: "member concurrency"},
		{name: "negative timeout", mutate: func(c *Config) { c.Server.ReadTimeout = -time.Second }, wantErr: "timeouts"},
		{name: "unknown level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "logging level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ReadTimeout = 0
	cfg.Server.WriteTimeout = 3 * time.Second

	read, write := cfg.ServerTimeouts()
	if read != 10*time.Second {
		t.Errorf("read = %v, want default 10s", read)
	}
	if write != 3*time.Second {
		t.Errorf("write = %v, want 3s", write)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/board")
	t.Setenv("BOARD_TEST_DIR", "runs")

	if got := expandPath("~/catalog.yaml"); got != "/home/board/catalog.yaml" {
		t.Errorf("expandPath(~) = %s", got)
	}
	if got := expandPath("/var/$BOARD_TEST_DIR"); got != "/var/runs" {
		t.Errorf("expandPath($VAR) = %s", got)
	}
}
