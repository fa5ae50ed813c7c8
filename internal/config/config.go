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

// Package config provides configuration management for sirseer-board with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. A .env file (never overrides variables already set)
//  4. Configuration file
//  5. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	relaierrors "github.com/sirseerhq/sirseer-board/internal/errors"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is the .env file read from the working directory.
const DefaultEnvFile = ".env"

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .sirseer-board.yaml (current directory)
//   - .sirseer-board.yml (current directory)
//   - ~/.sirseer/board.yaml
//   - ~/.sirseer/board.yml
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".sirseer-board.yaml",
			".sirseer-board.yml",
			filepath.Join(os.Getenv("HOME"), ".sirseer", "board.yaml"),
			filepath.Join(os.Getenv("HOME"), ".sirseer", "board.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Defaults.MetadataDir = expandPath(cfg.Defaults.MetadataDir)
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path)

	return cfg, nil
}

// LoadEnvFile copies the variables of a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	for k, v := range vars {
		if _, exists := os.LookupEnv(k); !exists {
			if err := os.Setenv(k, v); err != nil {
				return fmt.Errorf("failed to set %s: %w", k, err)
			}
		}
	}
	return nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Malformed numeric values are reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"SIRSEER_PULL_REQUEST_LIMIT", &cfg.Defaults.PullRequestLimit},
		{"SIRSEER_REPOSITORY_CONCURRENCY", &cfg.Concurrency.Repository},
		{"SIRSEER_MEMBER_CONCURRENCY", &cfg.Concurrency.Member},
	}
	for _, o := range ints {
		if v := os.Getenv(o.env); v != "" {
			n, err := parsePositiveInt(v)
			if err != nil {
				return fmt.Errorf("%s: %w", o.env, err)
			}
			*o.dst = n
		}
	}

	if dir := os.Getenv("SIRSEER_METADATA_DIR"); dir != "" {
		cfg.Defaults.MetadataDir = dir
	}
	if path := os.Getenv("SIRSEER_CATALOG_PATH"); path != "" {
		cfg.Catalog.Path = path
	}
	if addr := os.Getenv("SIRSEER_SERVER_ADDRESS"); addr != "" {
		cfg.Server.Address = addr
	}
	if level := os.Getenv("SIRSEER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// Token returns the GitHub token from the configured environment variable.
func (c *Config) Token() string {
	return os.Getenv(c.GitHub.TokenEnv)
}

// Validate checks if the configuration contains valid values. This should
// be called after loading configuration to catch invalid settings early.
func (c *Config) Validate() error {
	if c.GitHub.GraphQLEndpoint == "" {
		return fmt.Errorf("GitHub GraphQL endpoint cannot be empty")
	}
	if c.Defaults.PullRequestLimit <= 0 {
		return fmt.Errorf("pull request limit must be positive, got %d: %w", c.Defaults.PullRequestLimit, relaierrors.ErrInvalidLimit)
	}
	if c.Concurrency.Repository <= 0 {
		return fmt.Errorf("repository concurrency must be positive, got: %d", c.Concurrency.Repository)
	}
	if c.Concurrency.Member <= 0 {
		return fmt.Errorf("member concurrency must be positive, got: %d", c.Concurrency.Member)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts cannot be negative")
	}
	switch c.Logging.Level {
	case "dev", "prod":
	default:
		return fmt.Errorf("unknown logging level %q: expected dev or prod", c.Logging.Level)
	}
	return nil
}

// ServerTimeouts returns the read and write timeouts, falling back to the
// defaults for zero values.
func (c *Config) ServerTimeouts() (read, write time.Duration) {
	def := DefaultConfig().Server
	read, write = c.Server.ReadTimeout, c.Server.WriteTimeout
	if read == 0 {
		read = def.ReadTimeout
	}
	if write == 0 {
		write = def.WriteTimeout
	}
	return read, write
}
