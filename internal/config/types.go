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

// Package config types define the configuration structures used throughout
// sirseer-board. These types represent settings that can be loaded from
// YAML configuration files, a .env file, environment variables, or
// command-line flags.
package config

import "time"

// Config represents the complete configuration for sirseer-board.
type Config struct {
	GitHub      GitHubConfig      `yaml:"github"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// GitHubConfig contains the GraphQL endpoint and the name of the environment
// variable holding the token. A custom endpoint targets GitHub Enterprise.
type GitHubConfig struct {
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	TokenEnv        string `yaml:"token_env"`
}

// DefaultsConfig contains settings that apply to every aggregation run
// unless overridden by command-line flags.
type DefaultsConfig struct {
	// PullRequestLimit is how many open pull requests are listed per
	// repository and per member.
	PullRequestLimit int    `yaml:"pull_request_limit"`
	MetadataDir      string `yaml:"metadata_dir"`
}

// ConcurrencyConfig caps in-flight detail fetches inside one batch.
type ConcurrencyConfig struct {
	Repository int `yaml:"repository"`
	Member     int `yaml:"member"`
}

// CatalogConfig locates the entity catalog used to resolve teams.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig controls the HTTP board.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig selects the logger preset: "dev" or "prod".
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with defaults suitable for public GitHub.com.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
		},
		Defaults: DefaultsConfig{
			PullRequestLimit: 10,
		},
		Concurrency: ConcurrencyConfig{
			Repository: 5,
			Member:     3,
		},
		Catalog: CatalogConfig{
			Path: "catalog.yaml",
		},
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "prod",
		},
	}
}
