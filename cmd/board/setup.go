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
	"fmt"

	"github.com/sirseerhq/sirseer-board/internal/config"
	"github.com/sirseerhq/sirseer-board/internal/github"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newClient builds the GitHub client used by commands.
var newClient = func(token, endpoint string) github.Client {
	return github.NewGraphQLClient(token, endpoint)
}

// loadConfig reads the .env file, then the configuration file and
// environment. Flags are applied by the caller before validation.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if err := config.LoadEnvFile(flags.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.verbose {
		cfg.Logging.Level = "dev"
	}
	return cfg, nil
}

// newLogger builds a zap logger for level "dev" or "prod". Both write to
// stderr so stdout stays clean for NDJSON output.
func newLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch level {
	case "dev":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "prod":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown logging level %q", level)
	}

	return cfg.Build()
}

// resolveToken returns the token from the flag, falling back to the
// configured environment variable.
func resolveToken(flagToken string, cfg *config.Config) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	if token := cfg.Token(); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("GitHub token not found. Set %s or use --token flag", cfg.GitHub.TokenEnv)
}
