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
	"os/signal"
	"syscall"

	"github.com/sirseerhq/sirseer-board/internal/board"
	"github.com/sirseerhq/sirseer-board/internal/catalog"
	"github.com/sirseerhq/sirseer-board/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var (
		address     string
		token       string
		catalogPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve team boards over HTTP",
		Long: `Serve team boards over HTTP. Teams are resolved from the entity catalog
and every request runs a fresh aggregation.

Endpoints:
  GET /health
  GET /metrics
  GET /api/teams
  GET /api/teams/{team}/pull-requests?filter=team&filter=draft`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}
			if catalogPath != "" {
				cfg.Catalog.Path = catalogPath
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			tok, err := resolveToken(token, cfg)
			if err != nil {
				return err
			}

			c, err := catalog.Load(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.Logging.Level)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			srv := server.New(c, newClient(tok, cfg.GitHub.GraphQLEndpoint), logger,
				board.WithLimit(cfg.Defaults.PullRequestLimit),
				board.WithConcurrency(cfg.Concurrency.Repository, cfg.Concurrency.Member),
				board.WithVersion(version),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			read, write := cfg.ServerTimeouts()
			return srv.Run(ctx, cfg.Server.Address, read, write)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Listen address (default from config: :8080)")
	cmd.Flags().StringVar(&token, "token", "", "GitHub personal access token (overrides GITHUB_TOKEN env var)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the entity catalog")

	return cmd
}
