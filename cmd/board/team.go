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
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirseerhq/sirseer-board/internal/board"
	"github.com/sirseerhq/sirseer-board/internal/catalog"
	"github.com/sirseerhq/sirseer-board/internal/config"
	"github.com/sirseerhq/sirseer-board/internal/metadata"
	"github.com/sirseerhq/sirseer-board/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// teamOptions holds the flags of the team command.
type teamOptions struct {
	repositories []string
	members      []string
	organization string
	limit        int
	filters      []string
	outputFile   string
	metadataDir  string
	token        string
	catalogPath  string
	timeout      time.Duration
}

func newTeamCommand(flags *globalFlags) *cobra.Command {
	var opts teamOptions

	cmd := &cobra.Command{
		Use:   "team [name]",
		Short: "Aggregate the open pull requests of a team",
		Long: `Aggregate the open pull requests of a team and output them in NDJSON format,
one line per pull request, in bucket order.

The team is either resolved by name from the entity catalog, or given
directly with --repo <org>/<repo> and --member <login> (both repeatable).
Repositories and members given as flags are added to a catalog team.

Authentication is required via GitHub token:
  - Use --token flag to provide token directly
  - Or set GITHUB_TOKEN environment variable`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			applyTeamFlags(cmd, &opts, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			return runTeam(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, name, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.repositories, "repo", nil, "Repository in <org>/<repo> format (repeatable)")
	cmd.Flags().StringSliceVar(&opts.members, "member", nil, "GitHub login of a team member (repeatable)")
	cmd.Flags().StringVar(&opts.organization, "org", "", "Organization to search member pull requests in")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Open pull requests listed per repository and per member (default from config: 10)")
	cmd.Flags().StringSliceVar(&opts.filters, "filter", nil, "Display filters: team, draft")
	cmd.Flags().StringVar(&opts.outputFile, "output", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&opts.metadataDir, "metadata-dir", "", "Directory to write run metadata to")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub personal access token (overrides GITHUB_TOKEN env var)")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "Path to the entity catalog")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Overall timeout of the run")

	return cmd
}

// applyTeamFlags copies explicitly set flags over the loaded configuration.
func applyTeamFlags(cmd *cobra.Command, opts *teamOptions, cfg *config.Config) {
	if cmd.Flags().Changed("limit") {
		cfg.Defaults.PullRequestLimit = opts.limit
	}
	if opts.metadataDir != "" {
		cfg.Defaults.MetadataDir = opts.metadataDir
	}
	if opts.catalogPath != "" {
		cfg.Catalog.Path = opts.catalogPath
	}
}

// runTeam executes the team command
func runTeam(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, name string, opts teamOptions) error {
	filters, err := board.ParseFilters(opts.filters)
	if err != nil {
		return err
	}

	team, err := resolveTeam(cfg, name, opts)
	if err != nil {
		return err
	}

	token, err := resolveToken(opts.token, cfg)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Create output writer
	var writer output.RecordWriter
	if opts.outputFile == "" {
		writer = output.NewWriter(stdout)
	} else {
		fileWriter, fErr := output.NewFileWriter(opts.outputFile)
		if fErr != nil {
			return fmt.Errorf("failed to create output file: %w", fErr)
		}
		writer = fileWriter
	}
	defer writer.Close()

	fmt.Fprintf(stderr, "Aggregating pull requests for %s...\n", describeTeam(team))

	b, err := board.AggregateTeamPullRequests(ctx, newClient(token, cfg.GitHub.GraphQLEndpoint), team,
		board.WithLimit(cfg.Defaults.PullRequestLimit),
		board.WithConcurrency(cfg.Concurrency.Repository, cfg.Concurrency.Member),
		board.WithLogger(logger),
		board.WithVersion(version),
	)
	if err != nil {
		return err
	}
	result := b.PullRequests()

	buckets := result.Display(team.Repositories, team.Members, filters)
	if err := output.WriteResult(writer, result.ID, buckets); err != nil {
		return err
	}

	if cfg.Defaults.MetadataDir != "" {
		path, err := metadata.SaveMetadata(result.Metadata, cfg.Defaults.MetadataDir)
		if err != nil {
			return fmt.Errorf("failed to save metadata: %w", err)
		}
		logger.Debug("metadata saved", zap.String("path", path))
	}

	printSummary(stderr, result, buckets)

	if result.AllFailed() {
		return fmt.Errorf("all %d batches failed: %w", result.Batches, result.Failures[0].Err)
	}
	return nil
}

// resolveTeam builds the team from the catalog when a name is given, then
// adds repositories, members and organization from flags.
func resolveTeam(cfg *config.Config, name string, opts teamOptions) (board.Team, error) {
	var team board.Team
	if name != "" {
		c, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return board.Team{}, err
		}
		if team, err = c.ResolveTeam(name); err != nil {
			return board.Team{}, err
		}
	}

	team.Repositories = append(team.Repositories, opts.repositories...)
	team.Members = append(team.Members, opts.members...)
	if opts.organization != "" {
		team.Organization = opts.organization
	}

	if len(team.Repositories) == 0 && len(team.Members) == 0 {
		return board.Team{}, fmt.Errorf("nothing to aggregate. Name a catalog team or use --repo/--member")
	}
	return team, nil
}

func describeTeam(team board.Team) string {
	if team.Name != "" {
		return team.Name
	}
	return fmt.Sprintf("%d repositories and %d members", len(team.Repositories), len(team.Members))
}

// printSummary reports bucket sizes and failed batches on stderr.
func printSummary(w io.Writer, result *board.Result, buckets []board.Bucket) {
	total := 0
	parts := make([]string, 0, len(buckets))
	for _, b := range buckets {
		total += len(b.Content)
		parts = append(parts, fmt.Sprintf("%s: %d", strings.ToLower(b.Label), len(b.Content)))
	}

	if total == 0 {
		fmt.Fprintln(w, "No open pull requests found")
	} else {
		fmt.Fprintf(w, "Found %d open pull requests (%s)\n", total, strings.Join(parts, ", "))
	}

	for _, f := range result.Failures {
		fmt.Fprintf(w, "Warning: %s %s skipped (%s): %s\n", f.Kind, f.Target, f.Category, f.Message)
	}
}
