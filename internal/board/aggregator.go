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

package board

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	relaierrors "github.com/sirseerhq/sirseer-board/internal/errors"
	"github.com/sirseerhq/sirseer-board/internal/giterror"
	"github.com/sirseerhq/sirseer-board/internal/github"
	"github.com/sirseerhq/sirseer-board/internal/metadata"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Default per-batch caps on in-flight detail fetches. Member batches reach
// across many repositories, so they get the lower cap.
const (
	DefaultRepositoryConcurrency = 5
	DefaultMemberConcurrency     = 3
)

// BatchKind tells repository batches from member batches.
type BatchKind string

const (
	BatchRepository BatchKind = "repository"
	BatchMember     BatchKind = "member"
)

// BatchFailure describes a batch that contributed nothing to a run.
type BatchFailure struct {
	Kind     BatchKind         `json:"kind"`
	Target   string            `json:"target"`
	Category giterror.Category `json:"category"`
	Message  string            `json:"error"`
	Err      error             `json:"-"`
}

// Result is the outcome of one aggregation run.
type Result struct {
	ID       string                `json:"id"`
	Buckets  []Bucket              `json:"buckets"`
	Batches  int                   `json:"batches"`
	Failures []BatchFailure        `json:"failures,omitempty"`
	Metadata *metadata.RunMetadata `json:"metadata,omitempty"`
}

// Total returns the number of pull requests across all buckets.
func (r *Result) Total() int {
	n := 0
	for _, b := range r.Buckets {
		n += len(b.Content)
	}
	return n
}

// Partial reports whether at least one batch failed.
func (r *Result) Partial() bool {
	return len(r.Failures) > 0
}

// AllFailed reports whether every batch failed, which makes an empty board
// distinguishable from a team without open pull requests.
func (r *Result) AllFailed() bool {
	return r.Batches > 0 && len(r.Failures) == r.Batches
}

// Options configures an Aggregator.
type Options struct {
	Limit                 int
	RepositoryConcurrency int
	MemberConcurrency     int
	Logger                *zap.Logger
	Version               string
}

// Option mutates Options.
type Option func(*Options)

// WithLimit sets how many open pull requests are listed per repository and per member.
func WithLimit(limit int) Option {
	return func(o *Options) { o.Limit = limit }
}

// WithConcurrency sets the per-batch detail fetch caps. Non-positive values keep the defaults.
func WithConcurrency(repository, member int) Option {
	return func(o *Options) {
		if repository > 0 {
			o.RepositoryConcurrency = repository
		}
		if member > 0 {
			o.MemberConcurrency = member
		}
	}
}

// WithLogger sets the logger used to report batch failures.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithVersion sets the version recorded in run metadata.
func WithVersion(version string) Option {
	return func(o *Options) { o.Version = version }
}

// Aggregator runs the bounded fan-out over a team's repositories and members.
type Aggregator struct {
	client github.Client
	opts   Options
	log    *zap.Logger
}

// NewAggregator creates an Aggregator over client.
func NewAggregator(client github.Client, opts ...Option) *Aggregator {
	o := Options{
		Limit:                 DefaultPullRequestLimit,
		RepositoryConcurrency: DefaultRepositoryConcurrency,
		MemberConcurrency:     DefaultMemberConcurrency,
		Logger:                zap.NewNop(),
		Version:               "dev",
	}
	for _, opt := range opts {
		opt(&o)
	}
	// Negative limits are kept so Aggregate can reject them.
	if o.Limit == 0 {
		o.Limit = DefaultPullRequestLimit
	}

	return &Aggregator{
		client: client,
		opts:   o,
		log:    o.Logger.Named("aggregator"),
	}
}

// batch is the fetch-and-detail chain of one target.
type batch struct {
	kind   BatchKind
	target string
	run    func(ctx context.Context, f *Fetcher) ([]github.PullRequestDetail, error)
}

// outcome is what a settled batch left in its slot.
type outcome struct {
	prs []github.PullRequestDetail
	err error
}

// detailRef addresses one pull request to fetch in detail.
type detailRef struct {
	target Target
	number int
}

// Aggregate runs one aggregation for team. Only invalid input is returned as
// an error, before any request is made; provider failures are confined to
// their batch and reported in Result.Failures.
func (a *Aggregator) Aggregate(ctx context.Context, team Team) (*Result, error) {
	if a.opts.Limit < 0 {
		return nil, fmt.Errorf("limit %d: %w", a.opts.Limit, relaierrors.ErrInvalidLimit)
	}

	batches, err := a.plan(team)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	tracker := metadata.New()
	fetcher := NewFetcher(a.client, tracker)
	log := a.log.With(zap.String("run_id", runID))

	log.Debug("starting aggregation",
		zap.Int("repositories", len(team.Repositories)),
		zap.Int("members", len(team.Members)),
		zap.String("organization", team.Organization),
	)

	// Every batch writes only its own slot, so the merge below needs no locking.
	outcomes := make([]outcome, len(batches))
	var g errgroup.Group
	for i, b := range batches {
		g.Go(func() error {
			prs, err := settle(ctx, fetcher, b)
			outcomes[i] = outcome{prs: prs, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{ID: runID, Batches: len(batches)}
	var merged []github.PullRequestDetail
	for i, o := range outcomes {
		tracker.RecordBatch(o.err != nil)
		if o.err != nil {
			failure := BatchFailure{
				Kind:     batches[i].kind,
				Target:   batches[i].target,
				Category: giterror.Categorize(o.err),
				Message:  o.err.Error(),
				Err:      o.err,
			}
			result.Failures = append(result.Failures, failure)
			log.Warn("batch failed",
				zap.String("kind", string(failure.Kind)),
				zap.String("target", failure.Target),
				zap.String("category", string(failure.Category)),
				zap.Error(o.err),
			)
			continue
		}
		merged = append(merged, o.prs...)
	}

	unique := dedupe(merged)
	tracker.RecordPullRequests(len(unique), len(merged)-len(unique))
	result.Buckets = Classify(unique)
	result.Metadata = tracker.GenerateMetadata(a.opts.Version, runID, metadata.RunParams{
		Team:                  team.Name,
		Organization:          team.Organization,
		Repositories:          len(team.Repositories),
		Members:               len(team.Members),
		PullRequestLimit:      a.opts.Limit,
		RepositoryConcurrency: a.opts.RepositoryConcurrency,
		MemberConcurrency:     a.opts.MemberConcurrency,
	})

	log.Info("aggregation complete",
		zap.Int("pull_requests", len(unique)),
		zap.Int("duplicates", len(merged)-len(unique)),
		zap.Int("batches", len(batches)),
		zap.Int("failed_batches", len(result.Failures)),
		zap.Int("api_calls", result.Metadata.Results.APICallCount),
	)

	return result, nil
}

// plan validates the team and builds the batches in merge order:
// repositories first, then members.
func (a *Aggregator) plan(team Team) ([]batch, error) {
	repositories := uniqueNames(team.Repositories)
	members := uniqueNames(team.Members)

	batches := make([]batch, 0, len(repositories)+len(members))
	for _, repo := range repositories {
		target, err := ParseTarget(repo)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch{
			kind:   BatchRepository,
			target: target.String(),
			run: func(ctx context.Context, f *Fetcher) ([]github.PullRequestDetail, error) {
				return a.repositoryBatch(ctx, f, target)
			},
		})
	}
	for _, member := range members {
		batches = append(batches, batch{
			kind:   BatchMember,
			target: member,
			run: func(ctx context.Context, f *Fetcher) ([]github.PullRequestDetail, error) {
				return a.memberBatch(ctx, f, member, team.Organization)
			},
		})
	}
	return batches, nil
}

func (a *Aggregator) repositoryBatch(ctx context.Context, f *Fetcher, target Target) ([]github.PullRequestDetail, error) {
	summaries, err := f.RepositoryPullRequests(ctx, target, a.opts.Limit)
	if err != nil {
		return nil, err
	}

	refs := make([]detailRef, 0, len(summaries))
	for _, s := range summaries {
		refs = append(refs, detailRef{target: target, number: s.Number})
	}
	return fetchDetails(ctx, f, refs, a.opts.RepositoryConcurrency)
}

func (a *Aggregator) memberBatch(ctx context.Context, f *Fetcher, member, organization string) ([]github.PullRequestDetail, error) {
	summaries, err := f.MemberPullRequests(ctx, member, organization, a.opts.Limit)
	if err != nil {
		return nil, err
	}

	refs := make([]detailRef, 0, len(summaries))
	for _, s := range summaries {
		if s.Repository == nil {
			return nil, fmt.Errorf("search result #%d of %s has no repository", s.Number, member)
		}
		refs = append(refs, detailRef{
			target: Target{Owner: s.Repository.Owner, Name: s.Repository.Name},
			number: s.Number,
		})
	}
	return fetchDetails(ctx, f, refs, a.opts.MemberConcurrency)
}

// fetchDetails fetches every ref with at most limit requests in flight. The
// semaphore belongs to this call only. Details keep the order of refs; any
// failed fetch fails the whole batch.
func fetchDetails(ctx context.Context, f *Fetcher, refs []detailRef, limit int) ([]github.PullRequestDetail, error) {
	sem := semaphore.NewWeighted(int64(limit))
	details := make([]github.PullRequestDetail, len(refs))

	var g errgroup.Group
	for i, ref := range refs {
		if err := sem.Acquire(ctx, 1); err != nil {
			_ = g.Wait()
			return nil, err
		}
		g.Go(func() (err error) {
			defer sem.Release(1)
			defer recoverInto(&err)

			d, err := f.Detail(ctx, ref.target, ref.number)
			if err != nil {
				return err
			}
			details[i] = *d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

// settle runs one batch and turns a panic into an error.
func settle(ctx context.Context, f *Fetcher, b batch) (prs []github.PullRequestDetail, err error) {
	defer recoverInto(&err)
	return b.run(ctx, f)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic: %v", r)
	}
}

// dedupe keeps the first occurrence of every pull request ID.
func dedupe(prs []github.PullRequestDetail) []github.PullRequestDetail {
	seen := make(map[string]struct{}, len(prs))
	unique := make([]github.PullRequestDetail, 0, len(prs))
	for _, pr := range prs {
		if _, ok := seen[pr.ID]; ok {
			continue
		}
		seen[pr.ID] = struct{}{}
		unique = append(unique, pr)
	}
	return unique
}
