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

package github

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	relaierrors "github.com/sirseerhq/sirseer-board/internal/errors"
)

// MockClient is an in-memory implementation of the Client interface for testing.
// It paginates configured data with numeric cursors, can inject per-target
// errors and latency, and records how many detail fetches were in flight.
type MockClient struct {
	mu sync.Mutex

	// Open pull requests keyed by "owner/name"
	Repositories map[string][]PullRequestSummary

	// Open pull requests keyed by author login
	Authored map[string][]PullRequestSummary

	// Detail records keyed by DetailKey
	Details map[string]PullRequestDetail

	// Errors keyed by "owner/name", "user:<login>" or DetailKey
	Errors map[string]error

	// Latency is applied to every call before it returns
	Latency time.Duration

	// Track calls for verification
	ListCalls   []FetchOptions
	SearchCalls []FetchOptions
	DetailCalls int

	inFlight       map[string]int
	maxInFlight    map[string]int
	totalInFlight  int
	maxTotalFlight int
}

// DetailKey builds the key used by MockClient.Details and MockClient.Errors.
func DetailKey(owner, repo string, number int) string {
	return fmt.Sprintf("%s/%s#%d", owner, repo, number)
}

// NewMockClient creates an empty mock client.
func NewMockClient() *MockClient {
	return &MockClient{
		Repositories: make(map[string][]PullRequestSummary),
		Authored:     make(map[string][]PullRequestSummary),
		Details:      make(map[string]PullRequestDetail),
		Errors:       make(map[string]error),
		inFlight:     make(map[string]int),
		maxInFlight:  make(map[string]int),
	}
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithRepository registers open pull requests for a repository along with their details.
// Details without an ID get one derived from the repository and number.
func WithRepository(owner, repo string, details ...PullRequestDetail) MockClientOption {
	return func(m *MockClient) {
		key := owner + "/" + repo
		for _, d := range details {
			d = m.normalize(owner, repo, d)
			m.Repositories[key] = append(m.Repositories[key], PullRequestSummary{Number: d.Number})
		}
	}
}

// WithAuthored registers open pull requests authored by login in owner/repo.
func WithAuthored(login, owner, repo string, details ...PullRequestDetail) MockClientOption {
	return func(m *MockClient) {
		for _, d := range details {
			d = m.normalize(owner, repo, d)
			m.Authored[login] = append(m.Authored[login], PullRequestSummary{
				Number:     d.Number,
				Repository: &RepositoryRef{Owner: owner, Name: repo},
			})
		}
	}
}

// WithError makes every call against key fail with err.
func WithError(key string, err error) MockClientOption {
	return func(m *MockClient) {
		m.Errors[key] = err
	}
}

// WithLatency delays every call by d.
func WithLatency(d time.Duration) MockClientOption {
	return func(m *MockClient) {
		m.Latency = d
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}

func (m *MockClient) normalize(owner, repo string, d PullRequestDetail) PullRequestDetail {
	if d.ID == "" {
		d.ID = DetailKey(owner, repo, d.Number)
	}
	if d.Repository.Name == "" {
		d.Repository = RepositoryRef{Owner: owner, Name: repo}
	}
	m.Details[DetailKey(owner, repo, d.Number)] = d
	return d
}

// FetchOpenPullRequests implements the Client interface
func (m *MockClient) FetchOpenPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) (*PullRequestPage, error) {
	key := owner + "/" + repo

	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, opts)
	items, ok := m.Repositories[key]
	err := m.Errors[key]
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("repository '%s' not found: %w", key, relaierrors.ErrRepoNotFound)
	}

	return paginate(items, opts)
}

// SearchOpenPullRequests implements the Client interface. The org argument
// filters registered results by repository owner.
func (m *MockClient) SearchOpenPullRequests(ctx context.Context, author, org string, opts FetchOptions) (*PullRequestPage, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, opts)
	all := m.Authored[author]
	err := m.Errors["user:"+author]
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	items := make([]PullRequestSummary, 0, len(all))
	for _, s := range all {
		if org == "" || s.Repository.Owner == org {
			items = append(items, s)
		}
	}

	return paginate(items, opts)
}

// FetchPullRequestDetail implements the Client interface
func (m *MockClient) FetchPullRequestDetail(ctx context.Context, owner, repo string, number int) (*PullRequestDetail, error) {
	repoKey := owner + "/" + repo
	key := DetailKey(owner, repo, number)

	m.mu.Lock()
	m.DetailCalls++
	m.inFlight[repoKey]++
	m.maxInFlight[repoKey] = max(m.maxInFlight[repoKey], m.inFlight[repoKey])
	m.totalInFlight++
	m.maxTotalFlight = max(m.maxTotalFlight, m.totalInFlight)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight[repoKey]--
		m.totalInFlight--
		m.mu.Unlock()
	}()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.Errors[key]; ok {
		return nil, err
	}
	detail, ok := m.Details[key]
	if !ok {
		return nil, fmt.Errorf("pull request %s not found: %w", key, relaierrors.ErrRepoNotFound)
	}
	return &detail, nil
}

// MaxInFlight returns the highest number of concurrent detail fetches
// observed for the repository "owner/name".
func (m *MockClient) MaxInFlight(repo string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight[repo]
}

// MaxTotalInFlight returns the highest number of concurrent detail fetches
// observed across all repositories.
func (m *MockClient) MaxTotalInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxTotalFlight
}

func (m *MockClient) wait(ctx context.Context) error {
	if m.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(m.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// paginate slices items using the decimal offset carried in opts.After.
func paginate(items []PullRequestSummary, opts FetchOptions) (*PullRequestPage, error) {
	start := 0
	if opts.After != "" {
		n, err := strconv.Atoi(opts.After)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", opts.After, err)
		}
		start = n
	}
	if start > len(items) {
		start = len(items)
	}

	end := start + opts.pageSize()
	if end > len(items) {
		end = len(items)
	}

	page := &PullRequestPage{
		PullRequests: append([]PullRequestSummary(nil), items[start:end]...),
		HasNextPage:  end < len(items),
	}
	if end > start {
		page.EndCursor = strconv.Itoa(end)
	}
	return page, nil
}
