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
	"net/http"
	"time"

	"github.com/shurcooL/graphql"
	relaierrors "github.com/sirseerhq/sirseer-board/internal/errors"
	"github.com/sirseerhq/sirseer-board/internal/giterror"
)

// latestReviewsLimit bounds the reviews fetched per pull request. GitHub
// returns at most one latest review per reviewer.
const latestReviewsLimit = 50

// GraphQLClient implements the GitHub Client interface using GraphQL API.
type GraphQLClient struct {
	client    *graphql.Client
	inspector giterror.Inspector
}

// NewGraphQLClient creates a new GitHub GraphQL client with the provided token and endpoint.
// The client is configured with:
//   - Authentication via the provided token
//   - Custom GraphQL endpoint URL (e.g., for GitHub Enterprise)
//   - Response size limiting to prevent memory issues
//   - User-Agent header for API compliance
//   - Connection pooling sized for concurrent detail fetches
func NewGraphQLClient(token string, endpoint string) *GraphQLClient {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return newGraphQLClient(endpoint, &http.Client{
		Transport: &authTransport{
			token: token,
			base:  transport,
		},
	})
}

func newGraphQLClient(endpoint string, httpClient *http.Client) *GraphQLClient {
	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, httpClient),
		inspector: giterror.NewInspector(),
	}
}

// FetchOpenPullRequests fetches a page of open pull request numbers from the specified repository.
func (c *GraphQLClient) FetchOpenPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) (*PullRequestPage, error) {
	var query struct {
		Repository struct {
			PullRequests struct {
				PageInfo struct {
					HasNextPage graphql.Boolean
					EndCursor   graphql.String
				}
				Nodes []struct {
					Number graphql.Int
				}
			} `graphql:"pullRequests(states: OPEN, first: $first, after: $after)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	variables := map[string]interface{}{
		"owner": graphql.String(owner),
		"name":  graphql.String(repo),
		"first": graphql.Int(int32(opts.pageSize())), // #nosec G115 - capped at MaxPageSize
		"after": cursor(opts.After),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, owner+"/"+repo)
	}

	conn := query.Repository.PullRequests
	page := &PullRequestPage{
		HasNextPage:  bool(conn.PageInfo.HasNextPage),
		EndCursor:    string(conn.PageInfo.EndCursor),
		PullRequests: make([]PullRequestSummary, 0, len(conn.Nodes)),
	}
	for _, node := range conn.Nodes {
		page.PullRequests = append(page.PullRequests, PullRequestSummary{Number: int(node.Number)})
	}

	return page, nil
}

// SearchOpenPullRequests fetches a page of open pull requests authored by author
// through the search API. An empty org searches across every organization the
// token can see.
func (c *GraphQLClient) SearchOpenPullRequests(ctx context.Context, author, org string, opts FetchOptions) (*PullRequestPage, error) {
	var query struct {
		Search struct {
			PageInfo struct {
				HasNextPage graphql.Boolean
				EndCursor   graphql.String
			}
			Nodes []struct {
				PullRequest struct {
					Number     graphql.Int
					Repository struct {
						Name  graphql.String
						Owner struct {
							Login graphql.String
						}
					}
				} `graphql:"... on PullRequest"`
			}
		} `graphql:"search(query: $query, type: ISSUE, first: $first, after: $after)"`
	}

	variables := map[string]interface{}{
		"query": graphql.String(buildAuthorSearchQuery(author, org)),
		"first": graphql.Int(int32(opts.pageSize())), // #nosec G115 - capped at MaxPageSize
		"after": cursor(opts.After),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, "user "+author)
	}

	page := &PullRequestPage{
		HasNextPage:  bool(query.Search.PageInfo.HasNextPage),
		EndCursor:    string(query.Search.PageInfo.EndCursor),
		PullRequests: make([]PullRequestSummary, 0, len(query.Search.Nodes)),
	}
	for _, node := range query.Search.Nodes {
		pr := node.PullRequest
		// Search can return issues; those decode as zero-valued fragments.
		if pr.Number == 0 {
			continue
		}
		page.PullRequests = append(page.PullRequests, PullRequestSummary{
			Number: int(pr.Number),
			Repository: &RepositoryRef{
				Owner: string(pr.Repository.Owner.Login),
				Name:  string(pr.Repository.Name),
			},
		})
	}

	return page, nil
}

// FetchPullRequestDetail fetches the board record of one pull request.
func (c *GraphQLClient) FetchPullRequestDetail(ctx context.Context, owner, repo string, number int) (*PullRequestDetail, error) {
	var query struct {
		Repository struct {
			PullRequest struct {
				ID           graphql.String
				Number       graphql.Int
				Title        graphql.String
				CreatedAt    time.Time
				LastEditedAt *time.Time
				URL          graphql.String
				IsDraft      graphql.Boolean
				Author       struct {
					Login     graphql.String
					AvatarURL graphql.String `graphql:"avatarUrl"`
				}
				LatestReviews struct {
					Nodes []struct {
						State  graphql.String
						Author struct {
							Login     graphql.String
							AvatarURL graphql.String `graphql:"avatarUrl"`
						}
					}
				} `graphql:"latestReviews(first: $reviews)"`
				Repository struct {
					Name  graphql.String
					Owner struct {
						Login graphql.String
					}
				}
			} `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	variables := map[string]interface{}{
		"owner":   graphql.String(owner),
		"name":    graphql.String(repo),
		"number":  graphql.Int(int32(number)), // #nosec G115 - pull request numbers fit in int32
		"reviews": graphql.Int(latestReviewsLimit),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, fmt.Sprintf("%s/%s#%d", owner, repo, number))
	}

	n := query.Repository.PullRequest
	detail := &PullRequestDetail{
		ID:           string(n.ID),
		Number:       int(n.Number),
		Title:        string(n.Title),
		CreatedAt:    n.CreatedAt,
		LastEditedAt: n.LastEditedAt,
		URL:          string(n.URL),
		IsDraft:      bool(n.IsDraft),
		Author: Author{
			Login:     string(n.Author.Login),
			AvatarURL: string(n.Author.AvatarURL),
		},
		Repository: RepositoryRef{
			Owner: string(n.Repository.Owner.Login),
			Name:  string(n.Repository.Name),
		},
		LatestReviews: make([]Review, 0, len(n.LatestReviews.Nodes)),
	}
	for _, r := range n.LatestReviews.Nodes {
		detail.LatestReviews = append(detail.LatestReviews, Review{
			State: ReviewState(r.State),
			Author: Author{
				Login:     string(r.Author.Login),
				AvatarURL: string(r.Author.AvatarURL),
			},
		})
	}

	return detail, nil
}

// mapError maps GraphQL errors to our domain errors with actionable messages
func (c *GraphQLClient) mapError(err error, target string) error {
	if err == nil {
		return nil
	}

	// Check rate limit first, as GitHub reports secondary limits as 403
	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("GitHub API rate limit exceeded while querying %s: %w", target, relaierrors.ErrRateLimit)
	}

	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("GitHub API authentication failed. Please provide a valid token via --token flag or GITHUB_TOKEN environment variable: %w", relaierrors.ErrInvalidToken)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("%s not found. Please check the name and your access permissions: %w", target, relaierrors.ErrRepoNotFound)
	}

	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error querying %s: %v: %w", target, err, relaierrors.ErrNetworkFailure)
	}

	return fmt.Errorf("failed to query %s: %w", target, err)
}

// cursor converts an end cursor to a nullable GraphQL variable.
func cursor(after string) *graphql.String {
	if after == "" {
		return nil
	}
	s := graphql.String(after)
	return &s
}
