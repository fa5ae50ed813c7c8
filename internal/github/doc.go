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

// Package github provides a client for GitHub's GraphQL API tailored to the
// team pull request board. It exposes three queries:
//   - open pull requests of a repository (cursor paginated)
//   - open pull requests authored by a user, optionally within one organization
//     (search API, cursor paginated)
//   - the detail record of one pull request, including its latest reviews
//
// The package includes:
//   - A Client interface
//   - A GraphQL implementation using the shurcooL/graphql library
//   - A mock client with latency control and in-flight tracking for tests
//
// Basic usage:
//
//	client := github.NewGraphQLClient("your-github-token", "https://api.github.com/graphql")
//	page, err := client.FetchOpenPullRequests(ctx, "golang", "go", github.FetchOptions{
//	    PageSize: 10,
//	})
//	if err != nil {
//	    // Handle error
//	}
//	for _, pr := range page.PullRequests {
//	    detail, err := client.FetchPullRequestDetail(ctx, "golang", "go", pr.Number)
//	    // ...
//	}
package github
