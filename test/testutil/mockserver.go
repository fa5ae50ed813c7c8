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

// Package testutil provides common test helpers for sirseer-board: a fake
// GitHub GraphQL endpoint, pull request builders, CLI runners and
// assertions on NDJSON and metadata output.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirseerhq/sirseer-board/internal/github"
)

// Query kinds recognized by GitHubServer.
const (
	QueryList   = "list"
	QuerySearch = "search"
	QueryDetail = "detail"
)

// GraphQLRequest is the body of a GraphQL POST.
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// GitHubServer is a fake GitHub GraphQL endpoint serving the three queries
// the board issues: open pull request listings, author searches and pull
// request details. Cursors are decimal offsets.
type GitHubServer struct {
	*httptest.Server

	mu       sync.Mutex
	prs      map[string][]github.PullRequestDetail // by "owner/name"
	failures map[string]int                        // status by "owner/name" or "user:<login>"
	requests []GraphQLRequest
	kinds    map[string]int
	tokens   []string
}

// NewGitHubServer starts a fake GitHub serving prs. It is closed when the
// test ends.
func NewGitHubServer(t *testing.T, prs ...github.PullRequestDetail) *GitHubServer {
	t.Helper()
	s := &GitHubServer{
		prs:      make(map[string][]github.PullRequestDetail),
		failures: make(map[string]int),
		kinds:    make(map[string]int),
	}
	for _, pr := range prs {
		s.Add(pr)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint returns the GraphQL endpoint URL.
func (s *GitHubServer) Endpoint() string {
	return s.Server.URL + "/graphql"
}

// Add registers an open pull request.
func (s *GitHubServer) Add(pr github.PullRequestDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pr.Repository.FullName()
	s.prs[key] = append(s.prs[key], pr)
}

// FailRepository makes listing and detail queries for owner/name answer
// with status.
func (s *GitHubServer) FailRepository(fullName string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[fullName] = status
}

// FailAuthor makes searches for login answer with status.
func (s *GitHubServer) FailAuthor(login string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures["user:"+login] = status
}

// RequestCount returns how many queries of kind were served. An empty kind
// counts every request.
func (s *GitHubServer) RequestCount(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == "" {
		return len(s.requests)
	}
	return s.kinds[kind]
}

// Requests returns a copy of the received requests.
func (s *GitHubServer) Requests() []GraphQLRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]GraphQLRequest(nil), s.requests...)
}

// Tokens returns the bearer tokens received, in order.
func (s *GitHubServer) Tokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tokens...)
}

func (s *GitHubServer) handle(w http.ResponseWriter, r *http.Request) {
	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	kind := classifyQuery(req.Query)

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.kinds[kind]++
	s.tokens = append(s.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	s.mu.Unlock()

	var (
		data   map[string]any
		status int
	)
	switch kind {
	case QueryList:
		data, status = s.list(req.Variables)
	case QuerySearch:
		data, status = s.search(req.Variables)
	case QueryDetail:
		data, status = s.detail(req.Variables)
	default:
		writeGraphQLError(w, "unsupported query")
		return
	}

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(http.StatusText(status)))
		return
	}
	if data == nil {
		writeGraphQLError(w, "Could not resolve to a Repository")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func classifyQuery(q string) string {
	switch {
	case strings.Contains(q, "search("):
		return QuerySearch
	case strings.Contains(q, "pullRequest(number"):
		return QueryDetail
	case strings.Contains(q, "pullRequests("):
		return QueryList
	default:
		return ""
	}
}

func (s *GitHubServer) list(vars map[string]any) (map[string]any, int) {
	key := str(vars["owner"]) + "/" + str(vars["name"])

	s.mu.Lock()
	defer s.mu.Unlock()
	if status := s.failures[key]; status != 0 {
		return nil, status
	}
	prs, ok := s.prs[key]
	if !ok {
		return nil, 0
	}

	page, hasNext, end := paginate(len(prs), vars)
	nodes := make([]map[string]any, 0, len(page))
	for _, i := range page {
		nodes = append(nodes, map[string]any{"number": prs[i].Number})
	}

	return map[string]any{
		"repository": map[string]any{
			"pullRequests": connection(nodes, hasNext, end),
		},
	}, 0
}

func (s *GitHubServer) search(vars map[string]any) (map[string]any, int) {
	author, org := parseSearchQuery(str(vars["query"]))

	s.mu.Lock()
	defer s.mu.Unlock()
	if status := s.failures["user:"+author]; status != 0 {
		return nil, status
	}

	var matches []github.PullRequestDetail
	for _, key := range sortedKeys(s.prs) {
		for _, pr := range s.prs[key] {
			if pr.Author.Login == author && (org == "" || pr.Repository.Owner == org) {
				matches = append(matches, pr)
			}
		}
	}

	page, hasNext, end := paginate(len(matches), vars)
	nodes := make([]map[string]any, 0, len(page))
	for _, i := range page {
		nodes = append(nodes, map[string]any{
			"number": matches[i].Number,
			"repository": map[string]any{
				"name":  matches[i].Repository.Name,
				"owner": map[string]any{"login": matches[i].Repository.Owner},
			},
		})
	}

	return map[string]any{"search": connection(nodes, hasNext, end)}, 0
}

func (s *GitHubServer) detail(vars map[string]any) (map[string]any, int) {
	key := str(vars["owner"]) + "/" + str(vars["name"])
	number := num(vars["number"])

	s.mu.Lock()
	defer s.mu.Unlock()
	if status := s.failures[key]; status != 0 {
		return nil, status
	}
	for _, pr := range s.prs[key] {
		if pr.Number == number {
			return map[string]any{
				"repository": map[string]any{"pullRequest": detailNode(pr)},
			}, 0
		}
	}
	return nil, 0
}

func detailNode(pr github.PullRequestDetail) map[string]any {
	reviews := make([]map[string]any, 0, len(pr.LatestReviews))
	for _, r := range pr.LatestReviews {
		reviews = append(reviews, map[string]any{
			"state":  string(r.State),
			"author": map[string]any{"login": r.Author.Login, "avatarUrl": r.Author.AvatarURL},
		})
	}

	var lastEdited any
	if pr.LastEditedAt != nil {
		lastEdited = pr.LastEditedAt.Format(time.RFC3339)
	}

	return map[string]any{
		"id":            pr.ID,
		"number":        pr.Number,
		"title":         pr.Title,
		"createdAt":     pr.CreatedAt.Format(time.RFC3339),
		"lastEditedAt":  lastEdited,
		"url":           pr.URL,
		"isDraft":       pr.IsDraft,
		"author":        map[string]any{"login": pr.Author.Login, "avatarUrl": pr.Author.AvatarURL},
		"latestReviews": map[string]any{"nodes": reviews},
		"repository": map[string]any{
			"name":  pr.Repository.Name,
			"owner": map[string]any{"login": pr.Repository.Owner},
		},
	}
}

// paginate returns the indexes of the page addressed by the first/after
// variables, whether more remain and the end cursor.
func paginate(total int, vars map[string]any) ([]int, bool, string) {
	start := 0
	if after := str(vars["after"]); after != "" {
		start, _ = strconv.Atoi(after)
	}
	start = min(start, total)
	end := min(start+num(vars["first"]), total)

	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return idx, end < total, strconv.Itoa(end)
}

func connection(nodes []map[string]any, hasNext bool, end string) map[string]any {
	return map[string]any{
		"nodes": nodes,
		"pageInfo": map[string]any{
			"hasNextPage": hasNext,
			"endCursor":   end,
		},
	}
}

// parseSearchQuery extracts the author and org qualifiers of a search.
func parseSearchQuery(q string) (author, org string) {
	for _, field := range strings.Fields(q) {
		if v, ok := strings.CutPrefix(field, "author:"); ok {
			author = v
		}
		if v, ok := strings.CutPrefix(field, "org:"); ok {
			org = v
		}
	}
	return author, org
}

func writeGraphQLError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]any{{"message": message}},
	})
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	}))
	t.Cleanup(server.Close)
	return server
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func num(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func sortedKeys(m map[string][]github.PullRequestDetail) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
