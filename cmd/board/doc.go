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

// Package main implements the sirseer-board command-line interface.
// It gathers the open pull requests of a team, from the repositories the
// team owns and from the pull requests its members authored anywhere in
// the organization, and sorts them into review buckets.
//
// The CLI supports:
//   - Resolving a team from an entity catalog, or naming repositories and
//     members directly with --repo and --member
//   - Display filters (team, draft) and NDJSON output to stdout or a file
//   - Per-run metadata files
//   - Serving boards over HTTP with the serve command
//
// Usage:
//
//	sirseer-board team [name] [flags]
//	sirseer-board serve [flags]
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	sirseer-board team platform --filter team --output board.ndjson
//	sirseer-board team --repo acme/gateway --member alice --org acme
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication/authorization error
//   - 3: Network error
//   - 4: Invalid input (repository, limit, filter or unknown team)
package main
