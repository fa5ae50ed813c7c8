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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI and HTTP status codes in the server.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidToken indicates GitHub authentication failed.
	// Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrRepoNotFound indicates the specified repository does not exist or is not accessible.
	// Maps to exit code 2.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrInvalidTarget indicates a repository identifier that is not in owner/name form.
	// Maps to exit code 4.
	ErrInvalidTarget = errors.New("invalid repository target")

	// ErrInvalidLimit indicates a negative pull request limit.
	ErrInvalidLimit = errors.New("invalid pull request limit")

	// ErrInvalidFilter indicates an unknown display filter name.
	ErrInvalidFilter = errors.New("invalid display filter")

	// ErrTeamNotFound indicates the catalog has no group entity with the requested name.
	ErrTeamNotFound = errors.New("team not found")
)

// InvalidTargetError reports a repository identifier that does not split
// into exactly two non-empty segments.
type InvalidTargetError struct {
	Target string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid repository %q: expected <org>/<repo>", e.Target)
}

// Unwrap lets errors.Is match ErrInvalidTarget.
func (e *InvalidTargetError) Unwrap() error {
	return ErrInvalidTarget
}
