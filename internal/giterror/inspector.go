package giterror

import (
	"context"
	"errors"
	"strings"

	relaierrors "github.com/sirseerhq/sirseer-board/internal/errors"
)

// Category is a coarse failure class used in logs and batch failure reports.
type Category string

const (
	CategoryAuth          Category = "auth"
	CategoryNotFound      Category = "not_found"
	CategoryRateLimit     Category = "rate_limit"
	CategoryNetwork       Category = "network"
	CategoryInvalidTarget Category = "invalid_target"
	CategoryCanceled      Category = "canceled"
	CategoryUnknown       Category = "unknown"
)

// Inspector provides methods for analyzing GitHub API errors.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a repository, user or pull request
	// that could not be resolved.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool
}

// GitHubErrorInspector implements Inspector. Sentinel errors in the chain are
// checked first; raw provider messages fall back to substring matching.
type GitHubErrorInspector struct{}

// NewInspector creates a new GitHubErrorInspector.
func NewInspector() Inspector {
	return &GitHubErrorInspector{}
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *GitHubErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, relaierrors.ErrInvalidToken) {
		return true
	}
	return containsAny(err, "401", "unauthorized", "forbidden", "bad credentials", "authentication")
}

// IsNotFoundError checks if the error is a not found error.
func (i *GitHubErrorInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, relaierrors.ErrRepoNotFound) {
		return true
	}
	return containsAny(err, "404", "not found", "could not resolve to a")
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *GitHubErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, relaierrors.ErrRateLimit) {
		return true
	}
	return containsAny(err, "rate limit", "429", "secondary rate")
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *GitHubErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, relaierrors.ErrNetworkFailure) {
		return true
	}
	return containsAny(err,
		"connection refused",
		"connection reset",
		"no such host",
		"timeout",
		"temporary failure",
		"dial tcp",
		"tls handshake",
		"network is unreachable",
		"eof",
	)
}

// Categorize returns the failure class of err. Rate limits are checked
// before auth because GitHub reports secondary limits with a 403.
func Categorize(err error) Category {
	if err == nil {
		return ""
	}
	if errors.Is(err, relaierrors.ErrInvalidTarget) {
		return CategoryInvalidTarget
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryCanceled
	}

	i := NewInspector()
	switch {
	case i.IsRateLimitError(err):
		return CategoryRateLimit
	case i.IsAuthError(err):
		return CategoryAuth
	case i.IsNotFoundError(err):
		return CategoryNotFound
	case i.IsNetworkError(err):
		return CategoryNetwork
	default:
		return CategoryUnknown
	}
}

func containsAny(err error, needles ...string) bool {
	msg := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}
