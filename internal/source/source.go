// Package source fetches pull requests, either from the GitHub CLI or from
// a local fixture file, and feeds results to the UI through the event bus.
package source

import (
	"context"
	"errors"

	"prgrip/internal/domain"
)

// ErrNotFound is returned when a pull request number is unknown to a source.
var ErrNotFound = errors.New("pull request not found")

// Source lists pull requests and fetches their diffs
type Source interface {
	List(ctx context.Context, q domain.Query) ([]domain.PullRequest, error)
	Diff(ctx context.Context, repo string, number int) (string, error)
}

// filter applies state, search and limit locally
func filter(prs []domain.PullRequest, q domain.Query) []domain.PullRequest {
	out := make([]domain.PullRequest, 0, len(prs))
	for i := range prs {
		if !prs[i].Matches(q.State, q.Search) {
			continue
		}
		out = append(out, prs[i])
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out
}
