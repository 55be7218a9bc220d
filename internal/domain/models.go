package domain

import (
	"strings"
	"time"
)

// PRState is the lifecycle state of a pull request as reported by GitHub
type PRState string

const (
	StateOpen   PRState = "open"
	StateClosed PRState = "closed"
	StateMerged PRState = "merged"
	StateAll    PRState = "all"
)

// ParseState normalizes a state string. Unknown values map to StateOpen.
func ParseState(s string) PRState {
	switch PRState(strings.ToLower(strings.TrimSpace(s))) {
	case StateClosed:
		return StateClosed
	case StateMerged:
		return StateMerged
	case StateAll:
		return StateAll
	default:
		return StateOpen
	}
}

// Next cycles open -> closed -> merged -> all -> open
func (s PRState) Next() PRState {
	switch s {
	case StateOpen:
		return StateClosed
	case StateClosed:
		return StateMerged
	case StateMerged:
		return StateAll
	default:
		return StateOpen
	}
}

// PullRequest is a pull request as returned by a search
type PullRequest struct {
	Number    int       `toml:"number"`
	Title     string    `toml:"title"`
	Author    string    `toml:"author"`
	State     PRState   `toml:"state"`
	Draft     bool      `toml:"draft"`
	URL       string    `toml:"url"`
	HeadRef   string    `toml:"head"`
	BaseRef   string    `toml:"base"`
	Labels    []string  `toml:"labels"`
	Body      string    `toml:"body"`
	CreatedAt time.Time `toml:"created_at"`
	UpdatedAt time.Time `toml:"updated_at"`
	Comments  int       `toml:"comments"`
	Additions int       `toml:"additions"`
	Deletions int       `toml:"deletions"`
}

// Matches reports whether the pull request satisfies the state filter and
// every search term. See MatchesTerm for the term syntax.
func (pr *PullRequest) Matches(state PRState, search string) bool {
	if state != "" && state != StateAll && pr.State != state {
		return false
	}
	for _, term := range strings.Fields(strings.ToLower(search)) {
		if !pr.MatchesTerm(term) {
			return false
		}
	}
	return true
}

// Query describes a pull request search
type Query struct {
	Repo   string  // owner/name; empty means the repository of the working directory
	State  PRState
	Search string
	Limit  int
}
