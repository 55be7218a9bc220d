package domain

import "strings"

// MatchesTerm checks one lower-cased search term. Terms may use the GitHub
// qualifiers author:, label:, base:, head: and is:; anything else is a
// substring of the title, author, head branch or labels.
func (pr *PullRequest) MatchesTerm(term string) bool {
	if term == "" {
		return true
	}

	if key, value, ok := strings.Cut(term, ":"); ok && value != "" {
		switch key {
		case "author":
			return strings.EqualFold(pr.Author, value)
		case "label":
			for _, l := range pr.Labels {
				if strings.EqualFold(l, value) {
					return true
				}
			}
			return false
		case "base":
			return strings.EqualFold(pr.BaseRef, value)
		case "head":
			return strings.Contains(strings.ToLower(pr.HeadRef), value)
		case "is":
			return pr.matchesIs(value)
		}
	}

	if strings.Contains(strings.ToLower(pr.Title), term) ||
		strings.Contains(strings.ToLower(pr.Author), term) ||
		strings.Contains(strings.ToLower(pr.HeadRef), term) {
		return true
	}
	for _, l := range pr.Labels {
		if strings.Contains(strings.ToLower(l), term) {
			return true
		}
	}
	return false
}

func (pr *PullRequest) matchesIs(value string) bool {
	switch value {
	case "draft":
		return pr.Draft
	case "ready":
		return !pr.Draft
	case "open", "closed", "merged":
		return pr.State == PRState(value)
	default:
		return false
	}
}
