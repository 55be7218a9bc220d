package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"prgrip/internal/domain"
)

// PullRequestRenderer renders rows of the pull request list
type PullRequestRenderer struct {
	styles     *Styles
	showLabels bool
}

// NewPullRequestRenderer creates a new row renderer
func NewPullRequestRenderer(styles *Styles, showLabels bool) *PullRequestRenderer {
	return &PullRequestRenderer{
		styles:     styles,
		showLabels: showLabels,
	}
}

// RenderRow renders one pull request line, at most width cells wide
func (r *PullRequestRenderer) RenderRow(pr *domain.PullRequest, isSelected bool, searchQuery string, width int) string {
	if pr == nil {
		return ""
	}

	bg := lipgloss.NewStyle()
	if isSelected {
		bg = r.styles.SelectionBg
	}

	icon := bg.Foreground(lipgloss.Color(GetStateColor(pr.State))).Render(StateIcon(pr))
	number := bg.Inherit(r.styles.Number).Render(fmt.Sprintf("#%-5d", pr.Number))

	title := pr.Title
	titleStyle := bg
	if pr.Draft {
		titleStyle = bg.Inherit(r.styles.Draft)
	}
	renderedTitle := titleStyle.Render(title)
	if searchQuery != "" {
		renderedTitle = r.highlightMatch(title, searchQuery, titleStyle.Inherit(r.styles.Highlight), titleStyle)
	}

	parts := []string{icon, bg.Render(" "), number, bg.Render(" "), renderedTitle}
	if pr.Author != "" {
		parts = append(parts, bg.Render(" "), bg.Inherit(r.styles.Author).Render("@"+pr.Author))
	}
	if r.showLabels && len(pr.Labels) > 0 {
		parts = append(parts, bg.Render(" "), bg.Inherit(r.styles.Label).Render("["+strings.Join(pr.Labels, ", ")+"]"))
	}

	line := strings.Join(parts, "")
	if width > 0 && lipgloss.Width(line) > width {
		line = truncate.StringWithTail(line, uint(width), "…")
	}
	return line
}

// highlightMatch highlights the first match of each search term within text
func (r *PullRequestRenderer) highlightMatch(text, query string, highlightStyle, normalStyle lipgloss.Style) string {
	lowerText := strings.ToLower(text)
	if len(lowerText) != len(text) {
		return normalStyle.Render(text)
	}
	terms := strings.Fields(strings.ToLower(query))

	type span struct{ start, end int }
	var spans []span
	for _, term := range terms {
		if idx := strings.Index(lowerText, term); idx >= 0 {
			spans = append(spans, span{idx, idx + len(term)})
		}
	}
	if len(spans) == 0 {
		return normalStyle.Render(text)
	}

	marked := make([]bool, len(text))
	for _, s := range spans {
		for i := s.start; i < s.end && i < len(marked); i++ {
			marked[i] = true
		}
	}

	var b strings.Builder
	start := 0
	for i := 1; i <= len(text); i++ {
		if i == len(text) || marked[i] != marked[start] {
			segment := text[start:i]
			if marked[start] {
				b.WriteString(highlightStyle.Render(segment))
			} else {
				b.WriteString(normalStyle.Render(segment))
			}
			start = i
		}
	}
	return b.String()
}
