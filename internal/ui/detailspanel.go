package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"prgrip/internal/domain"
	"prgrip/internal/lifecycle"
	"prgrip/internal/log"
	"prgrip/internal/selection"
	"prgrip/internal/ui/views"
)

// DetailsPanel renders the pull request selected in the list panel. While
// open it is registered as a listener on the list's selection under its
// own scope; closing the panel disposes that scope.
type DetailsPanel struct {
	sel      *selection.ListModel
	parent   *lifecycle.Scope
	scope    *lifecycle.Scope
	viewport viewport.Model
	md       *markdownRenderer
	styles   *views.Styles
	shown    *domain.PullRequest
}

// NewDetailsPanel creates a closed details panel for sel
func NewDetailsPanel(sel *selection.ListModel, parent *lifecycle.Scope, styles *views.Styles, markdownStyle string) *DetailsPanel {
	return &DetailsPanel{
		sel:      sel,
		parent:   parent,
		viewport: viewport.New(40, 10),
		md:       newMarkdownRenderer(markdownStyle),
		styles:   styles,
	}
}

// IsOpen reports whether the panel is listening to the selection
func (d *DetailsPanel) IsOpen() bool {
	return d.scope != nil && !d.scope.Disposed()
}

// Open registers the panel on the selection and renders the current value
func (d *DetailsPanel) Open() error {
	if d.IsOpen() {
		return nil
	}
	scope := lifecycle.NewChild(d.parent, "details-panel")
	if err := d.sel.AddChangeListener(d, scope); err != nil {
		return fmt.Errorf("open details panel: %w", err)
	}
	d.scope = scope
	d.SelectionChanged()
	return nil
}

// Close disposes the panel's scope, which drops its listener
func (d *DetailsPanel) Close() {
	if d.scope != nil {
		d.scope.Dispose()
		d.scope = nil
	}
}

// Shown returns the pull request currently rendered, or nil
func (d *DetailsPanel) Shown() *domain.PullRequest {
	return d.shown
}

// SelectionChanged re-renders from the holder's new value
func (d *DetailsPanel) SelectionChanged() {
	pr := selection.SelectedPullRequest(d.sel)
	d.shown = pr
	if pr == nil {
		log.Debug(log.CatUI, "details cleared")
	} else {
		log.Debug(log.CatUI, "details showing pull request", "number", pr.Number)
	}
	d.viewport.SetContent(d.render(pr))
	d.viewport.GotoTop()
}

// SetSize resizes the panel's content area
func (d *DetailsPanel) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if d.viewport.Width == width && d.viewport.Height == height {
		return
	}
	d.viewport.Width = width
	d.viewport.Height = height
	if d.IsOpen() {
		d.viewport.SetContent(d.render(d.shown))
	}
}

// Scroll moves the content by n lines; negative scrolls up
func (d *DetailsPanel) Scroll(n int) {
	d.viewport.SetYOffset(d.viewport.YOffset + n)
}

// View renders the panel content
func (d *DetailsPanel) View() string {
	return d.viewport.View()
}

func (d *DetailsPanel) render(pr *domain.PullRequest) string {
	if pr == nil {
		return d.styles.Dim.Render("Nothing selected")
	}

	var b strings.Builder
	stateStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(views.GetStateColor(pr.State))).Bold(true)

	b.WriteString(d.styles.PanelTitle.Render(pr.Title))
	b.WriteString("\n")

	state := strings.ToUpper(string(pr.State))
	if pr.Draft {
		state += " (draft)"
	}
	b.WriteString(fmt.Sprintf("%s %s  %s\n",
		d.styles.Number.Render(fmt.Sprintf("#%d", pr.Number)),
		stateStyle.Render(state),
		d.styles.Author.Render("@"+pr.Author)))

	if pr.HeadRef != "" || pr.BaseRef != "" {
		b.WriteString(d.styles.Dim.Render(fmt.Sprintf("%s → %s", pr.HeadRef, pr.BaseRef)))
		b.WriteString("\n")
	}

	var stats []string
	if !pr.CreatedAt.IsZero() {
		stats = append(stats, "opened "+humanize.Time(pr.CreatedAt))
	}
	if !pr.UpdatedAt.IsZero() {
		stats = append(stats, "updated "+humanize.Time(pr.UpdatedAt))
	}
	stats = append(stats, fmt.Sprintf("+%d −%d", pr.Additions, pr.Deletions))
	stats = append(stats, humanize.Comma(int64(pr.Comments))+" comments")
	b.WriteString(d.styles.Status.Render(strings.Join(stats, " · ")))
	b.WriteString("\n")

	if len(pr.Labels) > 0 {
		b.WriteString(d.styles.Label.Render(strings.Join(pr.Labels, " · ")))
		b.WriteString("\n")
	}
	if pr.URL != "" {
		b.WriteString(d.styles.Dim.Render(pr.URL))
		b.WriteString("\n")
	}

	if body := d.md.render(pr.Body, d.viewport.Width); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}
	return b.String()
}
