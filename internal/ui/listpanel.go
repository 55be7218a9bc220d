package ui

import (
	"fmt"
	"strings"

	"prgrip/internal/domain"
	"prgrip/internal/lifecycle"
	"prgrip/internal/selection"
	"prgrip/internal/ui/views"
)

// ListPanel shows the search results and owns the pull request selection.
// Moving the cursor writes the selection; other panels listen to it.
type ListPanel struct {
	items    []domain.PullRequest
	cursor   int
	offset   int
	height   int
	search   string
	sel      *selection.ListModel
	scope    *lifecycle.Scope
	renderer *views.PullRequestRenderer
	styles   *views.Styles
}

// NewListPanel creates a panel whose lifetime is a child of parent
func NewListPanel(parent *lifecycle.Scope, styles *views.Styles, showLabels bool) *ListPanel {
	return &ListPanel{
		height:   10,
		sel:      selection.NewListModel(),
		scope:    lifecycle.NewChild(parent, "list-panel"),
		renderer: views.NewPullRequestRenderer(styles, showLabels),
		styles:   styles,
	}
}

// Selection returns the panel's selection holder
func (p *ListPanel) Selection() *selection.ListModel {
	return p.sel
}

// Scope returns the panel's lifetime
func (p *ListPanel) Scope() *lifecycle.Scope {
	return p.scope
}

// Len returns the number of rows
func (p *ListPanel) Len() int {
	return len(p.items)
}

// Cursor returns the highlighted row index
func (p *ListPanel) Cursor() int {
	return p.cursor
}

// SetHeight sets the number of visible rows
func (p *ListPanel) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	p.height = h
	p.ensureVisible()
}

// SetSearch sets the text highlighted in titles
func (p *ListPanel) SetSearch(q string) {
	p.search = q
}

// SetItems replaces the rows. The cursor stays on the previously selected
// pull request when it is still present. The selection is always
// rewritten so listeners pick up refreshed data.
func (p *ListPanel) SetItems(prs []domain.PullRequest) {
	prev := selection.SelectedPullRequest(p.sel)
	p.items = prs

	if len(p.items) == 0 {
		p.cursor, p.offset = 0, 0
		if _, ok := p.sel.Current(); ok {
			p.sel.Clear()
		}
		return
	}

	cursor := p.cursor
	if prev != nil {
		for i := range p.items {
			if p.items[i].Number == prev.Number {
				cursor = i
				break
			}
		}
	}
	p.selectIndex(cursor)
}

// Move shifts the cursor by delta rows, clamped to the list
func (p *ListPanel) Move(delta int) {
	if len(p.items) == 0 {
		return
	}
	target := p.cursor + delta
	if target < 0 {
		target = 0
	}
	if target >= len(p.items) {
		target = len(p.items) - 1
	}
	if target == p.cursor {
		return
	}
	p.selectIndex(target)
}

// Top moves the cursor to the first row
func (p *ListPanel) Top() {
	p.Move(-len(p.items))
}

// Bottom moves the cursor to the last row
func (p *ListPanel) Bottom() {
	p.Move(len(p.items))
}

// PageUp moves the cursor up by one screen
func (p *ListPanel) PageUp() {
	p.Move(-p.height)
}

// PageDown moves the cursor down by one screen
func (p *ListPanel) PageDown() {
	p.Move(p.height)
}

func (p *ListPanel) selectIndex(i int) {
	if i < 0 {
		i = 0
	}
	if i >= len(p.items) {
		i = len(p.items) - 1
	}
	p.cursor = i
	p.ensureVisible()
	p.sel.SetCurrent(&p.items[i])
}

func (p *ListPanel) ensureVisible() {
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.height {
		p.offset = p.cursor - p.height + 1
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// View renders the visible rows
func (p *ListPanel) View(width int) string {
	if len(p.items) == 0 {
		return p.styles.Dim.Render("No pull requests")
	}

	end := p.offset + p.height
	if end > len(p.items) {
		end = len(p.items)
	}

	var b strings.Builder
	for i := p.offset; i < end; i++ {
		if i > p.offset {
			b.WriteString("\n")
		}
		b.WriteString(p.renderer.RenderRow(&p.items[i], i == p.cursor, p.search, width))
	}
	if len(p.items) > p.height {
		b.WriteString("\n")
		b.WriteString(p.styles.Scroll.Render(fmt.Sprintf("%d-%d of %d", p.offset+1, end, len(p.items))))
	}
	return b.String()
}

// Dispose ends the panel's scope and with it every listener bound to it
func (p *ListPanel) Dispose() {
	p.scope.Dispose()
}
