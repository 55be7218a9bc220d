package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"prgrip/internal/log"
)

// noMarginStyle removes glamour's document margins so the body lines up
// with the metadata above it.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// markdownRenderer renders pull request bodies, rebuilding the glamour
// renderer only when the wrap width changes.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer(style string) *markdownRenderer {
	if style == "" {
		style = "dark"
	}
	return &markdownRenderer{style: style}
}

func (r *markdownRenderer) render(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if r.renderer == nil || r.width != width {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
		if r.style == "auto" {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle(r.style))
		}
		opts = append(opts, glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)))

		tr, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			log.ErrorErr(log.CatUI, "failed to create markdown renderer", err, "style", r.style)
			return md
		}
		r.renderer = tr
		r.width = width
	}

	out, err := r.renderer.Render(md)
	if err != nil {
		log.ErrorErr(log.CatUI, "failed to render markdown", err)
		return md
	}
	return strings.TrimRight(out, "\n")
}
