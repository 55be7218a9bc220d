package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// helpSection groups bindings under a heading in the help popup
type helpSection struct {
	title    string
	bindings []key.Binding
}

// renderHelpContent renders the help popup body
func renderHelpContent(k keyMap) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(10)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	sections := []helpSection{
		{"Navigation", []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown}},
		{"Pull request", []key.Binding{k.Details, k.Diff, k.Open}},
		{"Search", []key.Binding{k.Search, k.State, k.Refresh}},
		{"Other", []key.Binding{k.Help, k.Quit}},
	}

	var help strings.Builder
	help.WriteString(titleStyle.Render("prgrip Help"))
	help.WriteString("\n")
	for i, section := range sections {
		if i > 0 {
			help.WriteString("\n")
		}
		help.WriteString(sectionStyle.Render(section.title))
		help.WriteString("\n")
		for _, b := range section.bindings {
			h := b.Help()
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(h.Key), descStyle.Render(h.Desc)))
		}
	}

	filterStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	help.WriteString("\n")
	help.WriteString(filterStyle.Render("Search terms match title, author, branch and labels"))
	return help.String()
}
