package views

import (
	"github.com/charmbracelet/lipgloss"

	"prgrip/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Filter        lipgloss.Style
	Main          lipgloss.Style
	Scroll        lipgloss.Style
	Highlight     lipgloss.Style
	SelectionBg   lipgloss.Style
	StatusError   lipgloss.Style
	StatusLoading lipgloss.Style
	Label         lipgloss.Style
	Draft         lipgloss.Style
	Author        lipgloss.Style
	Number        lipgloss.Style
	Panel         lipgloss.Style
	PanelTitle    lipgloss.Style
	Popup         lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Dim: lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Filter:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Main:          lipgloss.NewStyle().Padding(0, 1),
		Scroll:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		SelectionBg:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
		Label:         lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		Draft:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		Author:        lipgloss.NewStyle().Foreground(lipgloss.Color("180")),
		Number:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(1, 2),
	}
}

// GetStateColor returns the colour used for a pull request state
func GetStateColor(state domain.PRState) string {
	switch state {
	case domain.StateOpen:
		return "78" // green
	case domain.StateMerged:
		return "141" // purple
	case domain.StateClosed:
		return "203" // red
	default:
		return "241"
	}
}

// StateIcon returns the glyph shown next to a pull request
func StateIcon(pr *domain.PullRequest) string {
	switch {
	case pr.Draft:
		return "◌"
	case pr.State == domain.StateMerged:
		return "⇄"
	case pr.State == domain.StateClosed:
		return "✗"
	default:
		return "●"
	}
}
