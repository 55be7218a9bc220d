package views

import "github.com/charmbracelet/lipgloss"

// RenderPopup centres popupContent in a width x height area, replacing
// whatever was rendered underneath.
func RenderPopup(popupContent string, width, height int, popupStyle lipgloss.Style) string {
	styled := popupStyle.Render(popupContent)
	if width <= 0 || height <= 0 {
		return styled
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styled,
		lipgloss.WithWhitespaceChars(" "))
}
