// Package ui implements the interactive pages of the point2point terminal
// client: route browsing and proposal, my-routes, subscriptions, and the
// profile editor, plus the login/signup modal. Each page is a bubbletea
// model owned by the App model in app.go.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Columbia-ish palette.
var (
	ColorPrimary = lipgloss.Color("#69B3E7") // Columbia blue
	ColorAccent  = lipgloss.Color("#FFFFFF")
	ColorMuted   = lipgloss.Color("#6b7280")
	ColorBorder  = lipgloss.Color("#374151")
	ColorDanger  = lipgloss.Color("#e53935")
	ColorSuccess = lipgloss.Color("#8BC34A")
	ColorWarning = lipgloss.Color("#FFC107")
)

// Styles holds the shared lipgloss styles for all pages.
type Styles struct {
	Header    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Content   lipgloss.Style
	Card      lipgloss.Style
	Selected  lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Banner    lipgloss.Style
	Badge     lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles builds the default style set.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1),
		Tab: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 2),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Background(ColorPrimary).
			Padding(0, 2),
		Content: lipgloss.NewStyle().
			Padding(0, 1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1),
		Muted: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Error: lipgloss.NewStyle().
			Foreground(ColorDanger),
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Background(ColorPrimary).
			Padding(0, 1),
		Badge: lipgloss.NewStyle().
			Foreground(ColorAccent).
			Background(ColorBorder).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1),
	}
}

// statusStyle picks the style for a route or subscription status badge.
func (s Styles) statusStyle(status string) lipgloss.Style {
	switch status {
	case "active":
		return s.Success
	case "cancelled":
		return s.Error
	default:
		return s.Warning
	}
}
