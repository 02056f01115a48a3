// Package ui is the interactive terminal trainer: a bubbletea model that
// shows the position grid and the spoken sound name, takes confirmations
// from the keyboard and records finished blocks.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorTile      = lipgloss.Color("#2a3850")
	colorLit       = lipgloss.Color("#2196F3")
	colorCenter    = lipgloss.Color("#141d2b")
	colorCorrect   = lipgloss.Color("#8BC34A")
	colorIncorrect = lipgloss.Color("#e53935")
	colorMuted     = lipgloss.Color("#8a94a6")
	colorAccent    = lipgloss.Color("#FFC107")
)

// Styles holds every style the model renders with.
type Styles struct {
	Title     lipgloss.Style
	Tile      lipgloss.Style
	LitTile   lipgloss.Style
	Center    lipgloss.Style
	Sound     lipgloss.Style
	Correct   lipgloss.Style
	Incorrect lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Result    lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the trainer's color scheme.
func DefaultStyles() Styles {
	tile := lipgloss.NewStyle().
		Width(tileWidth).
		Height(tileHeight).
		Margin(0, 1, 1, 0).
		Background(colorTile)

	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Tile:      tile,
		LitTile:   tile.Background(colorLit).Foreground(colorCenter).Align(lipgloss.Center, lipgloss.Center),
		Center:    tile.Background(colorCenter).Foreground(colorMuted).Align(lipgloss.Center, lipgloss.Center),
		Sound:     lipgloss.NewStyle().Bold(true).Width(3*(tileWidth+1)).Align(lipgloss.Center),
		Correct:   lipgloss.NewStyle().Bold(true).Foreground(colorCorrect),
		Incorrect: lipgloss.NewStyle().Bold(true).Foreground(colorIncorrect),
		Muted:     lipgloss.NewStyle().Foreground(colorMuted),
		Error:     lipgloss.NewStyle().Foreground(colorIncorrect),
		Result:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 2),
		Help:      lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
	}
}

const (
	tileWidth  = 8
	tileHeight = 3

	// litMark keeps the lit tile visible on terminals without color.
	litMark = "●"
)
