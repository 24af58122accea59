// Package styles defines the visual styling for dupes' terminal output.
//
// All styles use semantic names and adaptive colors that adjust to light
// and dark terminal themes.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors
var (
	HeadingColor = lipgloss.AdaptiveColor{Light: "#1F4E79", Dark: "#7DB9E8"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF9A9A"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FFCC80"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
	PathColor    = lipgloss.AdaptiveColor{Light: "#5E35B1", Dark: "#B39DDB"}
)

// StyleRegistry maps semantic names to lipgloss styles
var StyleRegistry = map[string]lipgloss.Style{
	"Header":    lipgloss.NewStyle().Foreground(HeadingColor).Bold(true),
	"Success":   lipgloss.NewStyle().Foreground(SuccessColor).Bold(true),
	"Error":     lipgloss.NewStyle().Foreground(ErrorColor).Bold(true),
	"Warning":   lipgloss.NewStyle().Foreground(WarningColor),
	"Muted":     lipgloss.NewStyle().Foreground(MutedColor),
	"Canonical": lipgloss.NewStyle().Foreground(SuccessColor),
	"Duplicate": lipgloss.NewStyle().Foreground(PathColor).Italic(true),
	"Bold":      lipgloss.NewStyle().Bold(true),
}

// GetStyle returns the style registered under name, or a plain style
func GetStyle(name string) lipgloss.Style {
	if style, ok := StyleRegistry[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Styler renders text with named styles, or passes it through untouched
// when output is plain.
type Styler struct {
	Plain bool
}

// Render applies the named style to s
func (s Styler) Render(name, text string) string {
	if s.Plain {
		return text
	}
	return GetStyle(name).Render(text)
}
