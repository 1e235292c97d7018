package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gauge renders a 0-100 parameter as a horizontal bar
type Gauge struct {
	Width int
	Label string
	Color lipgloss.TerminalColor
	Plain bool
}

// NewGauge creates a gauge of the given bar width
func NewGauge(width int) *Gauge {
	return &Gauge{Width: width}
}

// Render renders the gauge for value. A nil value renders an empty bar and
// placeholder so missing parameters stay aligned with present ones.
func (g *Gauge) Render(value *float64, display string) string {
	// Define styles locally to avoid import cycle
	fillStyle := lipgloss.NewStyle().Foreground(g.fillColor()).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	if g.Plain {
		fillStyle = lipgloss.NewStyle()
		mutedStyle = lipgloss.NewStyle()
	}

	width := max(g.Width, 1)
	filledWidth := 0
	if value != nil {
		filledWidth = int(float64(width) * clampPercent(*value) / 100)
	}

	bar := fillStyle.Render(strings.Repeat("█", filledWidth)) +
		mutedStyle.Render(strings.Repeat("░", width-filledWidth))

	result := fmt.Sprintf("[%s] %s", bar, display)
	if g.Label != "" {
		result = fmt.Sprintf("%-28s %s", g.Label, result)
	}
	return result
}

func (g *Gauge) fillColor() lipgloss.TerminalColor {
	if g.Color != nil {
		return g.Color
	}
	return lipgloss.Color("#F472B6")
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Spinner represents a spinning progress indicator
type Spinner struct {
	Frame int
	Label string
	Color lipgloss.TerminalColor
}

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// NewSpinner creates a new spinner
func NewSpinner(label string) *Spinner {
	return &Spinner{Label: label}
}

// Tick advances the spinner animation
func (s *Spinner) Tick() {
	s.Frame = (s.Frame + 1) % len(spinnerFrames)
}

// Render renders the spinner
func (s *Spinner) Render() string {
	style := lipgloss.NewStyle().Bold(true)
	if s.Color != nil {
		style = style.Foreground(s.Color)
	}

	spinner := style.Render(string(spinnerFrames[s.Frame%len(spinnerFrames)]))
	if s.Label != "" {
		return fmt.Sprintf("%s %s", spinner, s.Label)
	}
	return spinner
}
