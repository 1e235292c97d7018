package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color theme for the TUI
type Theme struct {
	Name string

	// Primary colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	// Semantic colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// UI colors
	Border    lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	// Coherence badge colors
	Coherent  lipgloss.AdaptiveColor
	Decohered lipgloss.AdaptiveColor
}

// buildTheme creates a theme with the given [light, dark] color pairs
func buildTheme(name string, primary, secondary, accent, success, warning, errorColor, info, border, muted, highlight, coherent, decohered [2]string) Theme {
	return Theme{
		Name:      name,
		Primary:   lipgloss.AdaptiveColor{Light: primary[0], Dark: primary[1]},
		Secondary: lipgloss.AdaptiveColor{Light: secondary[0], Dark: secondary[1]},
		Accent:    lipgloss.AdaptiveColor{Light: accent[0], Dark: accent[1]},
		Success:   lipgloss.AdaptiveColor{Light: success[0], Dark: success[1]},
		Warning:   lipgloss.AdaptiveColor{Light: warning[0], Dark: warning[1]},
		Error:     lipgloss.AdaptiveColor{Light: errorColor[0], Dark: errorColor[1]},
		Info:      lipgloss.AdaptiveColor{Light: info[0], Dark: info[1]},
		Border:    lipgloss.AdaptiveColor{Light: border[0], Dark: border[1]},
		Muted:     lipgloss.AdaptiveColor{Light: muted[0], Dark: muted[1]},
		Highlight: lipgloss.AdaptiveColor{Light: highlight[0], Dark: highlight[1]},
		Coherent:  lipgloss.AdaptiveColor{Light: coherent[0], Dark: coherent[1]},
		Decohered: lipgloss.AdaptiveColor{Light: decohered[0], Dark: decohered[1]},
	}
}

// Available themes
var (
	QupidTheme = buildTheme("qupid",
		[2]string{"#BE185D", "#F472B6"}, [2]string{"#6B7280", "#9CA3AF"}, [2]string{"#0E7490", "#22D3EE"},
		[2]string{"#059669", "#34D399"}, [2]string{"#D97706", "#FBBF24"}, [2]string{"#DC2626", "#F87171"},
		[2]string{"#0891B2", "#67E8F9"}, [2]string{"#F9A8D4", "#831843"}, [2]string{"#6B7280", "#9CA3AF"},
		[2]string{"#FCE7F3", "#500724"}, [2]string{"#0369A1", "#38BDF8"}, [2]string{"#DB2777", "#F9A8D4"})

	HighContrastTheme = buildTheme("high-contrast",
		[2]string{"#000000", "#FFFFFF"}, [2]string{"#666666", "#BBBBBB"}, [2]string{"#000080", "#8080FF"},
		[2]string{"#006600", "#00FF00"}, [2]string{"#CC6600", "#FFAA00"}, [2]string{"#CC0000", "#FF4444"},
		[2]string{"#0066CC", "#4499FF"}, [2]string{"#000000", "#FFFFFF"}, [2]string{"#666666", "#BBBBBB"},
		[2]string{"#FFFF00", "#444444"}, [2]string{"#0000CC", "#66CCFF"}, [2]string{"#CC00CC", "#FF80FF"})

	MinimalTheme = buildTheme("minimal",
		[2]string{"#2D3748", "#E2E8F0"}, [2]string{"#718096", "#A0AEC0"}, [2]string{"#4A5568", "#CBD5E0"},
		[2]string{"#2F855A", "#68D391"}, [2]string{"#C05621", "#F6AD55"}, [2]string{"#C53030", "#FC8181"},
		[2]string{"#2B6CB0", "#63B3ED"}, [2]string{"#E2E8F0", "#2D3748"}, [2]string{"#A0AEC0", "#718096"},
		[2]string{"#F7FAFC", "#2D3748"}, [2]string{"#2B6CB0", "#63B3ED"}, [2]string{"#553C9A", "#B794F6"})
)

// Current active theme
var currentTheme = QupidTheme

// GetTheme returns the current active theme
func GetTheme() Theme {
	return currentTheme
}

// SetTheme sets the active theme
func SetTheme(theme *Theme) {
	currentTheme = *theme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	switch name {
	case "qupid", "":
		SetTheme(&QupidTheme)
		return true
	case "high-contrast":
		SetTheme(&HighContrastTheme)
		return true
	case "minimal":
		SetTheme(&MinimalTheme)
		return true
	default:
		return false
	}
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	return []string{"qupid", "high-contrast", "minimal"}
}

// GetStyles builds the common styles from the current theme. With colors
// disabled every style keeps its layout but drops foreground and background.
func GetStyles() *Styles {
	theme := GetTheme()
	if IsColorDisabled() {
		return plainStyles(theme)
	}

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subheader: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Body:  lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle().Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Info: lipgloss.NewStyle().Foreground(theme.Info),

		Button: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 2).
			Bold(true),

		ButtonDisabled: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Muted).
			Padding(0, 2),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Highlight: lipgloss.NewStyle().
			Background(theme.Highlight).
			Foreground(theme.Primary),

		BadgeCoherent: lipgloss.NewStyle().
			Foreground(theme.Coherent).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Coherent).
			Padding(0, 1).
			Bold(true),

		BadgeDecohered: lipgloss.NewStyle().
			Foreground(theme.Decohered).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Decohered).
			Padding(0, 1).
			Bold(true),
	}
}

func plainStyles(theme Theme) *Styles {
	bordered := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	return &Styles{
		Theme:          theme,
		Title:          lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Header:         lipgloss.NewStyle().Bold(true),
		Subheader:      lipgloss.NewStyle().Bold(true),
		Body:           lipgloss.NewStyle(),
		Muted:          lipgloss.NewStyle(),
		Success:        lipgloss.NewStyle().Bold(true),
		Warning:        lipgloss.NewStyle().Bold(true),
		Error:          lipgloss.NewStyle().Bold(true),
		Info:           lipgloss.NewStyle(),
		Button:         bordered.Padding(0, 2).Bold(true),
		ButtonDisabled: bordered.Padding(0, 2).Faint(true),
		Box:            bordered.Padding(1, 2),
		Panel:          lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		Highlight:      lipgloss.NewStyle().Reverse(true),
		BadgeCoherent:  bordered.Padding(0, 1).Bold(true),
		BadgeDecohered: bordered.Padding(0, 1).Bold(true),
	}
}

// Styles contains all the styled components
type Styles struct {
	Theme Theme

	// Base styles
	Title     lipgloss.Style
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Body      lipgloss.Style
	Muted     lipgloss.Style

	// Status styles
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Interactive styles
	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style

	// Layout styles
	Box   lipgloss.Style
	Panel lipgloss.Style

	Highlight      lipgloss.Style
	BadgeCoherent  lipgloss.Style
	BadgeDecohered lipgloss.Style
}
