// Package ui provides the visual styling for the insight explorer.
// Uses an emerald palette with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors
	LightBackground = lipgloss.Color("#f8fafc") // slate-50
	LightForeground = lipgloss.Color("#0f172a") // slate-900
	LightPrimary    = lipgloss.Color("#047857") // emerald-700
	LightAccent     = lipgloss.Color("#059669") // emerald-600
	LightSecondary  = lipgloss.Color("#e2e8f0") // slate-200
	LightMuted      = lipgloss.Color("#64748b") // slate-500
	LightBorder     = lipgloss.Color("#cbd5e1") // slate-300
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#020617") // slate-950
	DarkForeground = lipgloss.Color("#f1f5f9") // slate-100
	DarkPrimary    = lipgloss.Color("#10b981") // emerald-500
	DarkAccent     = lipgloss.Color("#34d399") // emerald-400
	DarkSecondary  = lipgloss.Color("#1e293b") // slate-800
	DarkMuted      = lipgloss.Color("#64748b") // slate-500
	DarkBorder     = lipgloss.Color("#334155") // slate-700
	DarkCard       = lipgloss.Color("#0f172a") // slate-900

	// Graph colors (same in both modes)
	Emerald     = lipgloss.Color("#10b981")
	EmeraldPale = lipgloss.Color("#6ee7b7")
	EmeraldDeep = lipgloss.Color("#064e3b")
	EmeraldLite = lipgloss.Color("#34d399")
	Slate400    = lipgloss.Color("#94a3b8")
	Slate700    = lipgloss.Color("#334155")
	White       = lipgloss.Color("#ffffff")

	// Semantic Colors
	Destructive = lipgloss.Color("#ef4444")
	Success     = lipgloss.Color("#10b981")
	Warning     = lipgloss.Color("#f59e0b")
	Info        = lipgloss.Color("#06b6d4")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// DetectTheme auto-detects based on terminal or returns light mode
func DetectTheme() Theme {
	// COLORFGBG is "foreground;background"; ANSI 0-6 and 8 are dark backgrounds.
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) >= 2 {
			if bgIdx, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	if v := os.Getenv("INSIGHT_DARK_MODE"); v == "1" || strings.EqualFold(v, "true") {
		return DarkTheme()
	}

	return LightTheme()
}

// ThemeFor picks the dark theme when the config asks for it and falls back
// to detection otherwise.
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme()
	}
	return DetectTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	App     lipgloss.Style
	Header  lipgloss.Style
	Brand   lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style
	Panel   lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Quote    lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Navigation
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	Crumb       lipgloss.Style
	CrumbActive lipgloss.Style

	// Data tab
	VectorRow      lipgloss.Style
	VectorSelected lipgloss.Style
	WeightBar      lipgloss.Style
	WeightTrack    lipgloss.Style
	Weight         lipgloss.Style
	Action         lipgloss.Style

	// Principle / metaphor
	Principle   lipgloss.Style
	PipOn       lipgloss.Style
	PipOff      lipgloss.Style
	OldPattern  lipgloss.Style
	NewMetaphor lipgloss.Style
	MinusMark   lipgloss.Style
	PlusMark    lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style

	// Canvas inks, indexed by Ink
	inks [inkCount]lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	s := Styles{
		Theme: theme,

		App: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Brand: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Panel: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Quote: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Italic(true).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Tab: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		TabActive: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(White).
			Padding(0, 2).
			Bold(true),

		Crumb: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		CrumbActive: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Padding(0, 1).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary),

		VectorRow: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2),

		VectorSelected: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Primary),

		WeightBar: lipgloss.NewStyle().
			Foreground(theme.Primary),

		WeightTrack: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		Weight: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Action: lipgloss.NewStyle().
			Background(LightAccent).
			Foreground(White).
			Padding(0, 2).
			Bold(true),

		Principle: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true).
			Align(lipgloss.Center),

		PipOn: lipgloss.NewStyle().
			Foreground(Emerald),

		PipOff: lipgloss.NewStyle().
			Foreground(Slate700),

		OldPattern: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Italic(true).
			Underline(true),

		NewMetaphor: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		MinusMark: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		PlusMark: lipgloss.NewStyle().
			Foreground(Emerald).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Secondary).
			Foreground(theme.Accent).
			Padding(0, 1).
			Bold(true),
	}

	label := theme.Foreground
	labelMuted := Slate400
	if !theme.IsDark {
		labelMuted = theme.Muted
	}
	s.inks = [inkCount]lipgloss.Style{
		InkNone:       lipgloss.NewStyle(),
		InkStarDim:    lipgloss.NewStyle().Foreground(theme.Border),
		InkStar:       lipgloss.NewStyle().Foreground(theme.Muted),
		InkLink:       lipgloss.NewStyle().Foreground(EmeraldDeep),
		InkHub:        lipgloss.NewStyle().Foreground(EmeraldPale).Bold(true),
		InkLeaf:       lipgloss.NewStyle().Foreground(Emerald).Faint(true),
		InkExplored:   lipgloss.NewStyle().Foreground(Emerald).Bold(true),
		InkIndicator:  lipgloss.NewStyle().Foreground(Emerald).Blink(true),
		InkHover:      lipgloss.NewStyle().Foreground(White).Background(LightAccent).Bold(true),
		InkHubLabel:   lipgloss.NewStyle().Foreground(label).Bold(true),
		InkLabel:      lipgloss.NewStyle().Foreground(label),
		InkLabelMuted: lipgloss.NewStyle().Foreground(labelMuted).Italic(true),
		InkLabelHover: lipgloss.NewStyle().Foreground(White).Bold(true),
		InkBadge:      lipgloss.NewStyle().Foreground(Emerald).Bold(true),
		InkBadgeDone:  lipgloss.NewStyle().Foreground(EmeraldLite).Bold(true),
	}
	return s
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Ink returns the style used for canvas cells painted with i.
func (s Styles) Ink(i Ink) lipgloss.Style {
	if i < 0 || i >= inkCount {
		return s.inks[InkNone]
	}
	return s.inks[i]
}

// Logo returns the header brand mark.
func Logo(s Styles) string {
	return s.PlusMark.Render("◆") + " " + s.Brand.Render("维度罗盘") + " " + s.Muted.Render("INSIGHT VECTOR")
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
