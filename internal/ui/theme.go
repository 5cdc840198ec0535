package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme bundles palette + symbols + box border.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Done, Help                          lipgloss.Style

	BoxUnchecked, BoxChecked string
	SymDone, SymPending      string
	SymOK, SymFail           string
	Border                   lipgloss.Border
	BorderColor              lipgloss.TerminalColor
}

var current = themeFor("classic")

// SetTheme switches the theme used by every renderer. Unknown names fall
// back to classic.
func SetTheme(name string) { current = themeFor(name) }

// Current returns the active theme.
func Current() Theme { return current }

// SetColorMode forces ("always"), disables ("never") or auto-detects ("auto")
// terminal colors.
func SetColorMode(mode string) {
	switch strings.ToLower(mode) {
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	}
}

func boxBorder(tl, tr, bl, br, h, v string) lipgloss.Border {
	return lipgloss.Border{
		Top: h, Bottom: h, Left: v, Right: v,
		TopLeft: tl, TopRight: tr, BottomLeft: bl, BottomRight: br,
	}
}

func themeFor(name string) Theme {
	base := Theme{
		Title:      lipgloss.NewStyle().Bold(true),
		Muted:      lipgloss.NewStyle().Faint(true),
		Selected:   lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:       lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:       lipgloss.NewStyle().Faint(true),
		SymOK:      "✔",
		SymFail:    "✖",
		SymDone:    "✔",
		SymPending: "•",
	}
	switch strings.ToLower(name) {
	case "neon":
		base.Name = "neon"
		base.Title = base.Title.Foreground(lipgloss.Color("13"))
		base.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		base.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		base.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		base.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		base.BoxUnchecked, base.BoxChecked = "◻", "◼"
		base.Border = lipgloss.RoundedBorder()
		base.BorderColor = lipgloss.Color("13")
	case "mono":
		base.Name = "mono"
		plain := lipgloss.NewStyle()
		base.Title, base.Accent, base.Success, base.Pending = plain, plain, plain, plain
		base.Muted, base.Help = plain, plain
		base.Error = plain.Bold(true)
		base.Done = plain.Strikethrough(true)
		base.BoxUnchecked, base.BoxChecked = "[ ]", "[x]"
		base.SymOK, base.SymFail, base.SymDone, base.SymPending = "ok", "error:", "x", "-"
		base.Border = boxBorder("+", "+", "+", "+", "-", "|")
		base.BorderColor = lipgloss.NoColor{}
	default:
		base.Name = "classic"
		base.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
		base.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		base.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		base.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
		base.BoxUnchecked, base.BoxChecked = "☐", "☑"
		base.Border = lipgloss.RoundedBorder()
		base.BorderColor = lipgloss.Color("8")
	}
	return base
}
