package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor
	Accent      lipgloss.AdaptiveColor
	Success     lipgloss.AdaptiveColor
	Warn        lipgloss.AdaptiveColor
	Error       lipgloss.AdaptiveColor
	Border      lipgloss.AdaptiveColor

	TopBar      lipgloss.Style
	TopBarTitle lipgloss.Style
	TopBarBadge lipgloss.Style
	TopBarMeta  lipgloss.Style

	Pane      lipgloss.Style
	PaneTitle lipgloss.Style
	Footer    lipgloss.Style
	InputBox  lipgloss.Style
	InputBoxF lipgloss.Style

	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	ErrorText lipgloss.Style
	Notice    lipgloss.Style
	Spinner   lipgloss.Style

	StatusCompleted  lipgloss.Style
	StatusProcessing lipgloss.Style
	StatusFailed     lipgloss.Style

	Keyword  lipgloss.Style
	Category lipgloss.Style
	Bar      lipgloss.Style
}

func NewTheme() Theme {
	if os.Getenv("POSTPREP_NO_COLOR") == "1" {
		return newNoColorTheme()
	}

	t := Theme{
		TextPrimary: lipgloss.AdaptiveColor{Light: "#1F2430", Dark: "#E6E1CF"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#8A8F98"},
		Accent:      lipgloss.AdaptiveColor{Light: "#8B2E49", Dark: "#E48BAB"},
		Success:     lipgloss.AdaptiveColor{Light: "#166534", Dark: "#86EFAC"},
		Warn:        lipgloss.AdaptiveColor{Light: "#92400E", Dark: "#FCD34D"},
		Error:       lipgloss.AdaptiveColor{Light: "#991B1B", Dark: "#FCA5A5"},
		Border:      lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#3B4048"},
	}

	t.TopBar = lipgloss.NewStyle().Padding(0, 1)
	t.TopBarTitle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.TopBarBadge = lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	t.TopBarMeta = lipgloss.NewStyle().Foreground(t.TextMuted)

	t.Pane = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted).Padding(0, 1)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.InputBoxF = t.InputBox.BorderForeground(t.Accent)

	t.Label = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	t.Value = lipgloss.NewStyle().Foreground(t.TextPrimary)
	t.Muted = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.ErrorText = lipgloss.NewStyle().Foreground(t.Error)
	t.Notice = lipgloss.NewStyle().Foreground(t.Success)
	t.Spinner = lipgloss.NewStyle().Foreground(t.Accent)

	t.StatusCompleted = lipgloss.NewStyle().Foreground(t.Success).Bold(true)
	t.StatusProcessing = lipgloss.NewStyle().Foreground(t.Warn).Bold(true)
	t.StatusFailed = lipgloss.NewStyle().Foreground(t.Error).Bold(true)

	t.Keyword = lipgloss.NewStyle().Foreground(t.Accent)
	t.Category = lipgloss.NewStyle().Foreground(t.Warn)
	t.Bar = lipgloss.NewStyle().Foreground(t.Accent)

	return t
}

func newNoColorTheme() Theme {
	t := Theme{}
	plain := lipgloss.NewStyle()
	t.TopBar = plain.Padding(0, 1)
	t.TopBarTitle = plain.Bold(true)
	t.TopBarBadge = plain.Bold(true)
	t.TopBarMeta = plain
	t.Pane = plain.Border(lipgloss.NormalBorder()).Padding(0, 1)
	t.PaneTitle = plain.Bold(true)
	t.Footer = plain.Padding(0, 1)
	t.InputBox = plain.Border(lipgloss.NormalBorder()).Padding(0, 1)
	t.InputBoxF = t.InputBox
	t.Label = plain.Bold(true)
	t.Value = plain
	t.Muted = plain
	t.ErrorText = plain
	t.Notice = plain
	t.Spinner = plain
	t.StatusCompleted = plain.Bold(true)
	t.StatusProcessing = plain
	t.StatusFailed = plain.Bold(true)
	t.Keyword = plain
	t.Category = plain
	t.Bar = plain
	return t
}

func (t Theme) statusStyle(status string) lipgloss.Style {
	switch status {
	case "COMPLETED":
		return t.StatusCompleted
	case "FAILED":
		return t.StatusFailed
	default:
		return t.StatusProcessing
	}
}
