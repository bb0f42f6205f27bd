package tui

import (
	"context"
	"fmt"
	"strings"

	"postprep-cli/internal/api"
	"postprep-cli/internal/app"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type adminStatsMsg struct {
	seq    int
	stats  app.GlobalStats
	points []app.ChartPoint
	err    error
}

// adminModel is the admin dashboard: aggregate counts plus the daily
// upload chart.
type adminModel struct {
	theme  Theme
	client *api.Client

	loading  bool
	fetchSeq int
	stats    app.GlobalStats
	points   []app.ChartPoint
	errMsg   string
}

func newAdminModel(theme Theme, client *api.Client) adminModel {
	return adminModel{theme: theme, client: client}
}

func (m adminModel) editing() bool { return false }

func (m adminModel) load() (adminModel, tea.Cmd) {
	m.loading = true
	m.errMsg = ""
	m.fetchSeq++
	seq := m.fetchSeq
	client := m.client
	return m, func() tea.Msg {
		ctx := context.Background()
		stats, err := client.AdminDashboard(ctx)
		if err != nil {
			return adminStatsMsg{seq: seq, err: err}
		}
		points, err := client.AdminDailyStats(ctx)
		if err != nil {
			return adminStatsMsg{seq: seq, err: err}
		}
		return adminStatsMsg{seq: seq, stats: stats, points: points}
	}
}

func (m adminModel) Update(msg tea.Msg) (adminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m.load()
		}
	case adminStatsMsg:
		if msg.seq != m.fetchSeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = messageFromError(msg.err, "Failed to fetch dashboard")
			return m, nil
		}
		m.stats = msg.stats
		m.points = msg.points
		return m, nil
	}
	return m, nil
}

func (m adminModel) View(width int, spin string) string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.PaneTitle.Render("Admin Dashboard"))
	if m.loading {
		b.WriteString("  " + t.Spinner.Render(spin))
	}
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(t.ErrorText.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	users := t.Pane.Render(fmt.Sprintf("%s\n%s", t.Label.Render("USERS"), t.Value.Render(fmt.Sprintf("%d", m.stats.Users))))
	articles := t.Pane.Render(fmt.Sprintf("%s\n%s", t.Label.Render("ARTICLES"), t.Value.Render(fmt.Sprintf("%d", m.stats.Articles))))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, users, "  ", articles))
	b.WriteString("\n\n")

	if len(m.points) > 0 {
		b.WriteString(t.Label.Render("DAILY UPLOADS"))
		b.WriteString("\n")
		b.WriteString(renderBarChart(t, m.points, min(width-4, 60)))
		b.WriteString("\n")
	}

	b.WriteString(t.Muted.Render("r refresh"))
	return b.String()
}

// renderBarChart draws one horizontal bar per point, scaled to chartWidth.
func renderBarChart(t Theme, points []app.ChartPoint, chartWidth int) string {
	maxVal := 0
	labelWidth := 0
	for _, p := range points {
		if p.Value > maxVal {
			maxVal = p.Value
		}
		if len(p.Label) > labelWidth {
			labelWidth = len(p.Label)
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}
	barSpace := chartWidth - labelWidth - 8
	if barSpace < 4 {
		barSpace = 4
	}

	var b strings.Builder
	for i, p := range points {
		n := p.Value * barSpace / maxVal
		if p.Value > 0 && n == 0 {
			n = 1
		}
		b.WriteString(fmt.Sprintf("%-*s ", labelWidth, p.Label))
		b.WriteString(t.Bar.Render(strings.Repeat("█", n)))
		b.WriteString(fmt.Sprintf(" %d", p.Value))
		if i < len(points)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
