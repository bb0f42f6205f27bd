package tui

import (
	"context"
	"strings"

	"postprep-cli/internal/api"
	"postprep-cli/internal/app"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type adminArticlesMsg struct {
	seq   int
	items []app.Article
	err   error
}

type adminArticleDeletedMsg struct {
	id  string
	err error
}

// adminArticlesModel lists every article in the system. The endpoint
// returns full projections, so detail opens from the row in hand without a
// second fetch.
type adminArticlesModel struct {
	theme  Theme
	client *api.Client

	table    table.Model
	items    []app.Article
	loading  bool
	fetchSeq int
	errMsg   string

	detail   *app.Article
	detailVP viewport.Model

	width  int
	height int
}

func newAdminArticlesModel(theme Theme, client *api.Client) adminArticlesModel {
	columns := []table.Column{
		{Title: "Title", Width: 34},
		{Title: "Owner", Width: 18},
		{Title: "Status", Width: 12},
	}
	tbl := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(14))
	return adminArticlesModel{theme: theme, client: client, table: tbl, width: 80, height: 24}
}

func (m adminArticlesModel) editing() bool { return false }

func (m adminArticlesModel) load() (adminArticlesModel, tea.Cmd) {
	m.loading = true
	m.errMsg = ""
	m.fetchSeq++
	seq := m.fetchSeq
	client := m.client
	return m, func() tea.Msg {
		items, err := client.AdminArticles(context.Background())
		return adminArticlesMsg{seq: seq, items: items, err: err}
	}
}

func (m adminArticlesModel) deleteSelected() (adminArticlesModel, tea.Cmd) {
	row := m.table.Cursor()
	if row < 0 || row >= len(m.items) {
		return m, nil
	}
	id := m.items[row].ID
	m.loading = true
	client := m.client
	return m, func() tea.Msg {
		return adminArticleDeletedMsg{id: id, err: client.AdminDeleteArticle(context.Background(), id)}
	}
}

func (m adminArticlesModel) Update(msg tea.Msg) (adminArticlesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.detail != nil {
			switch msg.String() {
			case "esc", "q":
				m.detail = nil
				return m, nil
			}
			var cmd tea.Cmd
			m.detailVP, cmd = m.detailVP.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "r":
			return m.load()
		case "enter":
			row := m.table.Cursor()
			if row >= 0 && row < len(m.items) {
				a := m.items[row]
				m.detail = &a
				m.detailVP = viewport.New(m.width-4, m.height-8)
				m.detailVP.SetContent(renderAnalysisCard(m.theme, a, m.width-2))
			}
			return m, nil
		case "d":
			return m.deleteSelected()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case adminArticlesMsg:
		if msg.seq != m.fetchSeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = messageFromError(msg.err, "Failed to fetch articles")
			return m, nil
		}
		m.items = msg.items
		rows := make([]table.Row, 0, len(msg.items))
		for _, a := range msg.items {
			rows = append(rows, table.Row{a.BestTitle(), a.Owner, string(a.Status)})
		}
		m.table.SetRows(rows)
		return m, nil

	case adminArticleDeletedMsg:
		if msg.err != nil {
			m.loading = false
			m.errMsg = messageFromError(msg.err, "Failed to delete article")
			return m, nil
		}
		return m.load()
	}
	return m, nil
}

func (m adminArticlesModel) View(width int, spin string) string {
	t := m.theme

	if m.detail != nil {
		return m.detailVP.View() + "\n" + t.Muted.Render("esc close | up/down scroll")
	}

	var b strings.Builder
	b.WriteString(t.PaneTitle.Render("Admin / Articles"))
	if m.loading {
		b.WriteString("  " + t.Spinner.Render(spin))
	}
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(t.ErrorText.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	if !m.loading && len(m.items) == 0 && m.errMsg == "" {
		b.WriteString(t.Muted.Render("No articles."))
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("enter view | d delete | r refresh"))
	return b.String()
}
