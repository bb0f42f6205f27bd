package tui

import (
	"context"
	"fmt"
	"strings"

	"postprep-cli/internal/api"
	"postprep-cli/internal/app"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type articlesLoadedMsg struct {
	seq   int
	items []app.LiteArticle
	err   error
}

type articleDetailMsg struct {
	seq     int
	article app.Article
	err     error
}

type articleDeletedMsg struct {
	id  string
	err error
}

// articlesModel lists the current user's articles and opens full
// projections on demand. Every fetch carries a sequence token; a response
// that is not the latest issued one is discarded, so a slow list fetch can
// never clobber a newer result.
type articlesModel struct {
	theme  Theme
	client *api.Client

	table   table.Model
	items   []app.LiteArticle
	loading bool
	errMsg  string

	fetchSeq  int
	detailSeq int

	detail   *app.Article
	detailVP viewport.Model

	width  int
	height int
}

func newArticlesModel(theme Theme, client *api.Client) articlesModel {
	columns := []table.Column{
		{Title: "Title", Width: 40},
		{Title: "Status", Width: 12},
		{Title: "Owner", Width: 18},
	}
	tbl := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(12))
	return articlesModel{theme: theme, client: client, table: tbl, width: 80, height: 24}
}

func (m articlesModel) editing() bool { return false }

// load issues a list fetch stamped with the next sequence token.
func (m articlesModel) load() (articlesModel, tea.Cmd) {
	m.loading = true
	m.errMsg = ""
	m.fetchSeq++
	seq := m.fetchSeq
	client := m.client
	return m, func() tea.Msg {
		items, err := client.MyArticles(context.Background())
		return articlesLoadedMsg{seq: seq, items: items, err: err}
	}
}

func (m articlesModel) openSelected() (articlesModel, tea.Cmd) {
	row := m.table.Cursor()
	if row < 0 || row >= len(m.items) {
		return m, nil
	}
	id := m.items[row].ID
	m.loading = true
	m.detailSeq++
	seq := m.detailSeq
	client := m.client
	return m, func() tea.Msg {
		article, err := client.Article(context.Background(), id)
		return articleDetailMsg{seq: seq, article: article, err: err}
	}
}

func (m articlesModel) deleteSelected() (articlesModel, tea.Cmd) {
	row := m.table.Cursor()
	if row < 0 || row >= len(m.items) {
		return m, nil
	}
	id := m.items[row].ID
	m.loading = true
	client := m.client
	return m, func() tea.Msg {
		return articleDeletedMsg{id: id, err: client.DeleteArticle(context.Background(), id)}
	}
}

func (m articlesModel) Update(msg tea.Msg) (articlesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detailVP = viewport.New(msg.Width-4, msg.Height-8)
		if m.detail != nil {
			m.detailVP.SetContent(m.detailContent())
		}
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
			return m.openSelected()
		case "d":
			return m.deleteSelected()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case articlesLoadedMsg:
		if msg.seq != m.fetchSeq {
			// Stale response from a superseded fetch.
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
			title := a.Title
			if title == "" {
				title = "Untitled Document"
			}
			rows = append(rows, table.Row{title, string(a.Status), a.Owner})
		}
		m.table.SetRows(rows)
		return m, nil

	case articleDetailMsg:
		if msg.seq != m.detailSeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = messageFromError(msg.err, "Failed to fetch article")
			return m, nil
		}
		a := msg.article
		m.detail = &a
		m.detailVP = viewport.New(m.width-4, m.height-8)
		m.detailVP.SetContent(m.detailContent())
		return m, nil

	case articleDeletedMsg:
		if msg.err != nil {
			m.loading = false
			m.errMsg = messageFromError(msg.err, "Failed to delete article")
			return m, nil
		}
		return m.load()
	}

	return m, nil
}

func (m articlesModel) detailContent() string {
	if m.detail == nil {
		return ""
	}
	t := m.theme
	a := *m.detail
	var b strings.Builder
	b.WriteString(t.PaneTitle.Render(a.BestTitle()))
	b.WriteString("\n")
	meta := fmt.Sprintf("%s | %s", a.CreatedAt.Format("Jan 2, 2006"), a.Language)
	b.WriteString(t.Muted.Render(meta))
	b.WriteString("\n\n")
	b.WriteString(renderAnalysisCard(t, a, m.width-2))
	return b.String()
}

func (m articlesModel) View(width int, spin string) string {
	t := m.theme

	if m.detail != nil {
		footer := t.Muted.Render("esc close | up/down scroll")
		return m.detailVP.View() + "\n" + footer
	}

	var b strings.Builder
	b.WriteString(t.PaneTitle.Render("My Articles"))
	if m.loading {
		b.WriteString("  " + t.Spinner.Render(spin))
	}
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(t.ErrorText.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	if !m.loading && len(m.items) == 0 && m.errMsg == "" {
		b.WriteString(t.Muted.Render("You haven't processed any documents yet."))
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("enter view | d delete | r refresh"))
	return b.String()
}
