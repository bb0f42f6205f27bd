package tui

import (
	"context"
	"strings"

	"postprep-cli/internal/api"
	"postprep-cli/internal/app"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

type adminUsersMsg struct {
	seq   int
	users []app.User
	err   error
}

type adminUserDeletedMsg struct {
	id  string
	err error
}

// adminUsersModel manages all accounts. Deleting a user cascades to their
// articles on the backend.
type adminUsersModel struct {
	theme  Theme
	client *api.Client

	table    table.Model
	users    []app.User
	loading  bool
	fetchSeq int
	errMsg   string
}

func newAdminUsersModel(theme Theme, client *api.Client) adminUsersModel {
	columns := []table.Column{
		{Title: "Username", Width: 20},
		{Title: "Email", Width: 30},
		{Title: "Role", Width: 8},
	}
	tbl := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(14))
	return adminUsersModel{theme: theme, client: client, table: tbl}
}

func (m adminUsersModel) editing() bool { return false }

func (m adminUsersModel) load() (adminUsersModel, tea.Cmd) {
	m.loading = true
	m.errMsg = ""
	m.fetchSeq++
	seq := m.fetchSeq
	client := m.client
	return m, func() tea.Msg {
		users, err := client.AdminUsers(context.Background())
		return adminUsersMsg{seq: seq, users: users, err: err}
	}
}

func (m adminUsersModel) deleteSelected() (adminUsersModel, tea.Cmd) {
	row := m.table.Cursor()
	if row < 0 || row >= len(m.users) {
		return m, nil
	}
	id := m.users[row].ID
	m.loading = true
	client := m.client
	return m, func() tea.Msg {
		return adminUserDeletedMsg{id: id, err: client.AdminDeleteUser(context.Background(), id)}
	}
}

func (m adminUsersModel) Update(msg tea.Msg) (adminUsersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m.load()
		case "d":
			return m.deleteSelected()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case adminUsersMsg:
		if msg.seq != m.fetchSeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = messageFromError(msg.err, "Failed to fetch users")
			return m, nil
		}
		m.users = msg.users
		rows := make([]table.Row, 0, len(msg.users))
		for _, u := range msg.users {
			rows = append(rows, table.Row{u.Username, u.Email, string(u.Role)})
		}
		m.table.SetRows(rows)
		return m, nil

	case adminUserDeletedMsg:
		if msg.err != nil {
			m.loading = false
			m.errMsg = messageFromError(msg.err, "Failed to delete user")
			return m, nil
		}
		return m.load()
	}
	return m, nil
}

func (m adminUsersModel) View(width int, spin string) string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.PaneTitle.Render("Admin / Users"))
	if m.loading {
		b.WriteString("  " + t.Spinner.Render(spin))
	}
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(t.ErrorText.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	if !m.loading && len(m.users) == 0 && m.errMsg == "" {
		b.WriteString(t.Muted.Render("No users."))
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("d delete user (cascades articles) | r refresh"))
	return b.String()
}
