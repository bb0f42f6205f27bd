package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// keyMap is the single source of truth for the shell's key bindings: the
// shell dispatches with key.Matches and the help overlay renders the
// bindings' own help text.
type keyMap struct {
	ForceQuit     key.Binding
	Quit          key.Binding
	Help          key.Binding
	Home          key.Binding
	MyArticles    key.Binding
	Admin         key.Binding
	AdminUsers    key.Binding
	AdminArticles key.Binding
	Logout        key.Binding
	Refresh       key.Binding
	Back          key.Binding
	Enter         key.Binding
	Delete        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ForceQuit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Quit:          key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Home:          key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload a document")),
		MyArticles:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "my articles")),
		Admin:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "admin dashboard")),
		AdminUsers:    key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "admin users")),
		AdminArticles: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "admin articles")),
		Logout:        key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log out")),
		Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh the current list")),
		Back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close detail / overlay")),
		Enter:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open selected item")),
		Delete:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete selected item")),
	}
}

type helpModel struct {
	keys  keyMap
	theme Theme
	width int
}

func newHelpModel(theme Theme, keys keyMap) helpModel {
	return helpModel{keys: keys, theme: theme, width: 80}
}

func (m *helpModel) SetWidth(width int) {
	m.width = width
}

func (m helpModel) View(admin bool) string {
	t := m.theme
	keyStyle := lipgloss.NewStyle().Bold(true)

	nav := []key.Binding{m.keys.Home, m.keys.MyArticles}
	if admin {
		nav = append(nav, m.keys.Admin, m.keys.AdminUsers, m.keys.AdminArticles)
	}
	actions := []key.Binding{
		m.keys.Refresh, m.keys.Enter, m.keys.Delete,
		m.keys.Back, m.keys.Logout, m.keys.Quit,
	}

	var b strings.Builder
	b.WriteString(t.PaneTitle.Render("postprep help"))
	b.WriteString("\n\n")

	b.WriteString(t.Label.Render("navigation"))
	b.WriteString("\n")
	for _, k := range nav {
		b.WriteString(fmt.Sprintf("  %s  %s\n", keyStyle.Render(k.Help().Key), k.Help().Desc))
	}

	b.WriteString("\n")
	b.WriteString(t.Label.Render("actions"))
	b.WriteString("\n")
	for _, k := range actions {
		b.WriteString(fmt.Sprintf("  %s  %s\n", keyStyle.Render(k.Help().Key), k.Help().Desc))
	}

	b.WriteString("\n")
	b.WriteString(t.Muted.Render("? closes this overlay"))
	return t.Pane.Width(min(m.width-2, 60)).Render(b.String())
}
