package tui

import (
	"postprep-cli/internal/api"
	"postprep-cli/internal/app"

	tea "github.com/charmbracelet/bubbletea"
)

// Run wires the shell model into the client's two global hooks and blocks
// until the program exits. The interceptor's expiry handler clears the
// session, drops the stored cookie, and forces the login view from outside
// the event loop.
func Run(session *app.Session, client *api.Client) error {
	model := NewModel(session, client)
	p := tea.NewProgram(model, tea.WithAltScreen())

	client.SetLoginActive(model.LoginViewActive)
	client.SetSessionExpiredHandler(func() {
		session.Clear()
		p.Send(SessionExpiredMsg{})
	})

	_, err := p.Run()
	return err
}
