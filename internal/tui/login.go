package tui

import (
	"context"
	"errors"
	"strings"

	"postprep-cli/internal/api"
	"postprep-cli/internal/app"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	loginFieldUsername = iota
	loginFieldEmail
	loginFieldPassword
)

type loginResultMsg struct {
	user app.User
	err  error
}

type registerResultMsg struct {
	err error
}

// loginModel is the combined login/register form. Register mode adds the
// username field, mirroring the two-in-one page of the web client.
type loginModel struct {
	theme      Theme
	client     *api.Client
	isLogin    bool
	inputs     [3]textinput.Model
	focus      int
	submitting bool
	errMsg     string
	notice     string
}

func newLoginModel(theme Theme, client *api.Client) loginModel {
	m := loginModel{theme: theme, client: client, isLogin: true}

	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "example@email.com"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	m.inputs[loginFieldUsername] = username
	m.inputs[loginFieldEmail] = email
	m.inputs[loginFieldPassword] = password
	m.focus = loginFieldEmail
	m.inputs[loginFieldEmail].Focus()
	return m
}

func (m loginModel) reset(notice string) loginModel {
	m.submitting = false
	m.errMsg = ""
	m.notice = notice
	m.inputs[loginFieldPassword].SetValue("")
	return m
}

func (m loginModel) firstField() int {
	if m.isLogin {
		return loginFieldEmail
	}
	return loginFieldUsername
}

func (m loginModel) setFocus(idx int) loginModel {
	m.focus = idx
	for i := range m.inputs {
		if i == idx {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			next := m.focus + 1
			if next > loginFieldPassword {
				next = m.firstField()
			}
			return m.setFocus(next), nil
		case "shift+tab", "up":
			prev := m.focus - 1
			if prev < m.firstField() {
				prev = loginFieldPassword
			}
			return m.setFocus(prev), nil
		case "ctrl+t":
			// Toggle between sign-in and sign-up.
			m.isLogin = !m.isLogin
			m.errMsg = ""
			m.notice = ""
			return m.setFocus(m.firstField()), nil
		case "enter":
			return m.submit()
		}
	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = messageFromError(msg.err, "Registration failed")
			return m, nil
		}
		m.isLogin = true
		m = m.reset("Registration successful! Please login.")
		return m.setFocus(loginFieldEmail), nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates locally first: empty fields never produce a request.
func (m loginModel) submit() (loginModel, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[loginFieldUsername].Value())
	email := strings.TrimSpace(m.inputs[loginFieldEmail].Value())
	password := m.inputs[loginFieldPassword].Value()

	if email == "" || password == "" || (!m.isLogin && username == "") {
		m.errMsg = "All fields are required"
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	m.notice = ""
	client := m.client
	if m.isLogin {
		return m, func() tea.Msg {
			user, err := client.Login(context.Background(), email, password)
			return loginResultMsg{user: user, err: err}
		}
	}
	return m, func() tea.Msg {
		return registerResultMsg{err: client.Register(context.Background(), username, email, password)}
	}
}

// handleResult applies a failed login to the form. Successful logins are
// consumed by the root model, which adopts the profile and navigates home.
func (m loginModel) handleResult(msg loginResultMsg) loginModel {
	m.submitting = false
	if msg.err != nil {
		m.errMsg = messageFromError(msg.err, "Authentication failed")
	}
	return m
}

func (m loginModel) editing() bool { return true }

func (m loginModel) View(width int, spin string) string {
	t := m.theme
	var b strings.Builder

	title := "Welcome Back"
	action := "sign in"
	if !m.isLogin {
		title = "Get Started"
		action = "create account"
	}
	b.WriteString(t.Label.Render(strings.ToUpper(title)))
	b.WriteString("\n")
	b.WriteString(t.PaneTitle.Render("PostPrep"))
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(t.ErrorText.Render(m.errMsg))
		b.WriteString("\n\n")
	}
	if m.notice != "" {
		b.WriteString(t.Notice.Render(m.notice))
		b.WriteString("\n\n")
	}

	renderField := func(label string, idx int) {
		box := t.InputBox
		if m.focus == idx {
			box = t.InputBoxF
		}
		b.WriteString(t.Muted.Render(label))
		b.WriteString("\n")
		b.WriteString(box.Width(min(width-6, 44)).Render(m.inputs[idx].View()))
		b.WriteString("\n")
	}

	if !m.isLogin {
		renderField("username", loginFieldUsername)
	}
	renderField("email", loginFieldEmail)
	renderField("password", loginFieldPassword)

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(t.Muted.Render(spin + " authenticating..."))
	} else {
		b.WriteString(t.Muted.Render("enter " + action + " | ctrl+t "))
		if m.isLogin {
			b.WriteString(t.Muted.Render("sign up instead"))
		} else {
			b.WriteString(t.Muted.Render("sign in instead"))
		}
	}

	card := t.Pane.Width(min(width-2, 50)).Render(b.String())
	return lipgloss.Place(width, lipgloss.Height(card)+2, lipgloss.Center, lipgloss.Top, card)
}

// messageFromError keeps backend messages when they exist and falls back to
// a fixed phrase, never leaking transport details onto the form.
func messageFromError(err error, fallback string) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
