package tui

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"postprep-cli/internal/api"
	"postprep-cli/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type hydratedMsg struct{}

// SessionExpiredMsg is injected from outside the event loop when the 401
// interceptor gives up on a request.
type SessionExpiredMsg struct{}

type loggedOutMsg struct{}

// Model is the application shell. It owns the current route; every
// navigation goes through the guard, which decides between rendering,
// showing the hydration spinner, or redirecting.
type Model struct {
	session *app.Session
	client  *api.Client
	theme   Theme
	keys    keyMap
	help    helpModel

	width    int
	height   int
	showHelp bool

	route    app.Route
	pending  app.Route
	checking bool

	spin spinner.Model

	login         loginModel
	upload        uploadModel
	articles      articlesModel
	admin         adminModel
	adminUsers    adminUsersModel
	adminArticles adminArticlesModel

	// routeRef mirrors the active route for the interceptor's login-view
	// probe, which runs outside the event loop.
	routeRef *atomic.Value
}

func NewModel(session *app.Session, client *api.Client) *Model {
	theme := NewTheme()
	keys := defaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	routeRef := &atomic.Value{}
	routeRef.Store(string(app.RouteHome))

	return &Model{
		session:       session,
		client:        client,
		theme:         theme,
		keys:          keys,
		help:          newHelpModel(theme, keys),
		width:         80,
		height:        24,
		route:         app.RouteHome,
		pending:       app.RouteHome,
		checking:      true,
		spin:          sp,
		login:         newLoginModel(theme, client),
		upload:        newUploadModel(theme, client),
		articles:      newArticlesModel(theme, client),
		admin:         newAdminModel(theme, client),
		adminUsers:    newAdminUsersModel(theme, client),
		adminArticles: newAdminArticlesModel(theme, client),
		routeRef:      routeRef,
	}
}

// LoginViewActive reports whether the login view is showing. Safe to call
// from outside the event loop.
func (m *Model) LoginViewActive() bool {
	v, _ := m.routeRef.Load().(string)
	return v == string(app.RouteLogin)
}

func (m *Model) Init() tea.Cmd {
	session := m.session
	return tea.Batch(
		m.spin.Tick,
		func() tea.Msg {
			session.Hydrate()
			return hydratedMsg{}
		},
	)
}

func (m *Model) setRoute(r app.Route) {
	m.route = r
	m.routeRef.Store(string(r))
}

// navigate runs the guard for the target path and applies its decision.
func (m *Model) navigate(path string) tea.Cmd {
	route := app.ResolveRoute(path)
	switch app.Decide(m.session.State(), app.RequiredPrivilege(route)) {
	case app.DecisionShowLoading:
		m.checking = true
		m.pending = route
		return nil
	case app.DecisionRedirectLogin:
		m.checking = false
		m.setRoute(app.RouteLogin)
		return nil
	case app.DecisionRedirectHome:
		m.checking = false
		return m.navigate(string(app.RouteHome))
	default:
		m.checking = false
		m.setRoute(route)
		return m.enterCmd(route)
	}
}

// enterCmd kicks off the data fetch a view needs when it becomes active.
func (m *Model) enterCmd(route app.Route) tea.Cmd {
	var cmd tea.Cmd
	switch route {
	case app.RouteMyArticles:
		m.articles, cmd = m.articles.load()
	case app.RouteAdmin:
		m.admin, cmd = m.admin.load()
	case app.RouteAdminUsers:
		m.adminUsers, cmd = m.adminUsers.load()
	case app.RouteAdminArticles:
		m.adminArticles, cmd = m.adminArticles.load()
	}
	return cmd
}

func (m *Model) logoutCmd() tea.Cmd {
	session := m.session
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		session.Logout(ctx)
		client.ClearCredentials()
		return loggedOutMsg{}
	}
}

func (m *Model) activeEditing() bool {
	switch m.route {
	case app.RouteLogin:
		return m.login.editing()
	case app.RouteHome:
		return m.upload.editing()
	default:
		return false
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)
		var c1, c2 tea.Cmd
		m.articles, c1 = m.articles.Update(msg)
		m.adminArticles, c2 = m.adminArticles.Update(msg)
		return m, tea.Batch(c1, c2)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case hydratedMsg:
		m.checking = false
		return m, m.navigate(string(m.pending))

	case SessionExpiredMsg:
		// Session already cleared by the interceptor handler.
		m.login = m.login.reset("")
		m.login.errMsg = "Session expired. Please log in again."
		return m, m.navigate(string(app.RouteLogin))

	case loggedOutMsg:
		m.login = m.login.reset("")
		return m, m.navigate(string(app.RouteLogin))

	case loginResultMsg:
		if msg.err != nil {
			m.login = m.login.handleResult(msg)
			return m, nil
		}
		if err := m.session.Login(msg.user); err != nil {
			m.login = m.login.handleResult(loginResultMsg{err: err})
			return m, nil
		}
		m.login = m.login.reset("")
		return m, m.navigate(string(app.RouteHome))

	case registerResultMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd

	case uploadResultMsg:
		var cmd tea.Cmd
		m.upload, cmd = m.upload.Update(msg)
		return m, cmd

	case articlesLoadedMsg, articleDetailMsg, articleDeletedMsg:
		var cmd tea.Cmd
		m.articles, cmd = m.articles.Update(msg)
		return m, cmd

	case adminStatsMsg:
		var cmd tea.Cmd
		m.admin, cmd = m.admin.Update(msg)
		return m, cmd

	case adminUsersMsg, adminUserDeletedMsg:
		var cmd tea.Cmd
		m.adminUsers, cmd = m.adminUsers.Update(msg)
		return m, cmd

	case adminArticlesMsg, adminArticleDeletedMsg:
		var cmd tea.Cmd
		m.adminArticles, cmd = m.adminArticles.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.checking {
		return m, nil
	}

	if !m.activeEditing() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.route != app.RouteMyArticles && m.route != app.RouteAdminArticles {
				return m, tea.Quit
			}
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Home):
			return m, m.navigate(string(app.RouteHome))
		case key.Matches(msg, m.keys.MyArticles):
			return m, m.navigate(string(app.RouteMyArticles))
		case key.Matches(msg, m.keys.Admin):
			return m, m.navigate(string(app.RouteAdmin))
		case key.Matches(msg, m.keys.AdminUsers):
			return m, m.navigate(string(app.RouteAdminUsers))
		case key.Matches(msg, m.keys.AdminArticles):
			return m, m.navigate(string(app.RouteAdminArticles))
		case key.Matches(msg, m.keys.Logout):
			if m.route != app.RouteLogin {
				return m, m.logoutCmd()
			}
		}
	}

	return m.delegateKey(msg)
}

func (m *Model) delegateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.route {
	case app.RouteLogin:
		m.login, cmd = m.login.Update(msg)
	case app.RouteHome:
		m.upload, cmd = m.upload.Update(msg)
	case app.RouteMyArticles:
		m.articles, cmd = m.articles.Update(msg)
	case app.RouteAdmin:
		m.admin, cmd = m.admin.Update(msg)
	case app.RouteAdminUsers:
		m.adminUsers, cmd = m.adminUsers.Update(msg)
	case app.RouteAdminArticles:
		m.adminArticles, cmd = m.adminArticles.Update(msg)
	}
	return m, cmd
}

func (m *Model) topBar() string {
	t := m.theme
	left := t.TopBarTitle.Render("PostPrep") + "  " + t.TopBarMeta.Render(string(m.route))

	right := t.TopBarMeta.Render("not signed in")
	if u := m.session.CurrentUser(); u != nil {
		badge := u.DisplayName()
		if u.Role == app.RoleAdmin {
			badge += " [admin]"
		}
		right = t.TopBarBadge.Render(badge)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return t.TopBar.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) footer() string {
	t := m.theme
	if m.route == app.RouteLogin {
		return t.Footer.Render("enter submit | tab next field | ctrl+c quit")
	}
	return t.Footer.Render("u upload | m my articles | a admin | l logout | ? help | q quit")
}

func (m *Model) View() string {
	var body string
	switch {
	case m.checking:
		body = m.theme.Muted.Render(m.spin.View() + " checking session...")
	case m.showHelp:
		admin := false
		if u := m.session.CurrentUser(); u != nil {
			admin = u.Role == app.RoleAdmin
		}
		body = m.help.View(admin)
	default:
		spin := m.spin.View()
		switch m.route {
		case app.RouteLogin:
			body = m.login.View(m.width, spin)
		case app.RouteHome:
			body = m.upload.View(m.width, spin)
		case app.RouteMyArticles:
			body = m.articles.View(m.width, spin)
		case app.RouteAdmin:
			body = m.admin.View(m.width, spin)
		case app.RouteAdminUsers:
			body = m.adminUsers.View(m.width, spin)
		case app.RouteAdminArticles:
			body = m.adminArticles.View(m.width, spin)
		}
	}

	return m.topBar() + "\n\n" + body + "\n\n" + m.footer()
}
