package app

import "strings"

// Privilege is the access level a route demands.
type Privilege int

const (
	PrivilegePublic Privilege = iota
	PrivilegeUser
	PrivilegeAdmin
)

type Route string

const (
	RouteLogin         Route = "/login"
	RouteHome          Route = "/"
	RouteMyArticles    Route = "/my-articles"
	RouteAdmin         Route = "/admin"
	RouteAdminUsers    Route = "/admin/users"
	RouteAdminArticles Route = "/admin/articles"
)

// routeTable declares every route and its required privilege in one place.
// The old nesting of a general guard around an admin guard is collapsed into
// this table plus Decide.
var routeTable = map[Route]Privilege{
	RouteLogin:         PrivilegePublic,
	RouteHome:          PrivilegeUser,
	RouteMyArticles:    PrivilegeUser,
	RouteAdmin:         PrivilegeAdmin,
	RouteAdminUsers:    PrivilegeAdmin,
	RouteAdminArticles: PrivilegeAdmin,
}

// ResolveRoute maps a path to a declared route. Anything unknown resolves to
// home, the default authenticated location.
func ResolveRoute(path string) Route {
	r := Route(strings.TrimSpace(path))
	if r == "" {
		return RouteHome
	}
	if _, ok := routeTable[r]; ok {
		return r
	}
	return RouteHome
}

func RequiredPrivilege(r Route) Privilege {
	p, ok := routeTable[r]
	if !ok {
		return PrivilegeUser
	}
	return p
}

// Decision is the guard outcome. Redirects replace the current location;
// there is no history to navigate back into a denied view.
type Decision int

const (
	DecisionRender Decision = iota
	DecisionShowLoading
	DecisionRedirectLogin
	DecisionRedirectHome
)

func (d Decision) String() string {
	switch d {
	case DecisionRender:
		return "render"
	case DecisionShowLoading:
		return "loading"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Decide is the whole route guard: a pure function of the session state and
// the target's required privilege. Evaluated on every navigation.
func Decide(state SessionState, required Privilege) Decision {
	if required == PrivilegePublic {
		return DecisionRender
	}
	switch state {
	case SessionChecking:
		return DecisionShowLoading
	case SessionUnauthenticated:
		return DecisionRedirectLogin
	case SessionUser:
		if required == PrivilegeAdmin {
			return DecisionRedirectHome
		}
		return DecisionRender
	case SessionAdmin:
		return DecisionRender
	default:
		return DecisionRedirectLogin
	}
}
