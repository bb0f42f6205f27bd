package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Route
	}{
		{name: "login", in: "/login", want: RouteLogin},
		{name: "home", in: "/", want: RouteHome},
		{name: "my articles", in: "/my-articles", want: RouteMyArticles},
		{name: "admin users", in: "/admin/users", want: RouteAdminUsers},
		{name: "unknown path goes home", in: "/no-such-page", want: RouteHome},
		{name: "empty path goes home", in: "", want: RouteHome},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveRoute(tc.in))
		})
	}
}

func TestRouteTableCoversEveryRoute(t *testing.T) {
	for _, r := range []Route{RouteLogin, RouteHome, RouteMyArticles, RouteAdmin, RouteAdminUsers, RouteAdminArticles} {
		_, ok := routeTable[r]
		require.True(t, ok, "route %s missing from table", r)
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		state    SessionState
		required Privilege
		want     Decision
	}{
		{name: "checking shows loading, no redirect", state: SessionChecking, required: PrivilegeUser, want: DecisionShowLoading},
		{name: "checking on admin target also shows loading", state: SessionChecking, required: PrivilegeAdmin, want: DecisionShowLoading},
		{name: "unauthenticated user target", state: SessionUnauthenticated, required: PrivilegeUser, want: DecisionRedirectLogin},
		{name: "unauthenticated admin target redirects to login not home", state: SessionUnauthenticated, required: PrivilegeAdmin, want: DecisionRedirectLogin},
		{name: "user on user target", state: SessionUser, required: PrivilegeUser, want: DecisionRender},
		{name: "user on admin target redirects home not login", state: SessionUser, required: PrivilegeAdmin, want: DecisionRedirectHome},
		{name: "admin on admin target", state: SessionAdmin, required: PrivilegeAdmin, want: DecisionRender},
		{name: "admin on user target", state: SessionAdmin, required: PrivilegeUser, want: DecisionRender},
		{name: "public renders even while checking", state: SessionChecking, required: PrivilegePublic, want: DecisionRender},
		{name: "public renders unauthenticated", state: SessionUnauthenticated, required: PrivilegePublic, want: DecisionRender},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.state, tc.required))
		})
	}
}

func TestDecideGuardScenarios(t *testing.T) {
	// The end-to-end guard paths: target route -> decision.
	assert.Equal(t, DecisionShowLoading, Decide(SessionChecking, RequiredPrivilege(ResolveRoute("/my-articles"))))
	assert.Equal(t, DecisionRedirectLogin, Decide(SessionUnauthenticated, RequiredPrivilege(ResolveRoute("/admin"))))
	assert.Equal(t, DecisionRedirectHome, Decide(SessionUser, RequiredPrivilege(ResolveRoute("/admin/users"))))
	assert.Equal(t, DecisionRender, Decide(SessionAdmin, RequiredPrivilege(ResolveRoute("/admin/articles"))))
}
