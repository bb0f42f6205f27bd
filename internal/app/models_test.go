package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Role
		wantErr bool
	}{
		{name: "user", in: "USER", want: RoleUser},
		{name: "admin", in: "ADMIN", want: RoleAdmin},
		{name: "lowercase accepted", in: "admin", want: RoleAdmin},
		{name: "padded", in: " USER ", want: RoleUser},
		{name: "unknown rejected", in: "SUPERADMIN", wantErr: true},
		{name: "empty rejected", in: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRole(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUserValidate(t *testing.T) {
	valid := User{ID: "1", Username: "a", Email: "a@b.c", Role: RoleUser}
	assert.NoError(t, valid.Validate())

	noID := valid
	noID.ID = ""
	assert.Error(t, noID.Validate())

	noNames := valid
	noNames.Username = ""
	noNames.Email = ""
	assert.Error(t, noNames.Validate())

	badRole := valid
	badRole.Role = Role("GUEST")
	assert.Error(t, badRole.Validate())

	emailOnly := valid
	emailOnly.Username = ""
	assert.NoError(t, emailOnly.Validate())
	assert.Equal(t, "a@b.c", emailOnly.DisplayName())
}

func TestArticleBestTitle(t *testing.T) {
	a := Article{Title: "stored"}
	assert.Equal(t, "stored", a.BestTitle())

	a = Article{Output: &AnalysisResult{Title: "generated"}}
	assert.Equal(t, "generated", a.BestTitle())

	a = Article{}
	assert.Equal(t, "Untitled Document", a.BestTitle())
}
