package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionState_Valid(t *testing.T) {
	user := User{ID: "1", Name: "Jo", Email: "jo@example.org"}

	tests := []struct {
		name  string
		state SessionState
		want  bool
	}{
		{"anonymous", Anonymous(), true},
		{"authenticating", Authenticating(), true},
		{"authenticated", Authenticated(user, "tok"), true},
		{"error", Failed("storage unavailable"), true},
		{"token without user", SessionState{Status: StatusAuthenticated, Token: "tok"}, false},
		{"user without token", SessionState{Status: StatusAuthenticated, User: &user}, false},
		{"anonymous with token", SessionState{Status: StatusAnonymous, Token: "tok"}, false},
		{"error with user", SessionState{Status: StatusError, User: &user}, false},
		{"unknown status", SessionState{Status: Status(42)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Valid())
		})
	}
}

func TestAuthenticated_CopiesUser(t *testing.T) {
	user := User{Name: "Jo"}
	st := Authenticated(user, "tok")
	user.Name = "changed"
	require.Equal(t, "Jo", st.User.Name)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "anonymous", StatusAnonymous.String())
	assert.Equal(t, "authenticated", StatusAuthenticated.String())
	assert.Equal(t, "status(9)", Status(9).String())
}

func TestExperienceLevel_Valid(t *testing.T) {
	assert.True(t, ExperienceBeginner.Valid())
	assert.True(t, ExperienceAdvanced.Valid())
	assert.False(t, ExperienceLevel("").Valid())
	assert.False(t, ExperienceLevel("expert").Valid())
	assert.Len(t, ExperienceValues(), len(ExperienceOptions))
}

func TestProfileUpdate_Changes(t *testing.T) {
	current := User{Name: "Jo", Email: "jo@example.org", SoftwareExperience: ExperienceBeginner}
	name, email, sw := "X", "jo@example.org", ExperienceBeginner
	hw := ExperienceAdvanced

	got := ProfileUpdate{Name: &name, Email: &email, SoftwareExperience: &sw, HardwareExperience: &hw}.Changes(current)

	require.NotNil(t, got.Name)
	assert.Equal(t, "X", *got.Name)
	assert.Nil(t, got.Email, "unchanged email must be dropped")
	assert.Nil(t, got.SoftwareExperience, "unchanged experience must be dropped")
	require.NotNil(t, got.HardwareExperience)
	assert.False(t, got.Empty())

	assert.True(t, ProfileUpdate{Email: &email}.Changes(current).Empty())
}

func TestUser_DisplayInitials(t *testing.T) {
	assert.Equal(t, "AL", User{Name: "ada lovelace byron"}.DisplayInitials())
	assert.Equal(t, "J", User{Name: "Jo"}.DisplayInitials())
	assert.Equal(t, "ZZ", User{Name: "Jo", Initials: "ZZ"}.DisplayInitials())
	assert.Equal(t, "", User{}.DisplayInitials())
}
