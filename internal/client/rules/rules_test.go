package rules

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
)

func TestEmailPattern(t *testing.T) {
	for _, ok := range []string{"a@b.co", "jo.smith@example.org", "x+y@sub.domain.io"} {
		assert.True(t, EmailPattern.MatchString(ok), ok)
	}
	for _, bad := range []string{"", "plain", "a@b", "a @b.co", "@b.co", "a@.co"} {
		assert.False(t, EmailPattern.MatchString(bad), bad)
	}
}

func TestName_TrimsBeforeCounting(t *testing.T) {
	assert.NoError(t, validation.Validate("Jo", Name))
	assert.Error(t, validation.Validate(" J ", Name))
	assert.NoError(t, validation.Validate("Зоя", Name))

	var nilName *string
	assert.NoError(t, validation.Validate(nilName, Name))
}

func TestExperience_OnlyListedLevels(t *testing.T) {
	assert.NoError(t, validation.Validate(models.ExperienceIntermediate, Experience))
	assert.Error(t, validation.Validate(models.ExperienceLevel("guru"), Experience))
}

func TestFieldErrors(t *testing.T) {
	in := struct {
		Email    string
		Password string
	}{Email: "nope", Password: "short"}

	err := validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, Email),
		validation.Field(&in.Password, validation.Required, Password),
	)
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, map[string]string{
		"email":    "Please enter a valid email address",
		"password": "Password must be at least 8 characters",
	}, fields)
	assert.Equal(t, "Please enter a valid email address", FirstMessage(fields))

	assert.Nil(t, FieldErrors(assert.AnError))
	assert.Empty(t, FirstMessage(nil))
}

func TestEquals(t *testing.T) {
	assert.NoError(t, validation.Validate("same", Equals("same", "diff")))
	assert.EqualError(t, validation.Validate("other", Equals("same", "Passwords do not match")), "Passwords do not match")
}
