package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Username string   `json:"username" validate:"required,max=10"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Images   []string `json:"images" validate:"max=2"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(&signupRequest{Username: "alice", Email: "a@example.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestMessage_UsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&signupRequest{Username: "", Email: "nope", Password: "123"})
	require.Error(t, err)

	msg := Message(err)
	assert.Contains(t, msg, "username is required")
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "password must be at least 6 characters")
	assert.NotContains(t, msg, "signupRequest")
}

func TestMessage_SliceMax(t *testing.T) {
	v := New()

	err := v.Validate(&signupRequest{
		Username: "alice",
		Email:    "a@example.com",
		Password: "secret1",
		Images:   []string{"a", "b", "c"},
	})
	require.Error(t, err)
	assert.Equal(t, "images must have at most 2 entries", Message(err))
}

func TestMessage_NonValidationError(t *testing.T) {
	assert.Equal(t, "Invalid request body", Message(errors.New("boom")))
}
