package identity_test

import (
	"strings"
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"asdf@asdf.com", true},
		{"user.name+tag@example.co.uk", true},
		{"", false},
		{"not-an-email", false},
		{"@missing-local.com", false},
		{"missing-domain@", false},
	}

	for _, tc := range tests {
		err := identity.ValidateEmail(tc.email)
		if tc.valid {
			assert.NoError(t, err, "email %q", tc.email)
		} else {
			assert.True(t, identity.IsValidation(err), "email %q: got %v", tc.email, err)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"heythere12_", true},
		{"abc", true},
		{strings.Repeat("a", identity.MaxUsernameLength), true},
		{"", false},
		{"bl", false},
		{strings.Repeat("a", identity.MaxUsernameLength+1), false},
		{"has space", false},
		{"has-dash", false},
		{"has@sign", false},
	}

	for _, tc := range tests {
		err := identity.ValidateUsername(tc.username)
		if tc.valid {
			assert.NoError(t, err, "username %q", tc.username)
		} else {
			assert.True(t, identity.IsValidation(err), "username %q: got %v", tc.username, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Asdflba09", true},
		{"a1234567", true},
		{"", false},
		{"xxxxxx", false},
		{"xxxxxxxx", false},
		{"12345678", false},
		{"Asdf09", false},
	}

	for _, tc := range tests {
		err := identity.ValidatePassword(tc.password)
		if tc.valid {
			assert.NoError(t, err, "password %q", tc.password)
		} else {
			assert.True(t, identity.IsValidation(err), "password %q: got %v", tc.password, err)
		}
	}
}
