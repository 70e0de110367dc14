package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("defaults to agent role", func(t *testing.T) {
		user, err := NewUser("alice@example.com", "password123", "")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, RoleAgent, user.Role)
		assert.False(t, user.IsAdmin())
	})

	t.Run("admin role", func(t *testing.T) {
		user, err := NewUser("root@example.com", "password123", RoleAdmin)
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "password123", "")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("password too short", func(t *testing.T) {
		_, err := NewUser("bob@example.com", "short", "")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("password too long", func(t *testing.T) {
		_, err := NewUser("bob@example.com", strings.Repeat("x", 73), "")
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})
}

func TestUserValidate_HashedPasswordOnly(t *testing.T) {
	user := &User{
		ID:             uuid.New(),
		Email:          "carol@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
		Role:           RoleAgent,
	}
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), ErrEmptyPassword)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = ParseRole("AGENT")
	require.NoError(t, err)
	assert.Equal(t, RoleAgent, role)

	// Roles are case sensitive
	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = ParseRole("")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
