package users_test

import (
	"encoding/json"
	"testing"

	"github.com/farmers-portal/auth-service/users"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := users.HashPassword("secret12")
	require.NoError(t, err)
	require.NotEqual(t, "secret12", hash)

	require.True(t, users.CheckPasswordHash("secret12", hash))
	require.False(t, users.CheckPasswordHash("wrong", hash))
}

func TestSanitizedStripsCredentials(t *testing.T) {
	user := users.User{
		ID:                 "u1",
		Name:               "Asha",
		Email:              "asha@example.com",
		PasswordHash:       "hash",
		ValidTokens:        []string{"a"},
		ValidRefreshTokens: []string{"r"},
	}

	sanitized := user.Sanitized()
	require.Empty(t, sanitized.PasswordHash)
	require.Nil(t, sanitized.ValidTokens)
	require.Nil(t, sanitized.ValidRefreshTokens)

	// the original is untouched
	require.Equal(t, "hash", user.PasswordHash)
	require.Equal(t, []string{"a"}, user.ValidTokens)
}

func TestUserJSONNeverContainsCredentials(t *testing.T) {
	user := users.User{
		ID:                 "u1",
		Name:               "Asha",
		Email:              "asha@example.com",
		PasswordHash:       "hash",
		ValidTokens:        []string{"access-token"},
		ValidRefreshTokens: []string{"refresh-token"},
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.NotContains(t, fields, "password")
	require.NotContains(t, fields, "validTokens")
	require.NotContains(t, fields, "validRefreshTokens")
	require.NotContains(t, string(raw), "access-token")
	require.NotContains(t, string(raw), "hash")
}

func TestRoleValidity(t *testing.T) {
	require.True(t, users.RoleFarmer.Valid())
	require.True(t, users.RoleBuyer.Valid())
	require.True(t, users.RoleAdmin.Valid())
	require.False(t, users.RoleType("landlord").Valid())
}

func TestAllowlistMembership(t *testing.T) {
	user := users.User{
		ValidTokens:        []string{"a1", "a2"},
		ValidRefreshTokens: []string{"r1"},
	}
	require.True(t, user.HasAccessToken("a2"))
	require.False(t, user.HasAccessToken("r1"))
	require.True(t, user.HasRefreshToken("r1"))
	require.False(t, user.HasRefreshToken("a1"))
}
