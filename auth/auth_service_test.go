package auth_test

import (
	"context"
	"testing"

	"github.com/farmers-portal/auth-service/auth"
	"github.com/farmers-portal/auth-service/token"
	"github.com/farmers-portal/auth-service/users"
	"github.com/farmers-portal/auth-service/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testUserName     = "Asha"
	testUserEmail    = "asha@example.com"
	testUserPassword = "secret12"
)

type testFixture struct {
	repo    *repofake.FakeUserRepo
	issuer  *token.Issuer
	service *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	repo := repofake.NewFakeUserRepo()
	issuer := token.NewIssuer(repo,
		token.NewHMACSigner("access-secret"),
		token.NewHMACSigner("refresh-secret"),
	)
	service, err := auth.NewService(repo, issuer)
	require.NoError(t, err)

	return &testFixture{repo: repo, issuer: issuer, service: service}
}

func (f *testFixture) signup(t *testing.T) *auth.Session {
	t.Helper()
	session, err := f.service.Signup(context.Background(), auth.SignupRequest{
		Name:     testUserName,
		Email:    testUserEmail,
		Password: testUserPassword,
	})
	require.NoError(t, err)
	return session
}

func TestSignupDefaults(t *testing.T) {
	f := setupTestFixture(t)

	session := f.signup(t)
	require.Equal(t, users.RoleFarmer, session.User.Role)
	require.Equal(t, users.DefaultSoilType, session.User.SoilType)
	require.Equal(t, testUserEmail, session.User.Email)
	require.Empty(t, session.User.PasswordHash)
	require.Nil(t, session.User.ValidTokens)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)

	// the stored record carries the hash, never the raw password
	stored, err := f.repo.GetByEmail(context.Background(), testUserEmail)
	require.NoError(t, err)
	require.NotEmpty(t, stored.PasswordHash)
	require.NotEqual(t, testUserPassword, stored.PasswordHash)
}

func TestSignupNormalizesEmail(t *testing.T) {
	f := setupTestFixture(t)

	session, err := f.service.Signup(context.Background(), auth.SignupRequest{
		Name:     testUserName,
		Email:    "  Asha@Example.COM ",
		Password: testUserPassword,
	})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", session.User.Email)
}

func TestSignupDuplicateEmailCaseInsensitive(t *testing.T) {
	f := setupTestFixture(t)
	f.signup(t)

	_, err := f.service.Signup(context.Background(), auth.SignupRequest{
		Name:     "Another",
		Email:    "ASHA@example.com",
		Password: "different-password",
	})
	require.ErrorIs(t, err, users.ErrEmailInUse)
}

func TestSignupRejectsAdminRole(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Signup(context.Background(), auth.SignupRequest{
		Name:     testUserName,
		Email:    testUserEmail,
		Password: testUserPassword,
		Role:     users.RoleAdmin,
	})
	require.ErrorIs(t, err, auth.ErrAdminSignup)

	// no user was created
	_, err = f.repo.GetByEmail(context.Background(), testUserEmail)
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Signup(context.Background(), auth.SignupRequest{
		Name:     testUserName,
		Email:    testUserEmail,
		Password: testUserPassword,
		Role:     users.RoleType("landlord"),
	})
	require.ErrorIs(t, err, auth.ErrInvalidRole)
}

func TestLoginIssuesFreshPair(t *testing.T) {
	f := setupTestFixture(t)
	signupSession := f.signup(t)

	loginSession, err := f.service.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.NotEqual(t, signupSession.AccessToken, loginSession.AccessToken)
	require.NotEqual(t, signupSession.RefreshToken, loginSession.RefreshToken)

	// both pairs are honoured: allowlists grow on every issuance
	stored, err := f.repo.GetByEmail(context.Background(), testUserEmail)
	require.NoError(t, err)
	require.Len(t, stored.ValidTokens, 2)
	require.Len(t, stored.ValidRefreshTokens, 2)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := setupTestFixture(t)
	f.signup(t)

	_, wrongPassword := f.service.Login(context.Background(), testUserEmail, "wrong-password")
	_, unknownEmail := f.service.Login(context.Background(), "nobody@example.com", testUserPassword)

	require.ErrorIs(t, wrongPassword, auth.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, auth.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogoutRevokesAllTokens(t *testing.T) {
	f := setupTestFixture(t)
	signupSession := f.signup(t)

	loginSession, err := f.service.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	// logging out with the login refresh token revokes the signup pair too
	require.NoError(t, f.service.Logout(context.Background(), loginSession.RefreshToken))

	stored, err := f.repo.GetByEmail(context.Background(), testUserEmail)
	require.NoError(t, err)
	require.Empty(t, stored.ValidTokens)
	require.Empty(t, stored.ValidRefreshTokens)
	require.False(t, stored.HasAccessToken(signupSession.AccessToken))
}

func TestLogoutWithMalformedToken(t *testing.T) {
	f := setupTestFixture(t)
	f.signup(t)

	err := f.service.Logout(context.Background(), "garbage")
	require.ErrorIs(t, err, token.ErrTokenMalformed)
}

func TestLogoutDoesNotRequireAllowlistMembership(t *testing.T) {
	f := setupTestFixture(t)
	session := f.signup(t)

	// first logout revokes everything; the refresh token stays
	// cryptographically valid, so a second logout still resolves the user
	// and succeeds rather than failing as revoked
	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
}

func TestRefreshRotatesToken(t *testing.T) {
	f := setupTestFixture(t)
	session := f.signup(t)

	rotated, err := f.service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, session.RefreshToken, rotated.RefreshToken)
	require.Empty(t, rotated.User.PasswordHash)

	stored, err := f.repo.GetByEmail(context.Background(), testUserEmail)
	require.NoError(t, err)
	require.False(t, stored.HasRefreshToken(session.RefreshToken))
	require.True(t, stored.HasRefreshToken(rotated.RefreshToken))
}

func TestRefreshIsSingleUse(t *testing.T) {
	f := setupTestFixture(t)
	session := f.signup(t)

	_, err := f.service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)

	_, err = f.service.Refresh(context.Background(), session.RefreshToken)
	require.ErrorIs(t, err, auth.ErrRefreshRevoked)
}

func TestRefreshWithMalformedToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Refresh(context.Background(), "garbage")
	require.ErrorIs(t, err, token.ErrTokenMalformed)
}
