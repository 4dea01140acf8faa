// Package auth orchestrates the session lifecycle: signup, login, logout and
// refresh-token rotation over the credential store and the token issuer.
package auth

import (
	"context"
	"strings"

	"github.com/farmers-portal/auth-service/token"
	"github.com/farmers-portal/auth-service/users"
	"github.com/pkg/errors"
)

// Service wires the credential store and the token issuer together.
type Service struct {
	repo   users.Repo
	issuer *token.Issuer
}

func NewService(repo users.Repo, issuer *token.Issuer) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[auth.NewService] users repo is required")
	}
	if issuer == nil {
		return nil, errors.New("[auth.NewService] token issuer is required")
	}
	return &Service{repo: repo, issuer: issuer}, nil
}

// SignupRequest carries the fields accepted at registration. Role defaults to
// farmer and may never be admin.
type SignupRequest struct {
	Name     string
	Email    string
	Password string
	Role     users.RoleType
	Phone    string
	Location string
	LandSize float64
	SoilType string
}

// Session is the result of a successful signup, login or refresh: a freshly
// issued token pair plus the sanitized user.
type Session struct {
	User         *users.User
	AccessToken  string
	RefreshToken string
}

// Signup creates a new user with a hashed password and issues the first token
// pair. Duplicate emails are matched case-insensitively.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	role := req.Role
	if role == "" {
		role = users.RoleFarmer
	}
	if role == users.RoleAdmin {
		return nil, ErrAdminSignup
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Signup] HashPassword")
	}

	soilType := req.SoilType
	if soilType == "" {
		soilType = users.DefaultSoilType
	}

	user := &users.User{
		Name:               strings.TrimSpace(req.Name),
		Email:              normalizeEmail(req.Email),
		PasswordHash:       hash,
		Role:               role,
		Phone:              strings.TrimSpace(req.Phone),
		Location:           strings.TrimSpace(req.Location),
		LandSize:           req.LandSize,
		SoilType:           soilType,
		Crops:              []string{},
		Skills:             []string{},
		Documents:          []users.Document{},
		ValidTokens:        []string{},
		ValidRefreshTokens: []string{},
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, users.ErrEmailInUse) {
			return nil, users.ErrEmailInUse
		}
		return nil, errors.Wrap(err, "[Service.Signup] Insert")
	}

	pair, err := s.issuer.Issue(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Signup] Issue")
	}

	return &Session{User: user.Sanitized(), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Login verifies the credentials and issues a fresh token pair. Unknown email
// and wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[Service.Login] GetByEmail")
	}

	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuer.Issue(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] Issue")
	}

	return &Session{User: user.Sanitized(), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Logout resolves the user from the refresh token and clears both allowlists,
// revoking every outstanding token at once. The refresh token's signature and
// expiry are verified, but its allowlist membership is not checked: an
// unrevoked refresh token can trigger a full revocation even after its access
// tokens are gone.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return errors.Wrap(err, "[Service.Logout] VerifyRefresh")
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, "[Service.Logout] GetByID")
	}

	if err := s.issuer.RevokeAll(ctx, user); err != nil {
		return errors.Wrap(err, "[Service.Logout] RevokeAll")
	}
	return nil
}

// Refresh rotates a refresh token: the presented token must verify, reference
// an existing user and still be in the allowlist; it is then removed and a new
// pair issued. Verification failures pass through as token package errors so
// the transport can distinguish expired from malformed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "[Service.Refresh] GetByID")
	}

	pair, err := s.issuer.RotateRefresh(ctx, user, refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrRefreshNotFound) {
			return nil, ErrRefreshRevoked
		}
		return nil, errors.Wrap(err, "[Service.Refresh] RotateRefresh")
	}

	return &Session{User: user.Sanitized(), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
