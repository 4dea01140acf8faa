package token

import (
	"context"
	"time"

	"github.com/farmers-portal/auth-service/users"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	defaultAccessTokenExpiry  = 15 * time.Minute
	defaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// ErrRefreshNotFound is returned by RotateRefresh when the presented refresh
// token is absent from the user's allowlist: it was already rotated or
// revoked, so reuse is treated as replay.
var ErrRefreshNotFound = errors.New("refresh token not in allowlist")

// Pair is a freshly issued access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer mints signed access/refresh token pairs bound to a user and records
// them in that user's allowlists. Access and refresh tokens are signed with
// distinct secrets so compromise of one does not compromise the other.
type Issuer struct {
	repo          users.Repo
	accessSigner  Signer
	refreshSigner Signer
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	nowFunc       func() time.Time
}

type IssuerOption func(*Issuer)

// WithTokenExpiry overrides the access and refresh token lifetimes
func WithTokenExpiry(accessExpiry, refreshExpiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessExpiry = accessExpiry
		i.refreshExpiry = refreshExpiry
	}
}

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func NewIssuer(repo users.Repo, accessSigner, refreshSigner Signer, options ...IssuerOption) *Issuer {
	i := &Issuer{
		repo:          repo,
		accessSigner:  accessSigner,
		refreshSigner: refreshSigner,
		accessExpiry:  defaultAccessTokenExpiry,
		refreshExpiry: defaultRefreshTokenExpiry,
		nowFunc:       time.Now,
	}

	for _, opt := range options {
		opt(i)
	}
	return i
}

// Issue mints an access/refresh pair for the user, appends both to the user's
// allowlists in a single store update, and mirrors the append on the passed-in
// user so the caller's copy stays consistent with the store.
func (i *Issuer) Issue(ctx context.Context, user *users.User) (*Pair, error) {
	now := i.nowFunc()

	accessToken, err := i.accessSigner.Sign(i.newClaims(user.ID, now, i.accessExpiry))
	if err != nil {
		return nil, errors.Wrap(err, "[Issuer.Issue] sign access token")
	}
	refreshToken, err := i.refreshSigner.Sign(i.newClaims(user.ID, now, i.refreshExpiry))
	if err != nil {
		return nil, errors.Wrap(err, "[Issuer.Issue] sign refresh token")
	}

	if err := i.repo.AppendTokens(ctx, user.ID, accessToken, refreshToken); err != nil {
		return nil, errors.Wrap(err, "[Issuer.Issue] AppendTokens")
	}
	user.ValidTokens = append(user.ValidTokens, accessToken)
	user.ValidRefreshTokens = append(user.ValidRefreshTokens, refreshToken)

	return &Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RevokeAll clears both allowlists, invalidating every outstanding token of
// the user at once.
func (i *Issuer) RevokeAll(ctx context.Context, user *users.User) error {
	if err := i.repo.ClearTokens(ctx, user.ID); err != nil {
		return errors.Wrap(err, "[Issuer.RevokeAll] ClearTokens")
	}
	user.ValidTokens = []string{}
	user.ValidRefreshTokens = []string{}
	return nil
}

// RotateRefresh exchanges oldRefreshToken for a fresh pair. The old token is
// removed from the allowlist first, making it single-use. The membership check
// and the removal are separate store operations, so two concurrent rotations
// of the same token can both pass the check; the store resolves the writes
// last-write-wins.
func (i *Issuer) RotateRefresh(ctx context.Context, user *users.User, oldRefreshToken string) (*Pair, error) {
	if !user.HasRefreshToken(oldRefreshToken) {
		return nil, ErrRefreshNotFound
	}

	if err := i.repo.RemoveRefreshToken(ctx, user.ID, oldRefreshToken); err != nil {
		return nil, errors.Wrap(err, "[Issuer.RotateRefresh] RemoveRefreshToken")
	}
	kept := make([]string, 0, len(user.ValidRefreshTokens))
	for _, t := range user.ValidRefreshTokens {
		if t != oldRefreshToken {
			kept = append(kept, t)
		}
	}
	user.ValidRefreshTokens = kept

	return i.Issue(ctx, user)
}

// VerifyAccess validates an access token signature and expiry.
func (i *Issuer) VerifyAccess(raw string) (*Claims, error) {
	return verify(i.accessSigner, raw, i.nowFunc)
}

// VerifyRefresh validates a refresh token signature and expiry.
func (i *Issuer) VerifyRefresh(raw string) (*Claims, error) {
	return verify(i.refreshSigner, raw, i.nowFunc)
}

func (i *Issuer) newClaims(userID string, now time.Time, expiry time.Duration) *Claims {
	return &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(), // unique per token, two same-second issuances stay distinct
		},
	}
}
