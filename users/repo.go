package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailInUse = errors.New("email already in use")
)

// ProfileUpdate carries the profile fields replaced wholesale by a profile
// update. Credentials and token allowlists are never touched through it.
type ProfileUpdate struct {
	Name                   string
	Email                  string
	Phone                  string
	Location               string
	LandSize               float64
	SoilType               string
	Crops                  []string
	Skills                 []string
	ProfileImage           string
	AadharNumber           string
	FarmRegistrationNumber string
	IrrigationType         string
	Documents              []Document
}

type Repo interface {
	// Insert persists a new user. Fails with ErrEmailInUse when the email is
	// already taken.
	Insert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// AppendTokens appends one token to each allowlist in a single document
	// update, so issuance and persistence cannot be observed half-done.
	AppendTokens(ctx context.Context, id, accessToken, refreshToken string) error
	// RemoveRefreshToken drops a single refresh token from the allowlist.
	RemoveRefreshToken(ctx context.Context, id, refreshToken string) error
	// ClearTokens empties both allowlists in a single document update.
	ClearTokens(ctx context.Context, id string) error

	// UpdateProfile replaces the profile fields wholesale. Fails with
	// ErrEmailInUse when the new email already belongs to another user.
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)
}
