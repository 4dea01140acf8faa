package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrAdminSignup        = errors.New("admin role cannot be assigned via signup")
	ErrInvalidRole        = errors.New("unknown role")
	ErrUserNotFound       = errors.New("user not found")
	ErrRefreshRevoked     = errors.New("refresh token revoked")
)
