package config

import (
	"os"
	"time"
)

// AuthConfig exposes the token signing secrets and lifetimes. The secrets
// have no defaults: both must be set at process start, and they must differ
// so compromise of one kind of token does not compromise the other.
type AuthConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetAccessTokenSecret() string {
	return os.Getenv("JWT_SECRET")
}

func (Auth) GetRefreshTokenSecret() string {
	return os.Getenv("JWT_REFRESH_SECRET")
}

func (Auth) GetAccessTokenExpiry() time.Duration {
	return getDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute)
}

func (Auth) GetRefreshTokenExpiry() time.Duration {
	return getDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour)
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
