package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures form a closed set so callers can switch on the token
// state directly instead of inspecting library error text.
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
)

// Claims is the payload carried by both access and refresh tokens.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// verify parses raw against the signer's key and maps golang-jwt errors into
// the closed error set above.
func verify(signer Signer, raw string, now func() time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, signer.GetVerificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
