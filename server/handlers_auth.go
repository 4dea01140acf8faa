package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/farmers-portal/auth-service/auth"
	"github.com/farmers-portal/auth-service/token"
	"github.com/farmers-portal/auth-service/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// sessionResponse is returned by signup, login and refresh: the fresh token
// pair plus the sanitized user.
type sessionResponse struct {
	Success      bool        `json:"success"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         *users.User `json:"user"`
	Message      string      `json:"message,omitempty"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type signupRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Phone    string  `json:"phone"`
	Location string  `json:"location"`
	LandSize float64 `json:"landSize"`
	SoilType string  `json:"soilType"`
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Name, email, and password are required", "MISSING_REQUIRED_FIELDS")
			return
		}

		if req.Name == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Name, email, and password are required", "MISSING_REQUIRED_FIELDS")
			return
		}

		session, err := s.auth.Signup(r.Context(), auth.SignupRequest{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     users.RoleType(req.Role),
			Phone:    req.Phone,
			Location: req.Location,
			LandSize: req.LandSize,
			SoilType: req.SoilType,
		})
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrAdminSignup):
				writeError(w, http.StatusForbidden, "Admin role cannot be assigned via signup", "INVALID_ROLE")
			case errors.Is(err, users.ErrEmailInUse):
				writeError(w, http.StatusBadRequest, "Email already in use", "EMAIL_IN_USE")
			default:
				log.Error().Err(err).Msg("signup failed")
				writeError(w, http.StatusInternalServerError, "Registration failed", "REGISTRATION_FAILED")
			}
			return
		}

		writeJSON(w, http.StatusCreated, sessionResponse{
			Success:      true,
			Token:        session.AccessToken,
			RefreshToken: session.RefreshToken,
			User:         session.User,
			Message:      "Registration successful",
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Email and password are required", "MISSING_CREDENTIALS")
			return
		}

		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required", "MISSING_CREDENTIALS")
			return
		}

		session, err := s.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			// A single generic failure for both unknown email and wrong
			// password, so responses cannot be used to enumerate accounts.
			if !errors.Is(err, auth.ErrInvalidCredentials) {
				log.Error().Err(err).Msg("login failed")
			}
			writeError(w, http.StatusUnauthorized, "Invalid login credentials", "LOGIN_FAILED")
			return
		}

		writeJSON(w, http.StatusOK, sessionResponse{
			Success:      true,
			Token:        session.AccessToken,
			RefreshToken: session.RefreshToken,
			User:         session.User,
			Message:      "Login successful",
		})
	}
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshTokenRequest
		if err := decodeBody(r, &req); err != nil || req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "Refresh token is required", "MISSING_REFRESH_TOKEN")
			return
		}

		if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				writeError(w, http.StatusUnauthorized, "Invalid user", "INVALID_USER")
				return
			}
			// Covers verification failures too: a logout with an expired or
			// malformed refresh token is an error, not a silent no-op.
			log.Error().Err(err).Msg("logout failed")
			writeError(w, http.StatusInternalServerError, "Logout failed", "LOGOUT_FAILED")
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
	}
}

func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshTokenRequest
		if err := decodeBody(r, &req); err != nil || req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "Refresh token is required", "MISSING_REFRESH_TOKEN")
			return
		}

		session, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, "Refresh token expired", "REFRESH_TOKEN_EXPIRED")
			case errors.Is(err, token.ErrTokenMalformed), errors.Is(err, token.ErrSignatureInvalid),
				errors.Is(err, auth.ErrUserNotFound):
				writeError(w, http.StatusUnauthorized, "Invalid refresh token", "INVALID_REFRESH_TOKEN")
			case errors.Is(err, auth.ErrRefreshRevoked):
				writeError(w, http.StatusUnauthorized, "Refresh token revoked", "REFRESH_TOKEN_REVOKED")
			default:
				log.Error().Err(err).Msg("token refresh failed")
				writeError(w, http.StatusUnauthorized, "Token refresh failed", "REFRESH_FAILED")
			}
			return
		}

		writeJSON(w, http.StatusOK, sessionResponse{
			Success:      true,
			Token:        session.AccessToken,
			RefreshToken: session.RefreshToken,
			User:         session.User,
			Message:      "Token refreshed successfully",
		})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "ok"})
	}
}

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil // empty body decodes to zero values, caught by field checks
	}
	return err
}
