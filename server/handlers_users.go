package server

import (
	"encoding/json"
	"net/http"

	"github.com/farmers-portal/auth-service/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type userResponse struct {
	Success bool        `json:"success"`
	User    *users.User `json:"user"`
	Message string      `json:"message,omitempty"`
}

// CurrentUserHandler returns the authenticated user's own profile.
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusInternalServerError, "Server error", "SERVER_ERROR")
			return
		}
		writeJSON(w, http.StatusOK, userResponse{Success: true, User: user})
	}
}

// GetUserHandler returns any user's sanitized profile by id. Any
// authenticated user may read any profile.
func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.users.GetByID(r.Context(), r.PathValue("id"))
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				writeError(w, http.StatusNotFound, "User not found", "USER_NOT_FOUND")
				return
			}
			log.Error().Err(err).Msg("user lookup failed")
			writeError(w, http.StatusInternalServerError, "Server error", "SERVER_ERROR")
			return
		}
		writeJSON(w, http.StatusOK, userResponse{Success: true, User: user.Sanitized()})
	}
}

type updateUserRequest struct {
	Name                   string          `json:"name"`
	Email                  string          `json:"email"`
	Phone                  string          `json:"phone"`
	Location               string          `json:"location"`
	LandSize               float64         `json:"landSize"`
	SoilType               string          `json:"soilType"`
	Crops                  []string        `json:"crops"`
	Skills                 []string        `json:"skills"`
	ProfileImage           string          `json:"profileImage"`
	AadharNumber           string          `json:"aadharNumber"`
	FarmRegistrationNumber string          `json:"farmRegistrationNumber"`
	IrrigationType         string          `json:"irrigationType"`
	Documents              json.RawMessage `json:"documents"`
}

// UpdateUserHandler replaces the caller's profile fields wholesale. Users may
// only update their own profile.
func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusInternalServerError, "Server error", "SERVER_ERROR")
			return
		}

		id := r.PathValue("id")
		if caller.ID != id {
			writeError(w, http.StatusForbidden, "Not authorized", "NOT_AUTHORIZED")
			return
		}

		var req updateUserRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Name, email, phone, and location are required", "MISSING_REQUIRED_FIELDS")
			return
		}

		if req.Name == "" || req.Email == "" || req.Phone == "" || req.Location == "" {
			writeError(w, http.StatusBadRequest, "Name, email, phone, and location are required", "MISSING_REQUIRED_FIELDS")
			return
		}

		documents := []users.Document{}
		if len(req.Documents) > 0 && string(req.Documents) != "null" {
			if err := json.Unmarshal(req.Documents, &documents); err != nil {
				writeError(w, http.StatusBadRequest, "Documents must be an array", "INVALID_DOCUMENTS_FORMAT")
				return
			}
			for _, doc := range documents {
				if doc.Type == "" || doc.URL == "" || doc.Name == "" {
					writeError(w, http.StatusBadRequest, "Each document must have type, url, and name", "INVALID_DOCUMENT_FORMAT")
					return
				}
			}
		}

		update := users.ProfileUpdate{
			Name:                   req.Name,
			Email:                  req.Email,
			Phone:                  req.Phone,
			Location:               req.Location,
			LandSize:               req.LandSize,
			SoilType:               req.SoilType,
			Crops:                  req.Crops,
			Skills:                 req.Skills,
			ProfileImage:           req.ProfileImage,
			AadharNumber:           req.AadharNumber,
			FarmRegistrationNumber: req.FarmRegistrationNumber,
			IrrigationType:         req.IrrigationType,
			Documents:              documents,
		}
		if update.SoilType == "" {
			update.SoilType = users.DefaultSoilType
		}
		if update.Crops == nil {
			update.Crops = []string{}
		}
		if update.Skills == nil {
			update.Skills = []string{}
		}

		user, err := s.users.UpdateProfile(r.Context(), id, update)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				writeError(w, http.StatusNotFound, "User not found", "USER_NOT_FOUND")
				return
			}
			if errors.Is(err, users.ErrEmailInUse) {
				writeError(w, http.StatusBadRequest, "Email already in use", "EMAIL_IN_USE")
				return
			}
			log.Error().Err(err).Msg("profile update failed")
			writeError(w, http.StatusInternalServerError, "Server error", "SERVER_ERROR")
			return
		}

		writeJSON(w, http.StatusOK, userResponse{
			Success: true,
			User:    user.Sanitized(),
			Message: "Profile updated successfully",
		})
	}
}
