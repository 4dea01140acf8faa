package server_test

import (
	"net/http"
	"testing"

	"github.com/farmers-portal/auth-service/server"
	"github.com/stretchr/testify/require"
)

func userPath(id string) string {
	return "/users/" + id
}

func profileBody(overrides map[string]any) map[string]any {
	body := map[string]any{
		"name":     "Asha",
		"email":    "a@x.com",
		"phone":    "9876543210",
		"location": "Nashik",
		"landSize": 2.5,
		"soilType": "Black",
		"crops":    []string{"grape", "onion"},
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}

func TestGetUserByID(t *testing.T) {
	srv, _ := newTestServer(t)
	asha := signupUser(t, srv, "Asha", "a@x.com", "secret12")
	ravi := signupUser(t, srv, "Ravi", "r@x.com", "secret34")

	// any authenticated user can read any profile, sanitized
	status, resp := doRequest(t, srv, http.MethodGet, userPath(asha.User["id"].(string)), nil, ravi.Token)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, asha.User["id"], resp.User["id"])
	require.NotContains(t, resp.User, "password")
	require.NotContains(t, resp.User, "validTokens")
}

func TestGetUserByIDNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	asha := signupUser(t, srv, "Asha", "a@x.com", "secret12")

	status, resp := doRequest(t, srv, http.MethodGet, userPath("missing-id"), nil, asha.Token)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "USER_NOT_FOUND", resp.Code)
}

func TestUpdateOwnProfile(t *testing.T) {
	srv, _ := newTestServer(t)
	asha := signupUser(t, srv, "Asha", "a@x.com", "secret12")
	id := asha.User["id"].(string)

	status, resp := doRequest(t, srv, http.MethodPut, userPath(id), profileBody(map[string]any{
		"documents": []map[string]string{
			{"type": "land-record", "url": "https://cdn.example.com/doc1.pdf", "name": "7/12 extract"},
		},
	}), asha.Token)
	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.Success)
	require.Equal(t, "Nashik", resp.User["location"])
	require.Equal(t, "Black", resp.User["soilType"])
	require.NotContains(t, resp.User, "password")

	// the update survives a re-read
	status, me := doRequest(t, srv, http.MethodGet, server.RouteCurrentUser, nil, asha.Token)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Nashik", me.User["location"])
}

func TestUpdateOtherProfileForbidden(t *testing.T) {
	srv, _ := newTestServer(t)
	asha := signupUser(t, srv, "Asha", "a@x.com", "secret12")
	ravi := signupUser(t, srv, "Ravi", "r@x.com", "secret34")

	status, resp := doRequest(t, srv, http.MethodPut, userPath(asha.User["id"].(string)),
		profileBody(nil), ravi.Token)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "NOT_AUTHORIZED", resp.Code)
}

func TestUpdateProfileMissingFields(t *testing.T) {
	srv, _ := newTestServer(t)
	asha := signupUser(t, srv, "Asha", "a@x.com", "secret12")
	id := asha.User["id"].(string)

	status, resp := doRequest(t, srv, http.MethodPut, userPath(id),
		map[string]any{"name": "Asha", "email": "a@x.com"}, asha.Token)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "MISSING_REQUIRED_FIELDS", resp.Code)
}

func TestUpdateProfileDocumentsMustBeArray(t *testing.T) {
	srv, _ := newTestServer(t)
	asha := signupUser(t, srv, "Asha", "a@x.com", "secret12")
	id := asha.User["id"].(string)

	status, resp := doRequest(t, srv, http.MethodPut, userPath(id),
		profileBody(map[string]any{"documents": "not-an-array"}), asha.Token)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "INVALID_DOCUMENTS_FORMAT", resp.Code)
}

func TestUpdateProfileDocumentFieldsRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	asha := signupUser(t, srv, "Asha", "a@x.com", "secret12")
	id := asha.User["id"].(string)

	status, resp := doRequest(t, srv, http.MethodPut, userPath(id),
		profileBody(map[string]any{
			"documents": []map[string]string{{"type": "land-record", "name": "missing url"}},
		}), asha.Token)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "INVALID_DOCUMENT_FORMAT", resp.Code)
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	srv, _ := newTestServer(t)
	asha := signupUser(t, srv, "Asha", "a@x.com", "secret12")
	signupUser(t, srv, "Ravi", "r@x.com", "secret34")

	// taking over another account's email is rejected, case-insensitively
	status, resp := doRequest(t, srv, http.MethodPut, userPath(asha.User["id"].(string)),
		profileBody(map[string]any{"email": "R@X.com"}), asha.Token)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "EMAIL_IN_USE", resp.Code)

	// the other account is untouched and still reachable by its email
	status, login := doRequest(t, srv, http.MethodPost, server.RouteLogin,
		map[string]string{"email": "r@x.com", "password": "secret34"}, "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, login.Success)
}

func TestUpdateProfileRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	asha := signupUser(t, srv, "Asha", "a@x.com", "secret12")

	status, resp := doRequest(t, srv, http.MethodPut, userPath(asha.User["id"].(string)),
		profileBody(nil), "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "MISSING_AUTH_HEADER", resp.Code)
}
