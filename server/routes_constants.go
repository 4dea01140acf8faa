package server

const (
	RouteSignup       = "/auth/signup"
	RouteLogin        = "/auth/login"
	RouteLogout       = "/auth/logout"
	RouteRefreshToken = "/auth/refresh-token"

	RouteCurrentUser = "/users/me"
	RouteUserByID    = "/users/{id}"

	RouteHealth = "/healthz"
)
