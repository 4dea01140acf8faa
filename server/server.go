// Package server is the HTTP transport for the auth service: session
// lifecycle endpoints, the bearer-token request gate and the profile routes.
package server

import (
	"net/http"
	"strings"

	"github.com/farmers-portal/auth-service/auth"
	"github.com/farmers-portal/auth-service/internal/config"
	"github.com/farmers-portal/auth-service/token"
	"github.com/farmers-portal/auth-service/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "production")
	mux    *http.ServeMux
	routes []string
	config config.Config
	users  users.Repo
	issuer *token.Issuer
	auth   *auth.Service
}

func New(cfg config.Config, repo users.Repo, issuerOptions ...token.IssuerOption) (*Server, error) {
	accessSecret := cfg.GetAccessTokenSecret()
	refreshSecret := cfg.GetRefreshTokenSecret()
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("[server.New] JWT_SECRET and JWT_REFRESH_SECRET must both be set")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("[server.New] access and refresh token secrets must differ")
	}

	options := append([]token.IssuerOption{
		token.WithTokenExpiry(cfg.GetAccessTokenExpiry(), cfg.GetRefreshTokenExpiry()),
	}, issuerOptions...)

	issuer := token.NewIssuer(repo,
		token.NewHMACSigner(accessSecret),
		token.NewHMACSigner(refreshSecret),
		options...,
	)

	authService, err := auth.NewService(repo, issuer)
	if err != nil {
		return nil, errors.Wrap(err, "[server.New] NewService")
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		users:  repo,
		issuer: issuer,
		auth:   authService,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("POST "+RouteSignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefreshToken, ChainMiddleware(s.RefreshTokenHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteCurrentUser, ChainMiddleware(s.CurrentUserHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteUserByID, ChainMiddleware(s.GetUserHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PUT "+RouteUserByID, ChainMiddleware(s.UpdateUserHandler(), s.APIMiddleware(s.RequireAuth())...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}
