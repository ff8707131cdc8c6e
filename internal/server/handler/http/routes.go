// Package http provides HTTP routing, handlers and page rendering
// for the AuthPortal web pages.
package http

import (
	"fmt"
	"net/http"

	"github.com/atinyakov/AuthPortal/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Route names usable with URLFor.
const (
	RouteSignup = "signup"
	RouteLogin  = "login"
	RouteHome   = "home"
	RouteLogout = "logout"
)

var routePaths = map[string]string{
	RouteSignup: "/",
	RouteLogin:  "/login/",
	RouteHome:   "/home/",
	RouteLogout: "/logout/",
}

// URLFor resolves a route name to its path. It panics on an unknown name.
func URLFor(name string) string {
	p, ok := routePaths[name]
	if !ok {
		panic(fmt.Sprintf("no route named %q", name))
	}
	return p
}

// NewRouter constructs and returns an HTTP handler that serves
// the auth pages.
//
// Routes:
//
//	GET  /          → authHandler.SignupForm
//	POST /          → authHandler.Signup
//	GET  /login/    → authHandler.LoginForm
//	POST /login/    → authHandler.Login
//	GET  /home/     → authHandler.Home
//	GET  /logout/   → authHandler.Logout
//
// Middleware chain (applied in order):
//  1. RequestID, Recoverer
//  2. WithRequestLogging(logger)
//  3. Sessions(sessions, logger): attaches the caller's session, never rejects
func NewRouter(
	authHandler *AuthHandler,
	sessions middleware.SessionLookup,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.Sessions(sessions, logger))

	r.Get(URLFor(RouteSignup), authHandler.SignupForm)
	r.Get(URLFor(RouteLogin), authHandler.LoginForm)
	r.Get(URLFor(RouteHome), authHandler.Home)
	r.Get(URLFor(RouteLogout), authHandler.Logout)

	// Form posts only
	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/x-www-form-urlencoded", "multipart/form-data"))
		r.Post(URLFor(RouteSignup), authHandler.Signup)
		r.Post(URLFor(RouteLogin), authHandler.Login)
	})

	return r
}
