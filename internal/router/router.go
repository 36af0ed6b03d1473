package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/moviehub/movie-catalog/internal/handler"    // import the handlers that implement business logic
	"github.com/moviehub/movie-catalog/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check and the static media directory.
func RegisterRoutes(e *echo.Echo, uploadDir string) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
	// Serve uploaded posters and video files directly from disk.  Saved
	// media paths returned by the API all start with /uploads/.
	e.Static("/uploads", uploadDir)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register, login
	// and the two refresh flavours.  Each handler generates or exchanges
	// tokens on its own.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotating refresh: the old refresh token is revoked and a new pair issued.
	g.POST("/refresh", a.Refresh)
	// Non-rotating variant: issue a new access token only.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication.  The handler accepts a
	// JSON body containing a `refresh_token` and invalidates that token.
	g.POST("/logout", a.Logout)

	// Routes that require a valid access token.  Any authenticated role may
	// use them; the middleware rejects requests with missing or unknown roles.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("user", "admin"))
	auth.GET("/me", a.Me)
	// Revoke every session for the calling user.
	auth.POST("/logout-all", a.LogoutAll)
}
