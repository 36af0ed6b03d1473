package router

// This file registers admin-specific routes for managing the catalog.  The
// routes defined here allow admins to create, update and delete movies and
// categories, and to list registered users.  They are separate from the
// generic user routes to keep concerns isolated.

import (
	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-catalog/internal/handler"
	"github.com/moviehub/movie-catalog/internal/middleware"
)

// RegisterAdmin registers admin-scoped endpoints under /v1/admin.  All
// routes require a valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("admin"),
	)

	// ---- Movies ----
	// Create accepts multipart/form-data so a poster and a video file can be
	// uploaded alongside the metadata fields.
	g.POST("/movies", a.CreateMovie)
	g.PUT("/movies/:id", a.UpdateMovie)
	g.PATCH("/movies/:id", a.UpdateMovie) // allow partial/semantic updates via PATCH as well
	g.DELETE("/movies/:id", a.DeleteMovie)

	// ---- Categories ----
	g.POST("/categories", a.CreateCategory)
	g.DELETE("/categories/:id", a.DeleteCategory)

	// ---- Users ----
	g.GET("/users", a.ListUsers)
}
