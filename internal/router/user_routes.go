package router

import (
	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-catalog/internal/handler"
	"github.com/moviehub/movie-catalog/internal/middleware"
)

// RegisterUser registers endpoints available to any authenticated account
// under /v1.  All routes require a valid JWT; both regular users and admins
// may rate movies and manage their own profile.
func RegisterUser(e *echo.Echo, r *handler.RatingHandler, p *handler.ProfileHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("user", "admin"),
	)

	// ---- Ratings ----
	// Submit or replace the caller's rating for a movie.
	g.POST("/movies/:id/ratings", r.RateMovie)
	// Remove one of the caller's own ratings.
	g.DELETE("/ratings/:id", r.DeleteRating)
	// The caller's full rating history, newest first.
	g.GET("/my-ratings", r.MyRatings)

	// ---- Profile ----
	g.GET("/profile", p.GetProfile)
	g.PUT("/profile", p.UpdateProfile)
}
