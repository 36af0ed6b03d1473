package router

import (
	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-catalog/internal/handler"
	"github.com/moviehub/movie-catalog/internal/middleware"
)

// RegisterPublic registers the unauthenticated browse endpoints.  These
// routes carry no role requirement; a bearer token, when present, is parsed
// so the movie detail page can include the caller's own rating.  The extra
// middlewares (response cache, rate limiter) are passed in by the caller so
// that they can be disabled per environment.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mws := append([]echo.MiddlewareFunc{middleware.OptionalJWT(jwtSecret)}, extra...)
	g := e.Group("/v1", mws...)

	// Catalog list with optional ?q= full-text-ish search, ?category= filter
	// and pagination.
	g.GET("/movies", p.ListMovies)
	// Movie detail: movie, its categories, all ratings with reviews, and the
	// caller's own rating when authenticated.
	g.GET("/movies/:id", p.GetMovie)
	// All categories.
	g.GET("/categories", p.ListCategories)
	// Movies belonging to a single category, paginated.
	g.GET("/categories/:id/movies", p.ListMoviesByCategory)
}
