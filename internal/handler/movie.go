package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-catalog/internal/model"
	"github.com/moviehub/movie-catalog/internal/repository"
)

// PublicHandler serves the unauthenticated catalog surface: browsing,
// searching and reading movie detail pages.
type PublicHandler struct {
	Movies     *repository.MovieRepo
	Categories *repository.CategoryRepo
	Ratings    *repository.RatingRepo
}

func NewPublicHandler(m *repository.MovieRepo, c *repository.CategoryRepo, r *repository.RatingRepo) *PublicHandler {
	return &PublicHandler{Movies: m, Categories: c, Ratings: r}
}

type movieItem struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Director    string  `json:"director"`
	Year        int     `json:"year"`
	Genre       string  `json:"genre"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	VideoURL    string  `json:"video_url,omitempty"`
	VideoType   string  `json:"video_type"`
	Rating      float64 `json:"rating"`
	RatingCount uint32  `json:"rating_count"`
}

func toMovieItem(m *model.Movie) movieItem {
	it := movieItem{
		ID:          m.ID,
		Title:       m.Title,
		Director:    m.Director,
		Year:        m.Year,
		Genre:       m.Genre,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		VideoType:   m.VideoType,
		Rating:      m.Rating,
		RatingCount: m.RatingCount,
	}
	if m.VideoURL.Valid {
		it.VideoURL = m.VideoURL.String
	}
	return it
}

// pageParams reads ?page and ?page_size with sane clamps. Page size maxes
// at 100 so a single request cannot sweep the whole table.
func pageParams(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.QueryParam("page_size"))
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// ListMovies: GET /v1/movies?q=&category=&page=&page_size=
func (h *PublicHandler) ListMovies(c echo.Context) error {
	page, size := pageParams(c)
	q := repository.ListQuery{
		Search:   strings.TrimSpace(c.QueryParam("q")),
		Page:     page,
		PageSize: size,
	}
	if raw := c.QueryParam("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
		}
		q.CategoryID = id
	}

	movies, total, err := h.Movies.List(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	items := make([]movieItem, 0, len(movies))
	for i := range movies {
		items = append(items, toMovieItem(&movies[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movies":    items,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

type ratingItem struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	Score     uint8  `json:"score"`
	Review    string `json:"review,omitempty"`
	CreatedAt string `json:"created_at"`
}

// GetMovie: GET /v1/movies/:id — detail plus its ratings. When the caller
// carries a valid bearer token their own rating is surfaced separately so
// the client can prefill the rating form.
func (h *PublicHandler) GetMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	catIDs, err := h.Movies.CategoryIDs(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	list, err := h.Ratings.ListByMovie(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	ratings := make([]ratingItem, 0, len(list))
	for _, r := range list {
		ratings = append(ratings, ratingItem{
			ID:        r.ID,
			UserID:    r.UserID,
			Username:  r.Username,
			Score:     r.Score,
			Review:    r.Review,
			CreatedAt: r.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	resp := echo.Map{
		"movie":      toMovieItem(m),
		"categories": catIDs,
		"ratings":    ratings,
	}

	if uid, err := getUserID(c); err == nil {
		if own, err := h.Ratings.GetByUserAndMovie(ctx, uid, id); err == nil {
			resp["user_rating"] = echo.Map{
				"id":     own.ID,
				"score":  own.Score,
				"review": own.Review,
			}
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// ListCategories: GET /v1/categories
func (h *PublicHandler) ListCategories(c echo.Context) error {
	cats, err := h.Categories.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": cats})
}

// ListMoviesByCategory: GET /v1/categories/:id/movies
func (h *PublicHandler) ListMoviesByCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	page, size := pageParams(c)
	movies, total, err := h.Movies.List(ctx, repository.ListQuery{CategoryID: id, Page: page, PageSize: size})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	items := make([]movieItem, 0, len(movies))
	for i := range movies {
		items = append(items, toMovieItem(&movies[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"category":  cat,
		"movies":    items,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}
