package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-catalog/internal/repository"
)

func newPublicEnv(t *testing.T) (*PublicHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPublicHandler(
		repository.NewMovieRepo(db),
		repository.NewCategoryRepo(db),
		repository.NewRatingRepo(db),
	), mock
}

var testMovieCols = []string{
	"id", "title", "director", "year", "genre", "description", "image_url",
	"video_url", "video_type", "rating", "rating_count", "created_at", "updated_at",
}

func TestGetMovieNotFound(t *testing.T) {
	h, mock := newPublicEnv(t)

	mock.ExpectQuery("FROM movies WHERE id").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(testMovieCols))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/movies/42", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")

	if err := h.GetMovie(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetMovieIncludesRatings(t *testing.T) {
	h, mock := newPublicEnv(t)
	now := time.Now()

	mock.ExpectQuery("FROM movies WHERE id").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(testMovieCols).
			AddRow(7, "Heat", "Michael Mann", 1995, "Crime", "bank heist", "/uploads/h.jpg",
				nil, "external", 4.0, 3, now, now))
	mock.ExpectQuery("SELECT category_id FROM movie_categories").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"category_id"}).AddRow(1).AddRow(4))
	mock.ExpectQuery("FROM ratings r").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "movie_id", "score", "review", "created_at", "updated_at", "username"}).
			AddRow(11, 3, 7, 5, "great", now, now, "alice"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/movies/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.GetMovie(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Movie struct {
			Title       string  `json:"title"`
			Rating      float64 `json:"rating"`
			RatingCount uint32  `json:"rating_count"`
		} `json:"movie"`
		Ratings []struct {
			Username string `json:"username"`
			Score    uint8  `json:"score"`
		} `json:"ratings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Movie.Title != "Heat" || body.Movie.Rating != 4.0 || body.Movie.RatingCount != 3 {
		t.Errorf("movie = %+v", body.Movie)
	}
	if len(body.Ratings) != 1 || body.Ratings[0].Username != "alice" || body.Ratings[0].Score != 5 {
		t.Errorf("ratings = %+v", body.Ratings)
	}
}

func TestListMoviesRejectsBadCategory(t *testing.T) {
	h, _ := newPublicEnv(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/movies?category=abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListMovies(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListMoviesByCategoryMissing(t *testing.T) {
	h, mock := newPublicEnv(t)

	mock.ExpectQuery("SELECT id, name FROM categories WHERE id").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/categories/9/movies", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("9")

	if err := h.ListMoviesByCategory(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
