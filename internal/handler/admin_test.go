package handler

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-catalog/internal/repository"
	"github.com/moviehub/movie-catalog/internal/upload"
)

func newAdminEnv(t *testing.T) (*AdminHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store, err := upload.NewStore(t.TempDir(), "/uploads", 1<<20, 1<<20)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return NewAdminHandler(
		repository.NewMovieRepo(db),
		repository.NewCategoryRepo(db),
		repository.NewUserRepo(db),
		store,
	), mock
}

type formFile struct {
	field, name string
	content     []byte
}

func multipartContext(t *testing.T, fields map[string]string, files ...formFile) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(f.content)); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	w.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/movies", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))
	c.Set("role", "admin")
	return c, rec
}

func TestCreateMovieMissingFields(t *testing.T) {
	h, _ := newAdminEnv(t)

	c, rec := multipartContext(t, map[string]string{
		"title": "Heat", // director, year, genre, description missing
	})
	if err := h.CreateMovie(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateMovieInvalidYear(t *testing.T) {
	h, _ := newAdminEnv(t)

	c, rec := multipartContext(t, map[string]string{
		"title": "Heat", "director": "Michael Mann", "year": "1500",
		"genre": "Crime", "description": "bank heist",
	})
	if err := h.CreateMovie(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateMovieRejectsBadPosterExtension(t *testing.T) {
	h, _ := newAdminEnv(t)

	c, rec := multipartContext(t, map[string]string{
		"title": "Heat", "director": "Michael Mann", "year": "1995",
		"genre": "Crime", "description": "bank heist",
	}, formFile{field: "image_file", name: "poster.exe", content: []byte("nope")})

	if err := h.CreateMovie(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not allowed") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreateCategoryConflict(t *testing.T) {
	h, mock := newAdminEnv(t)

	mock.ExpectExec("INSERT INTO categories").
		WithArgs("Action").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'Action' for key 'name'"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/categories", strings.NewReader(`{"name": "Action"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateCategory(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestDeleteMovieNotFound(t *testing.T) {
	h, mock := newAdminEnv(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM ratings WHERE movie_id").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM movie_categories WHERE movie_id").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM movies WHERE id").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/movies/9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("9")

	if err := h.DeleteMovie(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
