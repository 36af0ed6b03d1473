package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-catalog/internal/model"
	"github.com/moviehub/movie-catalog/internal/repository"
	"github.com/moviehub/movie-catalog/internal/upload"
)

// defaultPosterURL backs movies created without any poster.
const defaultPosterURL = "https://picsum.photos/300/450"

// AdminHandler covers the management surface: movie CRUD with media
// uploads, category management, and the user list.
type AdminHandler struct {
	Movies     *repository.MovieRepo
	Categories *repository.CategoryRepo
	Users      *repository.UserRepo
	Uploads    *upload.Store
}

func NewAdminHandler(m *repository.MovieRepo, c *repository.CategoryRepo, u *repository.UserRepo, up *upload.Store) *AdminHandler {
	return &AdminHandler{Movies: m, Categories: c, Users: u, Uploads: up}
}

// movieForm holds the multipart fields shared by create and update.
type movieForm struct {
	Title       string
	Director    string
	Year        int
	Genre       string
	Description string
	ImageURL    string
	VideoURL    string
	CategoryIDs []uint64
}

func parseMovieForm(c echo.Context) (movieForm, string) {
	var f movieForm
	f.Title = strings.TrimSpace(c.FormValue("title"))
	f.Director = strings.TrimSpace(c.FormValue("director"))
	f.Genre = strings.TrimSpace(c.FormValue("genre"))
	f.Description = strings.TrimSpace(c.FormValue("description"))
	f.ImageURL = strings.TrimSpace(c.FormValue("image_url"))
	f.VideoURL = strings.TrimSpace(c.FormValue("video_url"))

	if f.Title == "" || f.Director == "" || f.Genre == "" || f.Description == "" {
		return f, "title, director, year, genre and description are required"
	}
	year, err := strconv.Atoi(strings.TrimSpace(c.FormValue("year")))
	if err != nil || year < 1888 || year > time.Now().Year()+5 {
		return f, "invalid year"
	}
	f.Year = year

	if form, err := c.MultipartForm(); err == nil {
		for _, raw := range form.Value["categories"] {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return f, "invalid category id"
			}
			f.CategoryIDs = append(f.CategoryIDs, id)
		}
	}
	return f, ""
}

// resolveMedia applies the precedence rules for poster and video: an
// uploaded file wins over a URL field. Returns echo-ready error responses
// through the bool.
func (h *AdminHandler) resolveMedia(c echo.Context, m *model.Movie) (int, string) {
	if fh, err := c.FormFile("image_file"); err == nil && fh != nil {
		p, err := h.Uploads.SaveImage(fh)
		if err != nil {
			return uploadStatus(err), "image upload: " + uploadMessage(err)
		}
		m.ImageURL = p
	} else if f := strings.TrimSpace(c.FormValue("image_url")); f != "" {
		m.ImageURL = f
	}

	if fh, err := c.FormFile("video_file"); err == nil && fh != nil {
		p, err := h.Uploads.SaveVideo(fh)
		if err != nil {
			return uploadStatus(err), "video upload: " + uploadMessage(err)
		}
		m.VideoURL = nullString(p)
		m.VideoType = model.VideoTypeUpload
	} else if f := strings.TrimSpace(c.FormValue("video_url")); f != "" {
		m.VideoURL = nullString(f)
		m.VideoType = model.VideoTypeExternal
	}
	return 0, ""
}

func uploadStatus(err error) int {
	switch err {
	case upload.ErrExtension:
		return http.StatusBadRequest
	case upload.ErrTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func uploadMessage(err error) string {
	switch err {
	case upload.ErrExtension:
		return "file type not allowed"
	case upload.ErrTooLarge:
		return "file too large"
	default:
		return "save failed"
	}
}

// CreateMovie: POST /v1/admin/movies (multipart/form-data).
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	f, msg := parseMovieForm(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	m := &model.Movie{
		Title:       f.Title,
		Director:    f.Director,
		Year:        f.Year,
		Genre:       f.Genre,
		Description: f.Description,
		VideoType:   model.VideoTypeExternal,
	}
	if status, errMsg := h.resolveMedia(c, m); status != 0 {
		return c.JSON(status, echo.Map{"error": errMsg})
	}
	if m.ImageURL == "" {
		m.ImageURL = defaultPosterURL
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.Create(ctx, m, f.CategoryIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create movie failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"movie": toMovieItem(m)})
}

// UpdateMovie: PUT /v1/admin/movies/:id (multipart/form-data). Media fields
// left empty keep the existing poster/video.
func (h *AdminHandler) UpdateMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	f, msg := parseMovieForm(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	m.Title = f.Title
	m.Director = f.Director
	m.Year = f.Year
	m.Genre = f.Genre
	m.Description = f.Description
	if status, errMsg := h.resolveMedia(c, m); status != 0 {
		return c.JSON(status, echo.Map{"error": errMsg})
	}

	if err := h.Movies.Update(ctx, m, f.CategoryIDs); err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update movie failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"movie": toMovieItem(m)})
}

// DeleteMovie: DELETE /v1/admin/movies/:id. Ratings and category links go
// with it.
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.Delete(ctx, id); err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete movie failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type categoryReq struct {
	Name string `json:"name"`
}

// CreateCategory: POST /v1/admin/categories
func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat := &model.Category{Name: req.Name}
	if err := h.Categories.Create(ctx, cat); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"category": cat})
}

// DeleteCategory: DELETE /v1/admin/categories/:id. Movie links are removed;
// the movies themselves stay.
func (h *AdminHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Categories.Delete(ctx, id); err != nil {
		if err == repository.ErrCategoryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete category failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUsers: GET /v1/admin/users
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		out = append(out, echo.Map{
			"id":         u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"role":       u.Role,
			"created_at": u.CreatedAt.Format("2006-01-02"),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}
