package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-catalog/internal/config"
	"github.com/moviehub/movie-catalog/internal/repository"
)

// ProfileHandler serves the logged-in user's account page: their info,
// rating history with simple stats, and email/password updates.
type ProfileHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Ratings *repository.RatingRepo
}

func NewProfileHandler(cfg config.Config, u *repository.UserRepo, r *repository.RatingRepo) *ProfileHandler {
	return &ProfileHandler{Cfg: cfg, Users: u, Ratings: r}
}

// GetProfile: GET /v1/profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	history, err := h.Ratings.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var sum int
	for _, r := range history {
		sum += int(r.Score)
	}
	avg := 0.0
	if len(history) > 0 {
		avg = float64(sum) / float64(len(history))
	}

	ratings := make([]echo.Map, 0, len(history))
	for _, r := range history {
		ratings = append(ratings, echo.Map{
			"id":          r.ID,
			"movie_id":    r.MovieID,
			"movie_title": r.MovieTitle,
			"movie_image": r.MovieImage,
			"score":       r.Score,
			"review":      r.Review,
			"created_at":  r.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":         u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"role":       u.Role,
			"created_at": u.CreatedAt.Format("2006-01-02"),
		},
		"ratings":       ratings,
		"rating_count":  len(history),
		"average_given": avg,
	})
}

type updateProfileReq struct {
	Email           string `json:"email"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UpdateProfile: PUT /v1/profile. Email and password are each optional;
// an empty field means "leave as is". A password change requires the
// confirmation field to match.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)

	if req.Email == "" && req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if req.Email != "" && !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if req.NewPassword != "" {
		if len(req.NewPassword) < 6 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
		}
		if req.NewPassword != req.ConfirmPassword {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.Email != "" {
		if err := h.Users.UpdateEmail(ctx, uid, req.Email); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update email failed"})
		}
	}
	if req.NewPassword != "" {
		if err := h.Users.UpdatePassword(ctx, uid, req.NewPassword, h.Cfg.BcryptCost); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
		}
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
			"role":     u.Role,
		},
	})
}
