package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-catalog/internal/model"
	"github.com/moviehub/movie-catalog/internal/queue"
	"github.com/moviehub/movie-catalog/internal/repository"
	queue_publisher "github.com/moviehub/movie-catalog/internal/service"
)

// RatingHandler covers the per-user rating surface: submit/replace a rating,
// remove one, and list the caller's own history.
type RatingHandler struct {
	Movies  *repository.MovieRepo
	Ratings *repository.RatingRepo
}

func NewRatingHandler(m *repository.MovieRepo, r *repository.RatingRepo) *RatingHandler {
	return &RatingHandler{Movies: m, Ratings: r}
}

type rateReq struct {
	Score  uint8  `json:"score"`
	Review string `json:"review"`
}

// RateMovie: POST /v1/movies/:id/ratings. A second submission by the same
// user replaces the previous score and review. The movie aggregate returned
// in the response is the post-write value.
func (h *RatingHandler) RateMovie(c echo.Context) error {
	movieID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req rateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Score < 1 || req.Score > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "score must be between 1 and 5"})
	}
	req.Review = strings.TrimSpace(req.Review)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rt := &model.Rating{UserID: uid, MovieID: movieID, Score: req.Score, Review: req.Review}
	agg, err := h.Ratings.Upsert(ctx, rt)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save rating failed"})
	}

	go h.publishActivity(queue.RatingActionRated, rt.ID, uid, movieID, rt.Score, agg)

	return c.JSON(http.StatusOK, echo.Map{
		"rating": echo.Map{
			"id":     rt.ID,
			"score":  rt.Score,
			"review": rt.Review,
		},
		"movie_rating": agg.Average,
		"rating_count": agg.Count,
	})
}

// DeleteRating: DELETE /v1/ratings/:id. Only the rating's owner may remove
// it; the movie aggregate is recomputed in the same transaction.
func (h *RatingHandler) DeleteRating(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movieID, agg, err := h.Ratings.DeleteByIDAndUser(ctx, id, uid)
	if err != nil {
		switch err {
		case repository.ErrRatingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rating not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete rating failed"})
		}
	}

	go h.publishActivity(queue.RatingActionDeleted, id, uid, movieID, 0, agg)

	return c.JSON(http.StatusOK, echo.Map{
		"movie_rating": agg.Average,
		"rating_count": agg.Count,
	})
}

// MyRatings: GET /v1/my-ratings — the caller's history, newest first,
// joined with movie title and poster for display.
func (h *RatingHandler) MyRatings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Ratings.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(list))
	for _, r := range list {
		out = append(out, echo.Map{
			"id":          r.ID,
			"movie_id":    r.MovieID,
			"movie_title": r.MovieTitle,
			"movie_image": r.MovieImage,
			"score":       r.Score,
			"review":      r.Review,
			"created_at":  r.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"ratings": out})
}

// publishActivity emits a rating.activity event. Best effort: the write
// already committed, so a broker hiccup must not fail the request.
func (h *RatingHandler) publishActivity(action string, ratingID, userID, movieID uint64, score uint8, agg model.RatingAggregate) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	title := ""
	if m, err := h.Movies.GetByID(ctx, movieID); err == nil {
		title = m.Title
	}

	ev := queue.RatingActivityEvent{
		Action:      action,
		RatingID:    ratingID,
		UserID:      userID,
		MovieID:     movieID,
		MovieTitle:  title,
		Score:       score,
		Average:     agg.Average,
		RatingCount: agg.Count,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishRatingActivity(ctx, ev); err != nil {
		log.Printf("rating-events: publish failed: %v", err)
	}
}
