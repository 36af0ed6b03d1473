// This file implements the rating store and the derived-aggregate logic.
// movies.rating and movies.rating_count cache AVG(score) and COUNT(*) over
// the ratings table; every write path here recomputes them inside the same
// transaction as the rating change, so listing pages never need the join
// and never observe a stale aggregate after a commit.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moviehub/movie-catalog/internal/model"
)

// RatingRepo manages persistence for ratings and owns the cached aggregate
// columns on the movies table.
type RatingRepo struct {
	db *sql.DB
}

// NewRatingRepo constructs a RatingRepo with the given DB handle.
func NewRatingRepo(db *sql.DB) *RatingRepo {
	return &RatingRepo{db: db}
}

const ratingColumns = "id, user_id, movie_id, score, review, created_at, updated_at"

// recomputeMovieAggregateTx refreshes the cached aggregate on the movie row
// from the ratings table. Must run inside the transaction that changed the
// ratings. COALESCE maps the no-rating case to average 0.
func recomputeMovieAggregateTx(ctx context.Context, tx *sql.Tx, movieID uint64) (model.RatingAggregate, error) {
	var agg model.RatingAggregate
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(score), 0), COUNT(*) FROM ratings WHERE movie_id = ?`,
		movieID).Scan(&agg.Average, &agg.Count)
	if err != nil {
		return model.RatingAggregate{}, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE movies SET rating = ?, rating_count = ? WHERE id = ?`,
		agg.Average, agg.Count, movieID)
	if err != nil {
		return model.RatingAggregate{}, err
	}
	return agg, nil
}

// Upsert records the user's rating for a movie, replacing any previous one
// (one rating per user per movie), and recomputes the movie's cached
// aggregate in the same transaction. On success the given Rating is
// populated with the stored row and the new aggregate is returned.
// Returns ErrMovieNotFound when the movie does not exist.
func (r *RatingRepo) Upsert(ctx context.Context, rt *model.Rating) (model.RatingAggregate, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.RatingAggregate{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, rt.MovieID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RatingAggregate{}, ErrMovieNotFound
		}
		return model.RatingAggregate{}, err
	}

	const q = `INSERT INTO ratings (user_id, movie_id, score, review) VALUES (?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE score = VALUES(score), review = VALUES(review)`
	if _, err := tx.ExecContext(ctx, q, rt.UserID, rt.MovieID, rt.Score, rt.Review); err != nil {
		return model.RatingAggregate{}, err
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE user_id = ? AND movie_id = ?`,
		rt.UserID, rt.MovieID).Scan(
		&rt.ID, &rt.UserID, &rt.MovieID, &rt.Score, &rt.Review, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
		return model.RatingAggregate{}, err
	}

	agg, err := recomputeMovieAggregateTx(ctx, tx, rt.MovieID)
	if err != nil {
		return model.RatingAggregate{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.RatingAggregate{}, err
	}
	committed = true
	return agg, nil
}

// DeleteByIDAndUser removes a rating if it is authored by userID and
// recomputes the owning movie's cached aggregate in the same transaction.
// Returns ErrRatingNotFound when the rating does not exist and ErrForbidden
// when it belongs to another user. On success the movie ID and the new
// aggregate are returned so callers can publish events without re-querying.
func (r *RatingRepo) DeleteByIDAndUser(ctx context.Context, id, userID uint64) (uint64, model.RatingAggregate, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, model.RatingAggregate{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var ownerID, movieID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, movie_id FROM ratings WHERE id = ?`, id).Scan(&ownerID, &movieID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.RatingAggregate{}, ErrRatingNotFound
		}
		return 0, model.RatingAggregate{}, err
	}
	if ownerID != userID {
		return 0, model.RatingAggregate{}, ErrForbidden
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ratings WHERE id = ?`, id); err != nil {
		return 0, model.RatingAggregate{}, err
	}

	agg, err := recomputeMovieAggregateTx(ctx, tx, movieID)
	if err != nil {
		return 0, model.RatingAggregate{}, err
	}
	if err := tx.Commit(); err != nil {
		return 0, model.RatingAggregate{}, err
	}
	committed = true
	return movieID, agg, nil
}

// AggregateForMovie computes the live aggregate for a movie straight from
// the ratings table. Unrated movies yield {0, 0}, never an error.
func (r *RatingRepo) AggregateForMovie(ctx context.Context, movieID uint64) (model.RatingAggregate, error) {
	var agg model.RatingAggregate
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(score), 0), COUNT(*) FROM ratings WHERE movie_id = ?`,
		movieID).Scan(&agg.Average, &agg.Count)
	return agg, err
}

// GetByUserAndMovie returns the caller's own rating for a movie, or
// ErrRatingNotFound when they have not rated it.
func (r *RatingRepo) GetByUserAndMovie(ctx context.Context, userID, movieID uint64) (model.Rating, error) {
	var rt model.Rating
	err := r.db.QueryRowContext(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE user_id = ? AND movie_id = ?`,
		userID, movieID).Scan(
		&rt.ID, &rt.UserID, &rt.MovieID, &rt.Score, &rt.Review, &rt.CreatedAt, &rt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rating{}, ErrRatingNotFound
	}
	return rt, err
}

// MovieRating is a rating joined with its author's username, for movie
// detail pages.
type MovieRating struct {
	model.Rating
	Username string
}

// ListByMovie returns all ratings for a movie with author usernames, newest
// first.
func (r *RatingRepo) ListByMovie(ctx context.Context, movieID uint64) ([]MovieRating, error) {
	const q = `SELECT r.id, r.user_id, r.movie_id, r.score, r.review, r.created_at, r.updated_at, u.username
	           FROM ratings r
	           JOIN users u ON u.id = r.user_id
	           WHERE r.movie_id = ?
	           ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MovieRating
	for rows.Next() {
		var mr MovieRating
		if err := rows.Scan(&mr.ID, &mr.UserID, &mr.MovieID, &mr.Score, &mr.Review,
			&mr.CreatedAt, &mr.UpdatedAt, &mr.Username); err != nil {
			return nil, err
		}
		out = append(out, mr)
	}
	return out, rows.Err()
}

// UserRating is a rating joined with movie metadata, for rating-history
// pages.
type UserRating struct {
	model.Rating
	MovieTitle string
	MovieImage string
}

// ListByUser returns the user's full rating history joined with movie
// metadata, most recent first.
func (r *RatingRepo) ListByUser(ctx context.Context, userID uint64) ([]UserRating, error) {
	const q = `SELECT r.id, r.user_id, r.movie_id, r.score, r.review, r.created_at, r.updated_at, m.title, m.image_url
	           FROM ratings r
	           JOIN movies m ON m.id = r.movie_id
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UserRating
	for rows.Next() {
		var ur UserRating
		if err := rows.Scan(&ur.ID, &ur.UserID, &ur.MovieID, &ur.Score, &ur.Review,
			&ur.CreatedAt, &ur.UpdatedAt, &ur.MovieTitle, &ur.MovieImage); err != nil {
			return nil, err
		}
		out = append(out, ur)
	}
	return out, rows.Err()
}
