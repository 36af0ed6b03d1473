package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/moviehub/movie-catalog/internal/model"
)

func newRatingMock(t *testing.T) (*RatingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRatingRepo(db), mock
}

func TestUpsertRecomputesAggregate(t *testing.T) {
	repo, mock := newRatingMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM movies").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("INSERT INTO ratings").
		WithArgs(uint64(3), uint64(7), uint8(5), "great").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT id, user_id, movie_id, score, review, created_at, updated_at FROM ratings").
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "movie_id", "score", "review", "created_at", "updated_at"}).
			AddRow(11, 3, 7, 5, "great", now, now))
	// Aggregate over scores {3, 4, 5} after the write.
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(4.0, 3))
	mock.ExpectExec("UPDATE movies SET rating").
		WithArgs(4.0, uint32(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rt := &model.Rating{UserID: 3, MovieID: 7, Score: 5, Review: "great"}
	agg, err := repo.Upsert(context.Background(), rt)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if rt.ID != 11 {
		t.Errorf("rating id = %d, want 11", rt.ID)
	}
	if agg.Average != 4.0 || agg.Count != 3 {
		t.Errorf("aggregate = %+v, want {4 3}", agg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertMovieMissing(t *testing.T) {
	repo, mock := newRatingMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM movies").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"1"})) // no rows
	mock.ExpectRollback()

	_, err := repo.Upsert(context.Background(), &model.Rating{UserID: 1, MovieID: 99, Score: 3})
	if err != ErrMovieNotFound {
		t.Fatalf("err = %v, want ErrMovieNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteRecomputesAggregate(t *testing.T) {
	repo, mock := newRatingMock(t)

	// Movie 7 holds scores {3, 4, 5}; the owner deletes the 4 so the
	// remaining two average exactly 4.0.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, movie_id FROM ratings").
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "movie_id"}).AddRow(3, 7))
	mock.ExpectExec("DELETE FROM ratings").
		WithArgs(uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(4.0, 2))
	mock.ExpectExec("UPDATE movies SET rating").
		WithArgs(4.0, uint32(2), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	movieID, agg, err := repo.DeleteByIDAndUser(context.Background(), 12, 3)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if movieID != 7 {
		t.Errorf("movie id = %d, want 7", movieID)
	}
	if agg.Average != 4.0 || agg.Count != 2 {
		t.Errorf("aggregate = %+v, want {4 2}", agg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteForeignRatingForbidden(t *testing.T) {
	repo, mock := newRatingMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, movie_id FROM ratings").
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "movie_id"}).AddRow(3, 7))
	mock.ExpectRollback()

	_, _, err := repo.DeleteByIDAndUser(context.Background(), 12, 4) // not the owner
	if err != ErrForbidden {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteMissingRating(t *testing.T) {
	repo, mock := newRatingMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, movie_id FROM ratings").
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "movie_id"}))
	mock.ExpectRollback()

	_, _, err := repo.DeleteByIDAndUser(context.Background(), 404, 1)
	if err != ErrRatingNotFound {
		t.Fatalf("err = %v, want ErrRatingNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAggregateForUnratedMovie(t *testing.T) {
	repo, mock := newRatingMock(t)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(0.0, 0))

	agg, err := repo.AggregateForMovie(context.Background(), 5)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.Average != 0 || agg.Count != 0 {
		t.Errorf("aggregate = %+v, want {0 0}", agg)
	}
}

func TestListByUserJoinsMovies(t *testing.T) {
	repo, mock := newRatingMock(t)
	now := time.Now()

	cols := []string{"id", "user_id", "movie_id", "score", "review", "created_at", "updated_at", "title", "image_url"}
	mock.ExpectQuery("FROM ratings r").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 3, 8, 4, "solid", now, now, "Heat", "/uploads/heat.jpg").
			AddRow(1, 3, 7, 5, "great", now.Add(-time.Hour), now.Add(-time.Hour), "Alien", "/uploads/alien.jpg"))

	list, err := repo.ListByUser(context.Background(), 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].MovieTitle != "Heat" || list[1].MovieTitle != "Alien" {
		t.Errorf("unexpected order: %q then %q", list[0].MovieTitle, list[1].MovieTitle)
	}
	if list[0].Score != 4 {
		t.Errorf("score = %d, want 4", list[0].Score)
	}
}
