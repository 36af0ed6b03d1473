package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var movieCols = []string{
	"id", "title", "director", "year", "genre", "description", "image_url",
	"video_url", "video_type", "rating", "rating_count", "created_at", "updated_at",
}

func newMovieMock(t *testing.T) (*MovieRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMovieRepo(db), mock
}

func movieRow(rows *sqlmock.Rows, id uint64, title string, at time.Time) *sqlmock.Rows {
	return rows.AddRow(id, title, "Someone", 1999, "Drama", "a movie", "/uploads/p.jpg",
		nil, "external", 0.0, 0, at, at)
}

func TestGetByIDMissing(t *testing.T) {
	repo, mock := newMovieMock(t)

	mock.ExpectQuery("FROM movies WHERE id").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(movieCols))

	_, err := repo.GetByID(context.Background(), 42)
	if err != ErrMovieNotFound {
		t.Fatalf("err = %v, want ErrMovieNotFound", err)
	}
}

func TestListSearchBuildsLikePatterns(t *testing.T) {
	repo, mock := newMovieMock(t)
	now := time.Now()

	pat := "%heat%"
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT m.id\) FROM movies m WHERE`).
		WithArgs(pat, pat, pat, pat).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT DISTINCT").
		WithArgs(pat, pat, pat, pat, 20, 0).
		WillReturnRows(movieRow(sqlmock.NewRows(movieCols), 7, "Heat", now))

	movies, total, err := repo.List(context.Background(), ListQuery{Search: "Heat", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(movies) != 1 {
		t.Fatalf("total = %d, len = %d, want 1/1", total, len(movies))
	}
	if movies[0].Title != "Heat" {
		t.Errorf("title = %q", movies[0].Title)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListByCategoryJoinsLinkTable(t *testing.T) {
	repo, mock := newMovieMock(t)
	now := time.Now()

	mock.ExpectQuery("JOIN movie_categories mc").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("JOIN movie_categories mc").
		WithArgs(uint64(2), 10, 0).
		WillReturnRows(movieRow(movieRow(sqlmock.NewRows(movieCols), 8, "Alien", now), 7, "Heat", now.Add(-time.Hour)))

	movies, total, err := repo.List(context.Background(), ListQuery{CategoryID: 2, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(movies) != 2 {
		t.Fatalf("total = %d, len = %d, want 2/2", total, len(movies))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListPaginationOffset(t *testing.T) {
	repo, mock := newMovieMock(t)

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT m.id\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(55))
	mock.ExpectQuery("SELECT DISTINCT").
		WithArgs(20, 40). // page 3, size 20
		WillReturnRows(sqlmock.NewRows(movieCols))

	_, total, err := repo.List(context.Background(), ListQuery{Page: 3, PageSize: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 55 {
		t.Errorf("total = %d, want 55", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteCascades(t *testing.T) {
	repo, mock := newMovieMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM ratings WHERE movie_id").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM movie_categories WHERE movie_id").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM movies WHERE id").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteMissingMovie(t *testing.T) {
	repo, mock := newMovieMock(t)

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

	if err := repo.Delete(context.Background(), 9); err != ErrMovieNotFound {
		t.Fatalf("err = %v, want ErrMovieNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDedupeIDs(t *testing.T) {
	got := dedupeIDs([]uint64{3, 1, 3, 2, 1})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []uint64{3, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
