// Package repository contains data access logic for the movie catalog. This
// file defines repository methods for movies. The cached aggregate columns
// (rating, rating_count) are owned by RatingRepo and are only read here.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/moviehub/movie-catalog/internal/model"
)

// MovieRepo manages persistence for movies and their category links.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = `id, title, director, year, genre, description, image_url,
	video_url, video_type, rating, rating_count, created_at, updated_at`

func scanMovie(row interface{ Scan(...any) error }, m *model.Movie) error {
	return row.Scan(
		&m.ID, &m.Title, &m.Director, &m.Year, &m.Genre, &m.Description,
		&m.ImageURL, &m.VideoURL, &m.VideoType, &m.Rating, &m.RatingCount,
		&m.CreatedAt, &m.UpdatedAt,
	)
}

// Create inserts a new movie and links it to the given categories inside a
// single transaction. The generated ID and DB-default fields are populated
// on the given Movie.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie, categoryIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO movies (title, director, year, genre, description, image_url, video_url, video_type)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		m.Title, m.Director, m.Year, m.Genre, m.Description, m.ImageURL, m.VideoURL, m.VideoType)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	for _, cid := range dedupeIDs(categoryIDs) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO movie_categories (movie_id, category_id) VALUES (?, ?)`, m.ID, cid); err != nil {
			return err
		}
	}

	// Read back DB defaults (rating, timestamps) so the handler can return
	// the full row without a second round trip.
	if err := scanMovie(tx.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, m.ID), m); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID retrieves a movie by its ID. It returns ErrMovieNotFound if there
// is no matching row.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	err := scanMovie(r.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id), &m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListQuery defines filters and pagination for browsing the catalog.
// Search matches title, director, genre and description, case-insensitively.
type ListQuery struct {
	Search     string
	CategoryID uint64
	Page       int
	PageSize   int
}

// List returns the requested catalog page newest-first along with the total
// number of matching movies.
func (r *MovieRepo) List(ctx context.Context, q ListQuery) ([]model.Movie, int64, error) {
	where := []string{}
	args := []any{}

	if q.CategoryID != 0 {
		where = append(where, "mc.category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.Search != "" {
		pat := "%" + strings.ToLower(q.Search) + "%"
		where = append(where,
			"(LOWER(m.title) LIKE ? OR LOWER(m.director) LIKE ? OR LOWER(m.genre) LIKE ? OR LOWER(m.description) LIKE ?)")
		args = append(args, pat, pat, pat, pat)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	join := ""
	if q.CategoryID != 0 {
		join = " JOIN movie_categories mc ON mc.movie_id = m.id"
	}

	var total int64
	countSQL := `SELECT COUNT(DISTINCT m.id) FROM movies m` + join + ` WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.Page < 1 {
		q.Page = 1
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT DISTINCT ` + prefixColumns("m") + ` FROM movies m` + join +
		` WHERE ` + cond + ` ORDER BY m.created_at DESC, m.id DESC LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0, limit)
	for rows.Next() {
		var m model.Movie
		if err := scanMovie(rows, &m); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update rewrites a movie's editable fields and replaces its category links
// in one transaction. The cached aggregate columns are left untouched.
// Returns ErrMovieNotFound when the row does not exist.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie, categoryIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `UPDATE movies SET title=?, director=?, year=?, genre=?, description=?,
	           image_url=?, video_url=?, video_type=? WHERE id=?`
	res, err := tx.ExecContext(ctx, q,
		m.Title, m.Director, m.Year, m.Genre, m.Description, m.ImageURL, m.VideoURL, m.VideoType, m.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "no such movie" from "values unchanged".
		var one int
		if errEx := tx.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, m.ID).Scan(&one); errEx != nil {
			if errors.Is(errEx, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			return errEx
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM movie_categories WHERE movie_id = ?`, m.ID); err != nil {
		return err
	}
	for _, cid := range dedupeIDs(categoryIDs) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO movie_categories (movie_id, category_id) VALUES (?, ?)`, m.ID, cid); err != nil {
			return err
		}
	}

	if err := scanMovie(tx.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, m.ID), m); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a movie together with its ratings and category links in a
// single transaction. Returns ErrMovieNotFound when no row matches.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ratings WHERE movie_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM movie_categories WHERE movie_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMovieNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CategoryIDs returns the IDs of the categories a movie is linked to.
func (r *MovieRepo) CategoryIDs(ctx context.Context, movieID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id FROM movie_categories WHERE movie_id = ? ORDER BY category_id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// prefixColumns qualifies the movie column list with a table alias for use
// in joined queries.
func prefixColumns(alias string) string {
	cols := strings.Split(movieColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
