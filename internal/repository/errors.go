// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, such as deleting another user's rating.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update cannot proceed
// because of conflicting state, such as creating a category whose
// name is already taken. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Not-found sentinels, one per aggregate root.
var (
	ErrMovieNotFound    = errors.New("movie not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrRatingNotFound   = errors.New("rating not found")
)
