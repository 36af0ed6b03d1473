package model

import "time"

// Rating records one user's opinion of one movie: an integer score from 1 to
// 5 and an optional free-text review.  The (UserID, MovieID) pair is unique;
// re-rating a movie replaces the previous row.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – author of the rating.
//  MovieID   – movie being rated.
//  Score     – integer score, 1..5.
//  Review    – optional review text, may be empty.
//  CreatedAt – creation timestamp.
//  UpdatedAt – timestamp of the last re-rate.
type Rating struct {
    ID        uint64    // ratings.id
    UserID    uint64    // ratings.user_id
    MovieID   uint64    // ratings.movie_id
    Score     uint8     // ratings.score
    Review    string    // ratings.review
    CreatedAt time.Time // ratings.created_at
    UpdatedAt time.Time // ratings.updated_at
}

// RatingAggregate is the derived summary for a movie: the arithmetic mean of
// all scores and how many ratings contributed to it.  An unrated movie has
// Average 0 and Count 0.
type RatingAggregate struct {
    Average float64
    Count   uint32
}
