// Package queue defines message payloads exchanged over the message broker.
package queue

// Rating event actions.
const (
	RatingActionRated   = "rated"
	RatingActionDeleted = "deleted"
)

// RatingActivityEvent is published whenever a rating is written or removed.
// It carries the movie's new aggregate so downstream consumers can log or
// feed analytics without querying the primary database.
type RatingActivityEvent struct {
	Action      string  `json:"action"` // "rated" or "deleted"
	RatingID    uint64  `json:"rating_id"`
	UserID      uint64  `json:"user_id"`
	MovieID     uint64  `json:"movie_id"`
	MovieTitle  string  `json:"movie_title"`
	Score       uint8   `json:"score,omitempty"` // zero for deletions
	Average     float64 `json:"average"`
	RatingCount uint32  `json:"rating_count"`
	OccurredAt  string  `json:"occurred_at"`
}
