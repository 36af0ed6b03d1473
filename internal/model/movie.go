package model

import (
    "database/sql"
    "time"
)

// Video source types stored in movies.video_type.  External entries point at
// a URL hosted elsewhere; uploaded entries reference a file under the
// server's upload directory.
const (
    VideoTypeExternal = "external"
    VideoTypeUpload   = "upload"
)

// Movie represents a catalog entry as stored in the `movies` table.  The
// Rating and RatingCount fields are derived values: they cache the mean and
// count of all rows in `ratings` for this movie and are recomputed
// transactionally whenever a rating is written or removed.  They must never
// be set directly.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title.
//  Director    – director name.
//  Year        – release year.
//  Genre       – free-form genre label (categories are the normalized form).
//  Description – synopsis text.
//  ImageURL    – poster reference: an external URL or "/uploads/<name>".
//  VideoURL    – optional video reference (nullable).
//  VideoType   – "external" or "upload".
//  Rating      – cached aggregate rating (0 when unrated).
//  RatingCount – cached number of ratings.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Movie struct {
    ID          uint64         // movies.id
    Title       string         // movies.title
    Director    string         // movies.director
    Year        int            // movies.year
    Genre       string         // movies.genre
    Description string         // movies.description
    ImageURL    string         // movies.image_url
    VideoURL    sql.NullString // movies.video_url (nullable)
    VideoType   string         // movies.video_type
    Rating      float64        // movies.rating (derived)
    RatingCount uint32         // movies.rating_count (derived)
    CreatedAt   time.Time      // movies.created_at
    UpdatedAt   time.Time      // movies.updated_at
}
