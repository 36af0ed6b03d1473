package model

// Category is a row in the `categories` table.  Movies and categories are
// linked many-to-many through `movie_categories`.
type Category struct {
    ID   uint64 // categories.id
    Name string // categories.name
}
