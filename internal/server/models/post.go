// Package models defines server-side data models persisted in the database.
package models

import "time"

// Post is a content item. ThumbnailID is 0 when no featured image is set.
type Post struct {
	ID          int64
	AuthorID    int64
	Title       string
	Content     string
	ThumbnailID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
