package models

import "time"

// Post is a piece of content owned by a user.
type Post struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"user_id"` // nil for rows without an owner
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}
