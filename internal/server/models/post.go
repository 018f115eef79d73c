package models

import "time"

// Post is a feed entry. CreatorID never changes after creation; Creator is
// filled on reads so that callers get the author's name without a second
// lookup.
type Post struct {
	ID        string
	Title     string
	Content   string
	ImageURL  string
	CreatorID string
	Creator   *User
	CreatedAt time.Time
	UpdatedAt time.Time
}
