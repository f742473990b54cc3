package model

import "time"

// Post is a blog entry owned by a single user. UserID is set at creation
// and never changes; title and content are mutable by the owner only.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// User carries the owner's public fields on list/get responses.
	// Nil on write paths — the repository populates it via a JOIN.
	User *PostOwner `json:"user,omitempty"`
}
