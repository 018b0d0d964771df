package models

import "time"

// PostSummary is one row of the blog listing. Likes is computed at query time.
type PostSummary struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	AuthorID       uint      `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Likes          int64     `json:"likes"`
	LikedByViewer  bool      `json:"liked"`
	CreatedAt      time.Time `json:"created_at"`
}

// CommentView is a comment as shown under a post.
type CommentView struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	AuthorID  uint      `json:"author_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// PostDetail is a single post together with its comments in insertion order.
type PostDetail struct {
	PostSummary
	Comments []CommentView `json:"comments"`
}
