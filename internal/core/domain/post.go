package domain

import "time"

type PostID int64

// MaxPostLength is the maximum post length in runes, enforced before any
// storage or moderation I/O.
const MaxPostLength = 500

type Post struct {
	ID        PostID
	AuthorID  UserID
	Content   string
	CreatedAt time.Time
}
