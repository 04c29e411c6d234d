package domain

import "time"

type UserID int64

type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the trusted result of verifying an auth token. It exists only
// for the duration of one request and is never persisted.
type Identity struct {
	UserID   UserID
	Username string
}
