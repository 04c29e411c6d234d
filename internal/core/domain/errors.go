package domain

import "errors"

var (
	// Token verification failures. All three divert the request to the
	// not-authenticated path; none is surfaced to the client as-is.
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature mismatch")
	ErrTokenExpired   = errors.New("token expired")

	// Post validation, checked before any I/O.
	ErrPostEmpty   = errors.New("post content is empty")
	ErrPostTooLong = errors.New("post content too long")

	// Policy rejection from the moderation collaborator.
	ErrModerationRejected = errors.New("post rejected by moderation")

	// Account errors.
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidLogin  = errors.New("invalid username or password")

	// Storage collaborator failures.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Fatal startup-class error: tokens cannot be signed without a key.
	ErrSigningKeyMissing = errors.New("signing key missing")
)
