package ports

import (
	"context"

	"murmurnet/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

type PostRepository interface {
	Insert(ctx context.Context, authorID domain.UserID, content string) (*domain.Post, error)
	// ListRecent returns the newest posts joined with their author's
	// username, newest first.
	ListRecent(ctx context.Context, limit int) ([]domain.FeedEvent, error)
}

// FeedCache fronts PostRepository.ListRecent. Misses are not errors; the
// caller falls through to the repository.
type FeedCache interface {
	GetRecent(ctx context.Context) ([]domain.FeedEvent, bool)
	SetRecent(ctx context.Context, events []domain.FeedEvent)
	Invalidate(ctx context.Context)
}
