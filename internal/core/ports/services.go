package ports

import (
	"context"
	"time"

	"murmurnet/internal/core/domain"
)

type TokenService interface {
	Issue(userID domain.UserID, username string) (string, error)
	Verify(token string) (domain.Identity, error)
	TTL() time.Duration
}

type UserService interface {
	Register(ctx context.Context, username, password string) (*domain.User, string, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
}

type FeedService interface {
	CreatePost(ctx context.Context, identity domain.Identity, content string) (*domain.Post, error)
	ListRecent(ctx context.Context) ([]domain.FeedEvent, error)
}

type ModerationClient interface {
	Classify(ctx context.Context, text string) (*domain.ModerationReport, error)
}

// Publisher fans a feed event out to all currently registered live viewers.
// Implementations must never block the caller.
type Publisher interface {
	Publish(event domain.FeedEvent)
}
