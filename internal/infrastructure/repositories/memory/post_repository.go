package memory

import (
	"context"
	"sync"
	"time"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"
)

// MemoryPostRepository keeps posts in insertion order and resolves author
// names through the user repository, mirroring the SQL join the postgres
// implementation does.
type MemoryPostRepository struct {
	mu     sync.RWMutex
	posts  []*domain.Post
	nextID domain.PostID
	users  *MemoryUserRepository
}

func NewMemoryPostRepository(users *MemoryUserRepository) *MemoryPostRepository {
	return &MemoryPostRepository{
		nextID: 1,
		users:  users,
	}
}

var _ ports.PostRepository = (*MemoryPostRepository)(nil)

func (r *MemoryPostRepository) Insert(ctx context.Context, authorID domain.UserID, content string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post := &domain.Post{
		ID:        r.nextID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	r.nextID++
	r.posts = append(r.posts, post)

	copied := *post
	return &copied, nil
}

func (r *MemoryPostRepository) ListRecent(ctx context.Context, limit int) ([]domain.FeedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]domain.FeedEvent, 0, limit)
	for i := len(r.posts) - 1; i >= 0 && len(events) < limit; i-- {
		post := r.posts[i]
		author, ok := r.users.usernameByID(post.AuthorID)
		if !ok {
			continue
		}
		events = append(events, domain.NewPostEvent(author, post.Content))
	}
	return events, nil
}
