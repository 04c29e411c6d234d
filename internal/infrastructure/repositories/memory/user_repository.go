package memory

import (
	"context"
	"sync"
	"time"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"
)

type MemoryUserRepository struct {
	mu         sync.RWMutex
	byUsername map[string]*domain.User
	byID       map[domain.UserID]*domain.User
	nextID     domain.UserID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byUsername: make(map[string]*domain.User),
		byID:       make(map[domain.UserID]*domain.User),
		nextID:     1,
	}
}

var _ ports.UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[username]; exists {
		return nil, domain.ErrUsernameTaken
	}

	user := &domain.User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.nextID++
	r.byUsername[username] = user
	r.byID[user.ID] = user

	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byUsername[username]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

// usernameByID resolves an author name for the post repository's feed join.
func (r *MemoryUserRepository) usernameByID(id domain.UserID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byID[id]
	if !exists {
		return "", false
	}
	return user.Username, true
}
