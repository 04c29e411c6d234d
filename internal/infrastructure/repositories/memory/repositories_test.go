package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"murmurnet/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryCreateAndFind(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, "alice", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(1), user.ID)

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "hash-a", found.PasswordHash)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepositoryUsernameConflict(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", "hash-a")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "alice", "hash-b")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestPostRepositoryListRecentNewestFirst(t *testing.T) {
	users := NewMemoryUserRepository()
	posts := NewMemoryPostRepository(users)
	ctx := context.Background()

	alice, err := users.Create(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := users.Create(ctx, "bob", "h")
	require.NoError(t, err)

	_, err = posts.Insert(ctx, alice.ID, "first")
	require.NoError(t, err)
	_, err = posts.Insert(ctx, bob.ID, "second")
	require.NoError(t, err)

	events, err := posts.ListRecent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.NewPostEvent("bob", "second"), events[0])
	assert.Equal(t, domain.NewPostEvent("alice", "first"), events[1])
}

func TestPostRepositoryListRecentHonorsLimit(t *testing.T) {
	users := NewMemoryUserRepository()
	posts := NewMemoryPostRepository(users)
	ctx := context.Background()

	alice, err := users.Create(ctx, "alice", "h")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err = posts.Insert(ctx, alice.ID, fmt.Sprintf("post %d", i))
		require.NoError(t, err)
	}

	events, err := posts.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "post 9", events[0].Content)
}

func TestFeedCacheRoundTrip(t *testing.T) {
	fc := NewMemoryFeedCache(time.Minute)
	defer fc.Close()
	ctx := context.Background()

	_, ok := fc.GetRecent(ctx)
	assert.False(t, ok)

	events := []domain.FeedEvent{domain.NewPostEvent("alice", "hi")}
	fc.SetRecent(ctx, events)

	got, ok := fc.GetRecent(ctx)
	require.True(t, ok)
	assert.Equal(t, events, got)

	fc.Invalidate(ctx)
	_, ok = fc.GetRecent(ctx)
	assert.False(t, ok)
}
