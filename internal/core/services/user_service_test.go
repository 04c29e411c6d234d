package services

import (
	"context"
	"testing"
	"time"

	"murmurnet/internal/core/domain"
	"murmurnet/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	args := m.Called(ctx, username, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// Cheap parameters keep the argon2 work negligible in tests.
func testHasher() *password.Hasher {
	return password.NewHasher(password.Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
}

func newUserService(users *MockUserRepository) *userService {
	tokens, err := NewTokenService("test-secret", 12*time.Hour)
	if err != nil {
		panic(err)
	}
	return NewUserService(users, tokens, testHasher(), zap.NewNop().Sugar()).(*userService)
}

func TestRegisterIssuesToken(t *testing.T) {
	users := new(MockUserRepository)
	svc := newUserService(users)

	users.On("Create", mock.Anything, "alice", mock.MatchedBy(func(hash string) bool {
		ok, err := testHasher().Verify("hunter2hunter2", hash)
		return err == nil && ok
	})).Return(&domain.User{ID: 1, Username: "alice"}, nil)

	user, token, err := svc.Register(context.Background(), "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	identity, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(1), identity.UserID)
	assert.Equal(t, "alice", identity.Username)
}

func TestRegisterUsernameTaken(t *testing.T) {
	users := new(MockUserRepository)
	svc := newUserService(users)

	users.On("Create", mock.Anything, "alice", mock.Anything).
		Return(nil, domain.ErrUsernameTaken)

	_, _, err := svc.Register(context.Background(), "alice", "hunter2hunter2")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestLoginHappyPath(t *testing.T) {
	users := new(MockUserRepository)
	svc := newUserService(users)

	hash, err := testHasher().Hash("hunter2hunter2")
	require.NoError(t, err)

	users.On("FindByUsername", mock.Anything, "alice").
		Return(&domain.User{ID: 1, Username: "alice", PasswordHash: hash}, nil)

	user, token, err := svc.Login(context.Background(), "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(1), user.ID)

	identity, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	svc := newUserService(users)

	hash, err := testHasher().Hash("hunter2hunter2")
	require.NoError(t, err)

	users.On("FindByUsername", mock.Anything, "alice").
		Return(&domain.User{ID: 1, Username: "alice", PasswordHash: hash}, nil)

	_, _, err = svc.Login(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidLogin)
}

func TestLoginUnknownUserIndistinguishable(t *testing.T) {
	users := new(MockUserRepository)
	svc := newUserService(users)

	users.On("FindByUsername", mock.Anything, "nobody").
		Return(nil, domain.ErrUserNotFound)

	_, _, err := svc.Login(context.Background(), "nobody", "whatever-pass")
	// The caller sees the same failure as a wrong password, never a
	// user-exists signal.
	assert.ErrorIs(t, err, domain.ErrInvalidLogin)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
}
