package services

import (
	"context"
	"errors"
	"fmt"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"
	"murmurnet/pkg/password"

	"go.uber.org/zap"
)

// dummyHash keeps the cost of a login against an unknown username equal to
// the cost against a known one.
const dummyHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type userService struct {
	users  ports.UserRepository
	tokens ports.TokenService
	hasher *password.Hasher
	logger *zap.SugaredLogger
}

func NewUserService(users ports.UserRepository, tokens ports.TokenService, hasher *password.Hasher, logger *zap.SugaredLogger) ports.UserService {
	return &userService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: logger,
	}
}

// Register creates the account and immediately issues a session token, so
// a fresh signup lands authenticated.
func (s *userService) Register(ctx context.Context, username, plaintext string) (*domain.User, string, error) {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Infow("user registered", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}

func (s *userService) Login(ctx context.Context, username, plaintext string) (*domain.User, string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn a verification anyway so unknown and known usernames
			// take the same time to fail.
			_, _ = s.hasher.Verify(plaintext, dummyHash)
			return nil, "", domain.ErrInvalidLogin
		}
		return nil, "", err
	}

	ok, err := s.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, "", domain.ErrInvalidLogin
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Infow("user logged in", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}
