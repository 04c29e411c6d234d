package services

import (
	"errors"
	"time"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService builds the HS256 token service. A missing secret is a
// startup-class failure, never a per-request one.
func NewTokenService(secret string, ttl time.Duration) (ports.TokenService, error) {
	if secret == "" {
		return nil, domain.ErrSigningKeyMissing
	}
	return &tokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (s *tokenService) Issue(userID domain.UserID, username string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify is a pure computation over the token bytes and the signing key;
// it performs no I/O. HMAC comparison inside jwt/v5 is constant-time.
func (s *tokenService) Verify(tokenString string) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenSignature
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.Identity{}, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return domain.Identity{}, domain.ErrTokenSignature
		default:
			return domain.Identity{}, domain.ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Identity{}, domain.ErrTokenMalformed
	}

	return domain.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

func (s *tokenService) TTL() time.Duration {
	return s.ttl
}
