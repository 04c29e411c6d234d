package services

import (
	"testing"
	"time"

	"murmurnet/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret", 12*time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(42, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(42), identity.UserID)
	assert.Equal(t, "alice", identity.Username)
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc, err := NewTokenService("test-secret", 12*time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(1, "bob")
	require.NoError(t, err)

	// Flip one byte in the signature segment.
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	_, err = svc.Verify(string(tampered))
	assert.ErrorIs(t, err, domain.ErrTokenSignature)
}

func TestVerifyWrongKey(t *testing.T) {
	issuer, err := NewTokenService("secret-one", 12*time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-two", 12*time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(1, "bob")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenSignature)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc, err := NewTokenService("test-secret", 2*time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(7, "carol")
	require.NoError(t, err)

	// Move the verifier's clock past the embedded expiry.
	svc.(*tokenService).now = func() time.Time { return time.Now().Add(3 * time.Hour) }

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc, err := NewTokenService("test-secret", 12*time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-jwt", "a.b", "a.b.c.d"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, domain.ErrTokenMalformed, "token %q", token)
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", 12*time.Hour)
	assert.ErrorIs(t, err, domain.ErrSigningKeyMissing)
}
