package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
)

func TestSessionRoundTrip(t *testing.T) {
	mgr := NewSessionManager("test-secret", time.Hour)
	userID := uuid.New()

	key, err := mgr.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, key)

	resolved, err := mgr.Resolve(key)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}

func TestResolveInvalidKeys(t *testing.T) {
	mgr := NewSessionManager("test-secret", time.Hour)

	valid, err := mgr.Issue(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "garbage", key: "not-a-session-key"},
		{name: "tampered", key: valid + "a"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mgr.Resolve(tc.key)
			require.ErrorIs(t, err, domain.ErrInvalidSession)
		})
	}
}

func TestResolveExpiredKey(t *testing.T) {
	mgr := NewSessionManager("test-secret", -time.Minute)

	key, err := mgr.Issue(uuid.New())
	require.NoError(t, err)

	_, err = mgr.Resolve(key)
	require.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestResolveWrongSecret(t *testing.T) {
	issuer := NewSessionManager("secret-a", time.Hour)
	verifier := NewSessionManager("secret-b", time.Hour)

	key, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Resolve(key)
	require.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestVerifyPIN(t *testing.T) {
	hash, err := HashPIN("4921")
	require.NoError(t, err)

	require.NoError(t, VerifyPIN(hash, "4921"))
	require.ErrorIs(t, VerifyPIN(hash, "0000"), domain.ErrInvalidPIN)
}
