package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
)

// SessionManager issues opaque session keys and resolves them back to the
// owning user. Keys are signed JWTs, so no server-side session storage is
// needed; callers only ever see an opaque bearer string.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl}
}

func (m *SessionManager) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("Issue: %w", err)
	}
	return signed, nil
}

// Resolve maps a session key to the user it was issued for. Absent, expired,
// tampered, and malformed keys are all reported as domain.ErrInvalidSession;
// the caller learns nothing beyond "not a valid session".
func (m *SessionManager) Resolve(sessionKey string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(sessionKey, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("Resolve: %w", domain.ErrInvalidSession)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("Resolve: %w", domain.ErrInvalidSession)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("Resolve: %w", domain.ErrInvalidSession)
	}
	return userID, nil
}
