package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/enterprise-workflow/workflowd/internal/config"
	"github.com/enterprise-workflow/workflowd/internal/users"
)

func newTestTokenManager(now time.Time) *TokenManager {
	tm := NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret",
		Issuer:    "workflowd",
		TTLHours:  24,
	})
	tm.now = func() time.Time { return now }
	return tm
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tm := newTestTokenManager(now)

	user := &users.User{
		ID:       uuid.New(),
		Username: "manager",
		Role:     users.RoleManager,
	}

	signed, err := tm.Issue(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, signed)

	userID, claims, err := tm.Verify(signed)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, "manager", claims.Username)
	assert.Equal(t, users.RoleManager, claims.Role)
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tm := newTestTokenManager(issuedAt)

	signed, err := tm.Issue(&users.User{ID: uuid.New(), Username: "user", Role: users.RoleUser})
	assert.NoError(t, err)

	tm.now = func() time.Time { return issuedAt.Add(25 * time.Hour) }
	_, _, err = tm.Verify(signed)
	assert.Error(t, err)
}

func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tm := newTestTokenManager(now)

	signed, err := tm.Issue(&users.User{ID: uuid.New(), Username: "user", Role: users.RoleUser})
	assert.NoError(t, err)

	other := NewTokenManager(&config.AuthConfig{JWTSecret: "different", Issuer: "workflowd", TTLHours: 24})
	other.now = tm.now
	_, _, err = other.Verify(signed)
	assert.Error(t, err)
}

func TestTokenManager_Verify_Garbage(t *testing.T) {
	tm := newTestTokenManager(time.Now().UTC())
	_, _, err := tm.Verify("not-a-token")
	assert.Error(t, err)
}
