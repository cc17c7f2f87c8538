package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/enterprise-workflow/workflowd/internal/config"
	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// Claims are the token claims issued at login. The role claim is informative
// for the client; authorization re-derives the role from the database on
// every request so role changes apply without reissuing tokens.
type Claims struct {
	Username string     `json:"username"`
	Role     users.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256-signed tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a signed token for the user.
func (tm *TokenManager) Issue(user *users.User) (string, error) {
	now := tm.now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a signed token and returns the subject user ID.
func (tm *TokenManager) Verify(tokenString string) (uuid.UUID, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tm.issuer), jwt.WithTimeFunc(tm.now))
	if err != nil || !token.Valid {
		return uuid.Nil, nil, apperrors.Authorization("invalid or expired token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, apperrors.Authorization("malformed token subject")
	}
	return userID, claims, nil
}
