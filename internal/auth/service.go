package auth

import (
	"context"
	"log/slog"

	"github.com/enterprise-workflow/workflowd/internal/audit"
	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// RegisterRequest is the self-registration payload
type RegisterRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	FullName string     `json:"fullName"`
	Role     users.Role `json:"role"`
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token and the caller's identity
type AuthResponse struct {
	Token    string     `json:"token"`
	Username string     `json:"username"`
	FullName string     `json:"fullName"`
	Role     users.Role `json:"role"`
}

// Service handles registration and login. Identity resolution for all other
// operations happens in the middleware.
type Service struct {
	accounts *users.Service
	tokens   *TokenManager
	recorder *audit.Recorder
}

func NewService(accounts *users.Service, tokens *TokenManager, recorder *audit.Recorder) *Service {
	return &Service{accounts: accounts, tokens: tokens, recorder: recorder}
}

// Register creates an account and issues a token for it.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	user, err := s.accounts.Register(ctx, &users.CreateUserRequest{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	slog.Info("user registered", "username", user.Username, "role", user.Role)
	return &AuthResponse{Token: token, Username: user.Username, FullName: user.FullName, Role: user.Role}, nil
}

// Login verifies credentials and issues a token. Failures are reported
// uniformly so usernames cannot be probed.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperrors.Authorization("invalid credentials")
	}
	if !users.VerifyPassword(user, req.Password) {
		slog.Warn("login failed", "username", req.Username)
		return nil, apperrors.Authorization("invalid credentials")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Record(ctx, audit.Entry{
		ActorID:   &user.ID,
		ActorName: user.FullName,
		ActorRole: string(user.Role),
		Action:    audit.ActionUserLogin,
		Details:   "User logged in successfully.",
	}); err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, Username: user.Username, FullName: user.FullName, Role: user.Role}, nil
}
