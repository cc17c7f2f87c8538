package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/enterprise-workflow/workflowd/internal/audit"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// Service provides account management. Usernames are unique and immutable;
// role changes take effect for future authorization checks only and never
// rewrite audit history.
type Service struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

func NewService(db *gorm.DB, recorder *audit.Recorder) *Service {
	return &Service{db: db, recorder: recorder}
}

// GetByID returns the user with the given ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// GetByUsername returns the user with the given username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user %q not found", username)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	var list []User
	if err := s.db.WithContext(ctx).Order("username ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return list, nil
}

// Create creates an account on behalf of an administrator.
func (s *Service) Create(ctx context.Context, actor Actor, req *CreateUserRequest) (*User, error) {
	var created *User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.createInTx(ctx, tx, req)
		if err != nil {
			return err
		}
		created = user
		return s.recorder.RecordInTx(ctx, tx, audit.Entry{
			ActorID:   &actor.ID,
			ActorName: actor.FullName,
			ActorRole: string(actor.Role),
			Action:    audit.ActionUserCreated,
			Details:   fmt.Sprintf("Created user %q with role %s", user.Username, user.Role),
		})
	})
	if err != nil {
		return nil, err
	}
	slog.Info("user created", "username", created.Username, "role", created.Role)
	return created, nil
}

// Register creates an account through self-registration. The audit entry is
// attributed to the new user.
func (s *Service) Register(ctx context.Context, req *CreateUserRequest) (*User, error) {
	var created *User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.createInTx(ctx, tx, req)
		if err != nil {
			return err
		}
		created = user
		return s.recorder.RecordInTx(ctx, tx, audit.Entry{
			ActorID:   &user.ID,
			ActorName: user.FullName,
			ActorRole: string(user.Role),
			Action:    audit.ActionUserRegister,
			Details:   fmt.Sprintf("User registered with role: %s", user.Role),
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) createInTx(ctx context.Context, tx *gorm.DB, req *CreateUserRequest) (*User, error) {
	if req.Username == "" {
		return nil, apperrors.Validation("username is required")
	}
	if req.Password == "" {
		return nil, apperrors.Validation("password is required")
	}
	if req.FullName == "" {
		return nil, apperrors.Validation("fullName is required")
	}
	role := req.Role
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.Validation("unknown role %q", req.Role)
	}

	var count int64
	if err := tx.WithContext(ctx).Model(&User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("username %q already exists", req.Username)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     req.Username,
		FullName:     req.FullName,
		Role:         role,
		PasswordHash: hash,
	}
	if err := tx.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Update applies administrator changes to an account. Nil request fields are
// left untouched; username is immutable.
func (s *Service) Update(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateUserRequest) (*User, error) {
	var updated *User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user %s not found", id)
			}
			return fmt.Errorf("failed to fetch user: %w", err)
		}

		if req.FullName != nil && *req.FullName != "" {
			user.FullName = *req.FullName
		}
		if req.Role != nil {
			if !req.Role.Valid() {
				return apperrors.Validation("unknown role %q", *req.Role)
			}
			user.Role = *req.Role
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := HashPassword(*req.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}

		if err := tx.WithContext(ctx).Save(&user).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		updated = &user
		return s.recorder.RecordInTx(ctx, tx, audit.Entry{
			ActorID:   &actor.ID,
			ActorName: actor.FullName,
			ActorRole: string(actor.Role),
			Action:    audit.ActionUserUpdated,
			Details:   fmt.Sprintf("Updated user %q", user.Username),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.ID == id {
		return apperrors.Validation("cannot delete your own account")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user %s not found", id)
			}
			return fmt.Errorf("failed to fetch user: %w", err)
		}
		if err := tx.WithContext(ctx).Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return s.recorder.RecordInTx(ctx, tx, audit.Entry{
			ActorID:   &actor.ID,
			ActorName: actor.FullName,
			ActorRole: string(actor.Role),
			Action:    audit.ActionUserDeleted,
			Details:   fmt.Sprintf("Deleted user %q", user.Username),
		})
	})
}

// UpdateProfile applies self-service changes for the calling user.
func (s *Service) UpdateProfile(ctx context.Context, actor Actor, req *UpdateProfileRequest) (*User, error) {
	update := UpdateUserRequest{FullName: req.FullName, Password: req.Password}
	var updated *User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.WithContext(ctx).First(&user, "id = ?", actor.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user %s not found", actor.ID)
			}
			return fmt.Errorf("failed to fetch user: %w", err)
		}
		if update.FullName != nil && *update.FullName != "" {
			user.FullName = *update.FullName
		}
		if update.Password != nil && *update.Password != "" {
			hash, err := HashPassword(*update.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
		if err := tx.WithContext(ctx).Save(&user).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		updated = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the user's
// stored hash.
func VerifyPassword(user *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
