package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents a user's role in the approval system.
// Roles form a closed enumeration; authorization decisions dispatch through
// the review policy, not scattered conditionals.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// IsReviewer reports whether the role may review workflow instances.
// MANAGER and ADMIN have identical transition rights.
func (r Role) IsReviewer() bool {
	return r == RoleManager || r == RoleAdmin
}

// User represents an account in the system. The password hash is write-only
// and never serialized.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(100);column:username;not null;uniqueIndex" json:"username"`
	FullName     string    `gorm:"type:varchar(255);column:full_name;not null" json:"fullName"`
	Role         Role      `gorm:"type:varchar(20);column:role;not null" json:"role"`
	PasswordHash string    `gorm:"type:varchar(255);column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
}

func (u *User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that assigns an ID when none is set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewRandom()
	}
	return
}

// CreateUserRequest is the admin user-creation payload
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// UpdateUserRequest carries the mutable user fields. Nil fields are left
// untouched; username is immutable.
type UpdateUserRequest struct {
	FullName *string `json:"fullName"`
	Role     *Role   `json:"role"`
	Password *string `json:"password"`
}

// UpdateProfileRequest carries the self-service profile fields
type UpdateProfileRequest struct {
	FullName *string `json:"fullName"`
	Password *string `json:"password"`
}
