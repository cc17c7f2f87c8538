package users

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/enterprise-workflow/workflowd/internal/audit"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

func TestService_Create_DuplicateUsername(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewService(db, audit.NewRecorder(db))

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE username = \$1`).
		WithArgs("manager").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	sqlMock.ExpectRollback()

	actor := Actor{ID: uuid.New(), FullName: "System Administrator", Role: RoleAdmin}
	created, err := service.Create(context.Background(), actor, &CreateUserRequest{
		Username: "manager",
		Password: "secret",
		FullName: "Second Manager",
	})

	assert.Nil(t, created)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestService_CreateValidation(t *testing.T) {
	service := NewService(nil, nil)

	tests := []struct {
		name string
		req  CreateUserRequest
	}{
		{"missing username", CreateUserRequest{Password: "secret", FullName: "X"}},
		{"missing password", CreateUserRequest{Username: "x", FullName: "X"}},
		{"missing full name", CreateUserRequest{Username: "x", Password: "secret"}},
		{"unknown role", CreateUserRequest{Username: "x", Password: "secret", FullName: "X", Role: "SUPERVISOR"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.createInTx(context.Background(), nil, &tc.req)
			assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
		})
	}
}

func TestService_Update_UnknownRole(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewService(db, audit.NewRecorder(db))
	userID := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).
			AddRow(userID, "user", "USER"))
	sqlMock.ExpectRollback()

	bad := Role("SUPERVISOR")
	actor := Actor{ID: uuid.New(), FullName: "System Administrator", Role: RoleAdmin}
	updated, err := service.Update(context.Background(), actor, userID, &UpdateUserRequest{Role: &bad})

	assert.Nil(t, updated)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestService_Delete_Self(t *testing.T) {
	service := NewService(nil, nil)
	id := uuid.New()

	err := service.Delete(context.Background(), Actor{ID: id, Role: RoleAdmin}, id)

	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}
