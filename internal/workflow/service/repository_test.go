package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

func TestInstanceRepository_UpdateStatusInTx(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	repo := NewInstanceRepository(db)
	ctx := context.Background()

	sqlMock.ExpectBegin()
	tx := db.Begin()

	instanceID := uuid.New()

	// The WHERE clause carries both id and the expected status: a concurrent
	// transition changes the status and this update then matches no rows.
	sqlMock.ExpectExec(`UPDATE "workflow_instances" SET .+ WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.UpdateStatusInTx(ctx, tx, instanceID, model.StatusPending, map[string]any{
		"status":  model.StatusApproved,
		"remarks": "ok",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestInstanceRepository_UpdateStatusInTx_NoMatch(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	repo := NewInstanceRepository(db)
	ctx := context.Background()

	sqlMock.ExpectBegin()
	tx := db.Begin()

	sqlMock.ExpectExec(`UPDATE "workflow_instances" SET .+ WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.UpdateStatusInTx(ctx, tx, uuid.New(), model.StatusPending, map[string]any{
		"status": model.StatusRejected,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestInstanceRepository_GetByIDInTx_NotFound(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	repo := NewInstanceRepository(db)
	ctx := context.Background()

	sqlMock.ExpectBegin()
	tx := db.Begin()

	instanceID := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "workflow_instances" WHERE id = \$1`).
		WithArgs(instanceID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))

	result, err := repo.GetByIDInTx(ctx, tx, instanceID)
	assert.Nil(t, result)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestTemplateRepository_GetByIDInTx(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	sqlMock.ExpectBegin()
	tx := db.Begin()

	templateID := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "workflow_templates" WHERE id = \$1`).
		WithArgs(templateID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(templateID, "Leave Application"))

	result, err := repo.GetByIDInTx(ctx, tx, templateID)
	assert.NoError(t, err)
	assert.Equal(t, "Leave Application", result.Title)
}
