package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/enterprise-workflow/workflowd/internal/users"
)

func uploadRequest(t *testing.T, instanceID uuid.UUID, fileSize int) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "payload.bin")
	assert.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), fileSize))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/instances/"+instanceID.String()+"/files", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetPathValue("instanceID", instanceID.String())
	return req
}

func TestRouter_HandleUpload_FileAtLimit(t *testing.T) {
	// A file exactly at the configured limit must survive the request body
	// cap; the multipart framing rides on top of the file bytes.
	const limit = 512
	db, sqlMock := setupTestDB(t)
	service := NewAttachmentService(db, &MockDriver{}, nil, limit)
	actor := users.Actor{ID: uuid.New(), Role: users.RoleUser}
	router := NewRouter(service, func(r *http.Request) *users.Actor { return &actor }, limit)

	instanceID := uuid.New()
	// The instance lookup comes after both size gates: an unknown instance
	// proves the upload was not rejected as too large.
	sqlMock.ExpectQuery(`SELECT \* FROM "workflow_instances" WHERE id = \$1`).
		WithArgs(instanceID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rr := httptest.NewRecorder()
	router.HandleUpload(rr, uploadRequest(t, instanceID, limit))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_HandleUpload_FileOverLimit(t *testing.T) {
	const limit = 512
	service := NewAttachmentService(nil, &MockDriver{}, nil, limit)
	actor := users.Actor{ID: uuid.New(), Role: users.RoleUser}
	router := NewRouter(service, func(r *http.Request) *users.Actor { return &actor }, limit)

	rr := httptest.NewRecorder()
	router.HandleUpload(rr, uploadRequest(t, uuid.New(), limit+1))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
