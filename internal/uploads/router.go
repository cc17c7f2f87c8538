package uploads

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// multipartOverhead is the extra body allowance for the multipart boundary
// and part headers, so a file exactly at the configured limit still parses.
// The service checks the file part itself against the configured limit.
const multipartOverhead = 64 << 10

// Router exposes the attachment endpoints.
type Router struct {
	service  *AttachmentService
	actor    func(r *http.Request) *users.Actor
	maxBytes int64
}

func NewRouter(service *AttachmentService, actor func(r *http.Request) *users.Actor, maxBytes int64) *Router {
	return &Router{service: service, actor: actor, maxBytes: maxBytes}
}

// HandleUpload handles POST /api/instances/{instanceID}/files requests. The
// file arrives as the "file" part of a multipart form.
func (ur *Router) HandleUpload(w http.ResponseWriter, r *http.Request) {
	instanceID, err := uuid.Parse(r.PathValue("instanceID"))
	if err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid instanceID: %v", err))
		return
	}

	// Cap the request body; the service re-checks the file part's size.
	r.Body = http.MaxBytesReader(w, r.Body, ur.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(ur.maxBytes); err != nil {
		apperrors.WriteHTTP(w, apperrors.PayloadTooLarge("failed to parse upload form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("file is required"))
		return
	}
	defer file.Close()

	resp, err := ur.service.Attach(r.Context(), *ur.actor(r), instanceID,
		header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleList handles GET /api/instances/{instanceID}/files requests
func (ur *Router) HandleList(w http.ResponseWriter, r *http.Request) {
	instanceID, err := uuid.Parse(r.PathValue("instanceID"))
	if err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid instanceID: %v", err))
		return
	}

	list, err := ur.service.ListForInstance(r.Context(), *ur.actor(r), instanceID)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(list)
}

// HandleDownload handles GET /api/files/{attachmentID} requests, streaming
// the file back with its original name.
func (ur *Router) HandleDownload(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := uuid.Parse(r.PathValue("attachmentID"))
	if err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid attachmentID: %v", err))
		return
	}

	reader, contentType, fileName, err := ur.service.Resolve(r.Context(), *ur.actor(r), attachmentID)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if _, err := io.Copy(w, reader); err != nil {
		// Headers are already written; nothing left to report to the client.
		return
	}
}
