package notifications

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// Router exposes the notification inbox endpoints.
type Router struct {
	service *Service
	actor   func(r *http.Request) *users.Actor
}

func NewRouter(service *Service, actor func(r *http.Request) *users.Actor) *Router {
	return &Router{service: service, actor: actor}
}

// HandleList handles GET /api/notifications requests
func (nr *Router) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := nr.service.ListForRecipient(r.Context(), nr.actor(r).ID)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(list)
}

// HandleMarkRead handles PUT /api/notifications/{notificationID}/read requests
func (nr *Router) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("notificationID"))
	if err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid notificationID: %v", err))
		return
	}

	if err := nr.service.MarkRead(r.Context(), *nr.actor(r), id); err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
