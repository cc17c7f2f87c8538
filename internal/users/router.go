package users

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// actorResolver decouples the router from the auth middleware package, which
// imports this one.
type actorResolver func(r *http.Request) *Actor

// Router exposes account management and profile endpoints. Admin-only routes
// are additionally gated by role middleware at registration time.
type Router struct {
	service *Service
	actor   actorResolver
}

func NewRouter(service *Service, actor func(r *http.Request) *Actor) *Router {
	return &Router{service: service, actor: actor}
}

// HandleList handles GET /api/users requests
func (ur *Router) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := ur.service.List(r.Context())
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/users requests
func (ur *Router) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	user, err := ur.service.Create(r.Context(), *ur.actor(r), &req)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleUpdate handles PUT /api/users/{userID} requests
func (ur *Router) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid userID: %v", err))
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	user, err := ur.service.Update(r.Context(), *ur.actor(r), id, &req)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDelete handles DELETE /api/users/{userID} requests
func (ur *Router) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid userID: %v", err))
		return
	}

	if err := ur.service.Delete(r.Context(), *ur.actor(r), id); err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetProfile handles GET /api/profile requests
func (ur *Router) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := ur.service.GetByID(r.Context(), ur.actor(r).ID)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile handles PUT /api/profile requests
func (ur *Router) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	user, err := ur.service.UpdateProfile(r.Context(), *ur.actor(r), &req)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
