package auth

import (
	"encoding/json"
	"net/http"

	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// Router exposes the authentication endpoints. Both are public.
type Router struct {
	service *Service
}

func NewRouter(service *Service) *Router {
	return &Router{service: service}
}

// HandleRegister handles POST /api/auth/register requests
func (ar *Router) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	resp, err := ar.service.Register(r.Context(), &req)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleLogin handles POST /api/auth/login requests
func (ar *Router) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	resp, err := ar.service.Login(r.Context(), &req)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
