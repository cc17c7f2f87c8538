package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
	"github.com/enterprise-workflow/workflowd/internal/workflow/service"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
	"github.com/enterprise-workflow/workflowd/utils"
)

// Router exposes the workflow template and instance endpoints.
type Router struct {
	templates *service.TemplateService
	instances *service.InstanceService
	actor     func(r *http.Request) *users.Actor
}

func NewRouter(templates *service.TemplateService, instances *service.InstanceService, actor func(r *http.Request) *users.Actor) *Router {
	return &Router{templates: templates, instances: instances, actor: actor}
}

// HandleListTemplates handles GET /api/workflows requests
func (wr *Router) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := wr.templates.List(r.Context())
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleCreateTemplate handles POST /api/workflows requests
func (wr *Router) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	resp, err := wr.templates.Create(r.Context(), *wr.actor(r), &req)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleCreateInstance handles POST /api/instances requests
func (wr *Router) HandleCreateInstance(w http.ResponseWriter, r *http.Request) {
	var req model.CreateInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	resp, err := wr.instances.Create(r.Context(), *wr.actor(r), &req)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleGetInstance handles GET /api/instances/{instanceID} requests
func (wr *Router) HandleGetInstance(w http.ResponseWriter, r *http.Request) {
	id, err := parseInstanceID(r)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	resp, err := wr.instances.Get(r.Context(), *wr.actor(r), id)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleListMine handles GET /api/instances/mine requests
func (wr *Router) HandleListMine(w http.ResponseWriter, r *http.Request) {
	list, err := wr.instances.ListMine(r.Context(), *wr.actor(r))
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleListAssigned handles GET /api/instances/assigned requests
func (wr *Router) HandleListAssigned(w http.ResponseWriter, r *http.Request) {
	list, err := wr.instances.ListAssigned(r.Context(), *wr.actor(r))
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleListAll handles GET /api/instances requests. Filters combine with
// logical AND: status, owner, date (calendar day of submission), q
// (description or template title substring), offset, limit.
func (wr *Router) HandleListAll(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	list, err := wr.instances.ListAll(r.Context(), *wr.actor(r), filter)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleTransition handles PUT /api/instances/{instanceID}/status requests
func (wr *Router) HandleTransition(w http.ResponseWriter, r *http.Request) {
	id, err := parseInstanceID(r)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	var req model.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	resp, err := wr.instances.Transition(r.Context(), *wr.actor(r), id, &req)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAssign handles PUT /api/instances/{instanceID}/assign requests
func (wr *Router) HandleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := parseInstanceID(r)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	var req model.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	resp, err := wr.instances.Assign(r.Context(), *wr.actor(r), id, &req)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdateDetails handles PUT /api/instances/{instanceID} requests
func (wr *Router) HandleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	id, err := parseInstanceID(r)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	var req model.UpdateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Validation("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	resp, err := wr.instances.UpdateDetails(r.Context(), *wr.actor(r), id, &req)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseInstanceID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("instanceID"))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid instanceID: %v", err)
	}
	return id, nil
}

func parseFilter(r *http.Request) (model.InstanceFilter, error) {
	var filter model.InstanceFilter
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status := model.InstanceStatus(raw)
		if !status.Valid() {
			return filter, apperrors.Validation("invalid status filter: %s", raw)
		}
		filter.Status = &status
	}
	filter.Owner = query.Get("owner")
	filter.Query = query.Get("q")
	if raw := query.Get("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, apperrors.Validation("invalid date filter: %v", err)
		}
		filter.Date = &day
	}
	filter.Offset = utils.ParseQueryInt(query, "offset")
	filter.Limit = utils.ParseQueryInt(query, "limit")

	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
