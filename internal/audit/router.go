package audit

import (
	"encoding/json"
	"net/http"

	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
	"github.com/enterprise-workflow/workflowd/utils"
)

// Router exposes the audit log read endpoint. Route-level middleware
// restricts it to administrators.
type Router struct {
	recorder *Recorder
}

func NewRouter(recorder *Recorder) *Router {
	return &Router{recorder: recorder}
}

// HandleList handles GET /api/audit requests
func (ar *Router) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	entries, err := ar.recorder.Query(r.Context(),
		utils.ParseQueryInt(query, "offset"),
		utils.ParseQueryInt(query, "limit"))
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(entries)
}
