package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// Router exposes the analytics endpoint. Route-level middleware restricts it
// to reviewers.
type Router struct {
	reporter *CachedReporter
}

func NewRouter(reporter *CachedReporter) *Router {
	return &Router{reporter: reporter}
}

// HandleReport handles GET /api/admin/analytics requests
func (ar *Router) HandleReport(w http.ResponseWriter, r *http.Request) {
	report, err := ar.reporter.Report(r.Context())
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(report)
}
