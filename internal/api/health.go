package api

import (
	"net/http"
	"time"

	"github.com/worklens/worklens-backend/internal/api/respond"
	"github.com/worklens/worklens-backend/internal/docstore"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store docstore.Store
}

func NewHealthHandler(store docstore.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// CheckHealth handles GET /api/health. Always returns 200; the body reports
// healthy/unhealthy based on a probe read against the store.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if _, err := h.store.Get(r.Context(), "health/probe"); err != nil {
		status = "unhealthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
