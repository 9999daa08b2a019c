package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/worklens/worklens-backend/internal/advice"
	"github.com/worklens/worklens-backend/internal/api/respond"
	"github.com/worklens/worklens-backend/internal/model"
)

// AdviceHandler exposes the advice scheduling queue.
type AdviceHandler struct {
	queue *advice.Queue
}

func NewAdviceHandler(queue *advice.Queue) *AdviceHandler {
	return &AdviceHandler{queue: queue}
}

// CreateAdvice POST /api/advice
func (h *AdviceHandler) CreateAdvice(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAdviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.queue.CreateItem(r.Context(), req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListPending GET /api/advice/pending?user=&withinHours=
func (h *AdviceHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	withinHours := 0
	if raw := r.URL.Query().Get("withinHours"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respond.WriteBadRequest(w, "withinHours must be a positive integer")
			return
		}
		withinHours = v
	}
	items, err := h.queue.ListPending(r.Context(), r.URL.Query().Get("user"), withinHours)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

// SetStatus PATCH /api/advice/{adviceId}/status
func (h *AdviceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
		Result string `json:"result,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.queue.SetStatus(r.Context(), mux.Vars(r)["adviceId"], req.Status, req.Result)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
