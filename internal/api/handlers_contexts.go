package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/worklens/worklens-backend/internal/api/respond"
	"github.com/worklens/worklens-backend/internal/api/validate"
	"github.com/worklens/worklens-backend/internal/model"
	"github.com/worklens/worklens-backend/internal/team"
)

// ContextHandler exposes the per-user and team context aggregation reads.
type ContextHandler struct {
	agg *team.Aggregator
}

func NewContextHandler(agg *team.Aggregator) *ContextHandler {
	return &ContextHandler{agg: agg}
}

// UserContext GET /api/users/{email}/context
func (h *ContextHandler) UserContext(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if err := validate.Email(email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	ctx, err := h.agg.UserContext(r.Context(), email)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if ctx == nil {
		respond.WriteNotFound(w, "no user context found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, ctx)
}

// ProjectContext GET /api/users/{email}/project-context
func (h *ContextHandler) ProjectContext(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if err := validate.Email(email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	ctx, err := h.agg.ProjectContext(r.Context(), email)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if ctx == nil {
		respond.WriteNotFound(w, "no project context found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, ctx)
}

// UserTaskContexts GET /api/users/{email}/task-contexts
func (h *ContextHandler) UserTaskContexts(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if err := validate.Email(email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	contexts, err := h.agg.UserTaskContexts(r.Context(), email)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"taskContexts": contexts, "count": len(contexts)})
}

// TeamUserContexts GET /api/projects/{projectId}/team/user-contexts?email=
func (h *ContextHandler) TeamUserContexts(w http.ResponseWriter, r *http.Request) {
	h.teamContexts(w, r, h.agg.TeamUserContexts)
}

// TeamProjectContexts GET /api/projects/{projectId}/team/project-contexts?email=
func (h *ContextHandler) TeamProjectContexts(w http.ResponseWriter, r *http.Request) {
	h.teamContexts(w, r, h.agg.TeamProjectContexts)
}

// teamContexts shares the individual-plus-team flow: a missing individual
// context short-circuits to 404 without the team fetch.
func (h *ContextHandler) teamContexts(w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, email, projectID string) (*model.TeamContextsResult, error)) {
	projectID := mux.Vars(r)["projectId"]
	email := r.URL.Query().Get("email")
	if err := validate.Email(email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := fetch(r.Context(), email, projectID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if out == nil {
		respond.WriteNotFound(w, "no individual context found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ProjectMembers GET /api/projects/{projectId}/members
func (h *ContextHandler) ProjectMembers(w http.ResponseWriter, r *http.Request) {
	contexts, err := h.agg.ProjectMembers(r.Context(), mux.Vars(r)["projectId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"teamContexts": contexts, "count": len(contexts)})
}
