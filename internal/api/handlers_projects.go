package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/worklens/worklens-backend/internal/api/respond"
	"github.com/worklens/worklens-backend/internal/api/validate"
	"github.com/worklens/worklens-backend/internal/model"
	"github.com/worklens/worklens-backend/internal/workitems"
)

// ProjectHandler is a thin HTTP transport over the work-item repository's
// project operations.
type ProjectHandler struct {
	repo *workitems.Repository
}

func NewProjectHandler(repo *workitems.Repository) *ProjectHandler {
	return &ProjectHandler{repo: repo}
}

// ListProjects GET /api/projects?status=
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.GetAllProjects(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"projects": projects, "count": len(projects)})
}

// GetProject GET /api/projects/{projectId}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.repo.GetProjectByID(r.Context(), mux.Vars(r)["projectId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, project)
}

// CreateProject POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Email(req.OwnerEmail); err != nil {
		respond.WriteBadRequest(w, "ownerEmail: "+err.Error())
		return
	}
	out, err := h.repo.CreateProject(r.Context(), req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateProject PATCH /api/projects/{projectId}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	req.ProjectID = mux.Vars(r)["projectId"]
	out, err := h.repo.UpdateProject(r.Context(), req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
