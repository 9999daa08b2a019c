package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/worklens/worklens-backend/internal/api/respond"
	"github.com/worklens/worklens-backend/internal/api/validate"
	"github.com/worklens/worklens-backend/internal/model"
	"github.com/worklens/worklens-backend/internal/workitems"
)

// TaskHandler is a thin HTTP transport over the work-item repository's task
// and subtask operations.
type TaskHandler struct {
	repo *workitems.Repository
}

func NewTaskHandler(repo *workitems.Repository) *TaskHandler {
	return &TaskHandler{repo: repo}
}

// CreateTask POST /api/projects/{projectId}/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	req.ProjectID = mux.Vars(r)["projectId"]
	out, err := h.repo.CreateTask(r.Context(), req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GetTask GET /api/projects/{projectId}/tasks/{taskId}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	task, err := h.repo.GetSpecificTask(r.Context(), vars["projectId"], vars["taskId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, task)
}

// CreateSubtask POST /api/projects/{projectId}/tasks/{taskId}/subtasks
func (h *TaskHandler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	vars := mux.Vars(r)
	req.ProjectID = vars["projectId"]
	req.ParentTaskID = vars["taskId"]
	out, err := h.repo.CreateSubtask(r.Context(), req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GetSubtask GET /api/projects/{projectId}/tasks/{taskId}/subtasks/{subTaskId}
func (h *TaskHandler) GetSubtask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sub, err := h.repo.GetSpecificSubtask(r.Context(), vars["projectId"], vars["taskId"], vars["subTaskId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, sub)
}

// UserTasks GET /api/users/{email}/tasks?projectId=&includeCompleted=
func (h *TaskHandler) UserTasks(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if err := validate.Email(email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	includeCompleted := true
	if raw := r.URL.Query().Get("includeCompleted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respond.WriteBadRequest(w, "includeCompleted must be a boolean")
			return
		}
		includeCompleted = v
	}
	tasks, err := h.repo.GetUserTasks(r.Context(), email, r.URL.Query().Get("projectId"), includeCompleted)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks, "count": len(tasks)})
}

// UserProjects GET /api/users/{email}/projects
func (h *TaskHandler) UserProjects(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if err := validate.Email(email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	projects, err := h.repo.GetUserProjects(r.Context(), email)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if projects == nil {
		projects = []model.ProjectSummary{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"projects": projects, "count": len(projects)})
}
