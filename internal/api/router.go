package api

import (
	"github.com/gorilla/mux"

	"github.com/worklens/worklens-backend/internal/advice"
	"github.com/worklens/worklens-backend/internal/api/recovery"
	"github.com/worklens/worklens-backend/internal/docstore"
	"github.com/worklens/worklens-backend/internal/team"
	"github.com/worklens/worklens-backend/internal/workitems"
)

// NewRouter wires all API routes onto a gorilla/mux router.
func NewRouter(store docstore.Store, repo *workitems.Repository, agg *team.Aggregator, queue *advice.Queue) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler(store)
	projectHandler := NewProjectHandler(repo)
	taskHandler := NewTaskHandler(repo)
	contextHandler := NewContextHandler(agg)
	adviceHandler := NewAdviceHandler(queue)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Project endpoints
	router.HandleFunc("/api/projects", projectHandler.ListProjects).Methods("GET")
	router.HandleFunc("/api/projects", projectHandler.CreateProject).Methods("POST")
	router.HandleFunc("/api/projects/{projectId}", projectHandler.GetProject).Methods("GET")
	router.HandleFunc("/api/projects/{projectId}", projectHandler.UpdateProject).Methods("PATCH")

	// Task and subtask endpoints
	router.HandleFunc("/api/projects/{projectId}/tasks", taskHandler.CreateTask).Methods("POST")
	router.HandleFunc("/api/projects/{projectId}/tasks/{taskId}", taskHandler.GetTask).Methods("GET")
	router.HandleFunc("/api/projects/{projectId}/tasks/{taskId}/subtasks", taskHandler.CreateSubtask).Methods("POST")
	router.HandleFunc("/api/projects/{projectId}/tasks/{taskId}/subtasks/{subTaskId}", taskHandler.GetSubtask).Methods("GET")

	// Per-user endpoints
	router.HandleFunc("/api/users/{email}/tasks", taskHandler.UserTasks).Methods("GET")
	router.HandleFunc("/api/users/{email}/projects", taskHandler.UserProjects).Methods("GET")
	router.HandleFunc("/api/users/{email}/context", contextHandler.UserContext).Methods("GET")
	router.HandleFunc("/api/users/{email}/project-context", contextHandler.ProjectContext).Methods("GET")
	router.HandleFunc("/api/users/{email}/task-contexts", contextHandler.UserTaskContexts).Methods("GET")

	// Team aggregation endpoints
	router.HandleFunc("/api/projects/{projectId}/team/user-contexts", contextHandler.TeamUserContexts).Methods("GET")
	router.HandleFunc("/api/projects/{projectId}/team/project-contexts", contextHandler.TeamProjectContexts).Methods("GET")
	router.HandleFunc("/api/projects/{projectId}/members", contextHandler.ProjectMembers).Methods("GET")

	// Advice queue endpoints
	router.HandleFunc("/api/advice", adviceHandler.CreateAdvice).Methods("POST")
	router.HandleFunc("/api/advice/pending", adviceHandler.ListPending).Methods("GET")
	router.HandleFunc("/api/advice/{adviceId}/status", adviceHandler.SetStatus).Methods("PATCH")

	return router
}
