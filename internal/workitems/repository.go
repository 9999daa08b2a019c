// Package workitems serves project, task and subtask read/write operations
// on top of the docstore, composing reference resolution and the bounded
// subtree fetcher.
package workitems

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/worklens/worklens-backend/internal/clock"
	"github.com/worklens/worklens-backend/internal/docstore"
	"github.com/worklens/worklens-backend/internal/model"
	"github.com/worklens/worklens-backend/internal/refresolve"
	"github.com/worklens/worklens-backend/internal/subtree"
)

const (
	projectsCollection = "projects"
	tasksCollection    = "tasks"
	usersCollection    = "users"
	profilesCollection = "userProfiles"
)

// projectListFields is the fixed projection streamed by GetAllProjects.
var projectListFields = []string{"projectName", "status", "members", "projectOverview"}

// Repository is the work-item repository. It holds no state beyond the
// injected collaborators and is safe for concurrent use.
type Repository struct {
	store    docstore.Store
	subtrees *subtree.Fetcher
	clock    clock.Clock
	log      zerolog.Logger
}

func NewRepository(store docstore.Store, subtrees *subtree.Fetcher, clk clock.Clock, log zerolog.Logger) *Repository {
	return &Repository{store: store, subtrees: subtrees, clock: clk, log: log}
}

// GetAllProjects streams the project collection, optionally narrowed to one
// status, inlining each member's profile info and stripping the write-side
// isOwner and userRef representations.
func (r *Repository) GetAllProjects(ctx context.Context, statusFilter string) ([]docstore.Fields, error) {
	q := docstore.Query{Select: projectListFields}
	if statusFilter != "" {
		q.Filters = []docstore.Filter{{Field: "status", Op: "==", Value: statusFilter}}
	}
	docs, err := r.store.Stream(ctx, projectsCollection, q)
	if err != nil {
		return nil, fmt.Errorf("stream projects: %w", err)
	}

	out := make([]docstore.Fields, 0, len(docs))
	for _, d := range docs {
		members, _ := d.Fields["members"].([]any)
		r.inlineMemberInfo(ctx, members)
		out = append(out, docstore.Fields{
			"projectId":       d.ID,
			"projectName":     stringOr(d.Fields["projectName"], "Unnamed Project"),
			"status":          stringOr(d.Fields["status"], "unknown"),
			"projectOverview": stringOr(d.Fields["projectOverview"], ""),
			"members":         orEmptyList(members),
		})
	}
	return out, nil
}

// GetProjectByID is a point lookup with the same member inlining and
// stripping as GetAllProjects. Absence is model.ErrNotFound.
func (r *Repository) GetProjectByID(ctx context.Context, projectID string) (docstore.Fields, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: projectId is required", model.ErrValidation)
	}
	doc, err := r.store.Get(ctx, docstore.JoinPath(projectsCollection, projectID))
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", projectID, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, model.ErrNotFound)
	}
	fields := doc.Fields
	fields["projectId"] = doc.ID
	if members, ok := fields["members"].([]any); ok {
		r.inlineMemberInfo(ctx, members)
	}
	return fields, nil
}

// CreateProject validates, normalizes members and rules, allocates a
// store-assigned id and persists the project in a single write.
func (r *Repository) CreateProject(ctx context.Context, req model.CreateProjectRequest) (*model.CreateProjectResult, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: project name is required", model.ErrValidation)
	}
	status := req.Status
	if status == "" {
		status = "open"
	}
	now := r.clock.Now()

	fields := docstore.Fields{
		"projectName":     req.Name,
		"projectOverview": req.Overview,
		"status":          status,
		"projectOwner":    []any{req.OwnerEmail},
		"members":         normalizeNewMembers(req.Members, req.OwnerEmail),
		"rules":           normalizeRules(req.Rules),
		"createdAt":       now,
		"updatedAt":       now,
		"createdBy":       req.OwnerEmail,
	}

	projectID := r.store.NewID(projectsCollection)
	fields["projectId"] = projectID
	if err := r.store.Put(ctx, docstore.JoinPath(projectsCollection, projectID), fields); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	r.log.Info().Str("project_id", projectID).Str("project_name", req.Name).Msg("project created")
	return &model.CreateProjectResult{ProjectID: projectID, ProjectName: req.Name}, nil
}

// UpdateProject applies a partial patch: only supplied fields are written,
// and updatedAt/updatedBy are stamped on every call.
func (r *Repository) UpdateProject(ctx context.Context, req model.UpdateProjectRequest) (*model.UpdateProjectResult, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: projectId is required", model.ErrValidation)
	}

	patch := docstore.Fields{
		"updatedAt": r.clock.Now(),
		"updatedBy": req.ActorEmail,
	}
	if req.Name != nil {
		patch["projectName"] = *req.Name
	}
	if req.Status != nil {
		patch["status"] = *req.Status
	}
	if req.Overview != nil {
		patch["projectOverview"] = *req.Overview
	}
	if req.Members != nil {
		patch["members"] = normalizeMemberPatch(req.Members)
	}
	if req.Rules != nil {
		rules := make([]any, 0, len(req.Rules))
		for _, rule := range req.Rules {
			rules = append(rules, docstore.Fields{"content": rule.Content, "priority": rule.Priority})
		}
		patch["rules"] = rules
	}

	err := r.store.Update(ctx, docstore.JoinPath(projectsCollection, req.ProjectID), patch)
	if err == docstore.ErrNotFound {
		return nil, fmt.Errorf("project %s: %w", req.ProjectID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update project %s: %w", req.ProjectID, err)
	}

	updated := make([]string, 0, len(patch))
	for k := range patch {
		updated = append(updated, k)
	}
	sort.Strings(updated)
	return &model.UpdateProjectResult{ProjectID: req.ProjectID, UpdatedFields: updated}, nil
}

// CreateTask writes a task under a project with defaulted status/priority.
// Malformed optional dates are ignored rather than failing the call.
func (r *Repository) CreateTask(ctx context.Context, req model.CreateTaskRequest) (*model.CreateTaskResult, error) {
	if req.ProjectID == "" || req.Title == "" {
		return nil, fmt.Errorf("%w: projectId and title are required", model.ErrValidation)
	}
	fields, err := r.taskFields(req)
	if err != nil {
		return nil, err
	}

	taskID := r.store.NewID(tasksCollection)
	path := docstore.JoinPath(projectsCollection, req.ProjectID, tasksCollection, taskID)
	if err := r.store.Put(ctx, path, fields); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &model.CreateTaskResult{TaskID: taskID, Title: req.Title}, nil
}

// CreateSubtask writes a subtask under a parent task and assigns it a
// generated secondary identity independent of the storage path.
func (r *Repository) CreateSubtask(ctx context.Context, req model.CreateTaskRequest) (*model.CreateSubtaskResult, error) {
	if req.ProjectID == "" || req.ParentTaskID == "" || req.Title == "" {
		return nil, fmt.Errorf("%w: projectId, parentTaskId and title are required", model.ErrValidation)
	}
	fields, err := r.taskFields(req)
	if err != nil {
		return nil, err
	}
	secondaryID := r.store.NewID(subtree.SubTasksCollection)
	fields["id"] = secondaryID

	subTaskID := r.store.NewID(subtree.SubTasksCollection)
	path := docstore.JoinPath(projectsCollection, req.ProjectID, tasksCollection, req.ParentTaskID,
		subtree.SubTasksCollection, subTaskID)
	if err := r.store.Put(ctx, path, fields); err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}
	return &model.CreateSubtaskResult{SubTaskID: subTaskID, ID: secondaryID, Title: req.Title}, nil
}

// taskFields builds the stored document shared by tasks and subtasks.
func (r *Repository) taskFields(req model.CreateTaskRequest) (docstore.Fields, error) {
	status := model.TaskReady
	if req.Status != "" {
		parsed, err := model.ParseTaskStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}
	now := r.clock.Now()
	fields := docstore.Fields{
		"title":            req.Title,
		"description":      req.Description,
		"assignee":         req.Assignee,
		"status":           string(status),
		"priority":         priority,
		"inReview":         false,
		"type":             "task",
		"createdAt":        now,
		"updatedAt":        now,
		"updatedUserEmail": req.ActorEmail,
	}
	if ts, ok := parseInstant(req.StartDate); ok {
		fields["startDate"] = ts
	}
	if ts, ok := parseInstant(req.DueDate); ok {
		fields["dueDate"] = ts
	}
	return fields, nil
}

// GetUserProjects scans all projects and keeps those where the user appears
// in the member list, matching by reference-path containment.
func (r *Repository) GetUserProjects(ctx context.Context, email string) ([]model.ProjectSummary, error) {
	docs, err := r.store.Stream(ctx, projectsCollection, docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("stream projects: %w", err)
	}
	var out []model.ProjectSummary
	for _, d := range docs {
		members, _ := d.Fields["members"].([]any)
		for _, m := range members {
			ref, ok := refresolve.MemberRef(m)
			if !ok || !strings.Contains(ref.Path, email) {
				continue
			}
			out = append(out, model.ProjectSummary{
				ProjectID:   d.ID,
				ProjectName: stringOr(d.Fields["projectName"], "Unnamed Project"),
				Status:      stringOr(d.Fields["status"], "unknown"),
				Description: stringOr(d.Fields["description"], ""),
			})
			break
		}
	}
	return out, nil
}

// GetUserTasks collects the user's assigned tasks across one or all of their
// projects, appending every kept task's full descendant subtree. A failure
// scoped to one project is logged and skips that project only.
func (r *Repository) GetUserTasks(ctx context.Context, email, projectID string, includeCompleted bool) ([]docstore.Fields, error) {
	var projectIDs []string
	if projectID != "" {
		projectIDs = []string{projectID}
	} else {
		projects, err := r.GetUserProjects(ctx, email)
		if err != nil {
			return nil, err
		}
		for _, p := range projects {
			projectIDs = append(projectIDs, p.ProjectID)
		}
	}

	var all []docstore.Fields
	for _, pid := range projectIDs {
		tasks, err := r.userTasksInProject(ctx, email, pid, includeCompleted)
		if err != nil {
			r.log.Warn().Err(err).Str("project_id", pid).Msg("skipping project during task scan")
			continue
		}
		all = append(all, tasks...)
	}
	return all, nil
}

func (r *Repository) userTasksInProject(ctx context.Context, email, projectID string, includeCompleted bool) ([]docstore.Fields, error) {
	projectName := "Unknown Project"
	if doc, err := r.store.Get(ctx, docstore.JoinPath(projectsCollection, projectID)); err != nil {
		return nil, err
	} else if doc != nil {
		projectName = stringOr(doc.Fields["projectName"], projectID)
	}

	taskDocs, err := r.store.Stream(ctx, docstore.JoinPath(projectsCollection, projectID, tasksCollection), docstore.Query{})
	if err != nil {
		return nil, err
	}

	var out []docstore.Fields
	for _, d := range taskDocs {
		if !assignedTo(d.Fields["assignee"], email) {
			continue
		}
		if !includeCompleted && stringOr(d.Fields["status"], "") == string(model.TaskCompleted) {
			continue
		}
		task := d.Fields
		task["taskId"] = d.ID
		task["projectId"] = projectID
		task["projectName"] = projectName
		task["taskPath"] = d.Path
		task["isSubTask"] = false
		task["nestingLevel"] = 0
		out = append(out, task)

		for _, sub := range r.subtrees.Fetch(ctx, d.Path, 1) {
			sub["projectId"] = projectID
			sub["projectName"] = projectName
			out = append(out, sub)
		}
	}
	return out, nil
}

// GetSpecificTask is a direct path lookup that eagerly embeds the full
// descendant subtree.
func (r *Repository) GetSpecificTask(ctx context.Context, projectID, taskID string) (docstore.Fields, error) {
	if projectID == "" || taskID == "" {
		return nil, fmt.Errorf("%w: projectId and taskId are required", model.ErrValidation)
	}
	path := docstore.JoinPath(projectsCollection, projectID, tasksCollection, taskID)
	doc, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("task %s: %w", path, model.ErrNotFound)
	}
	fields := doc.Fields
	fields["projectId"] = projectID
	fields["taskId"] = taskID
	fields["taskPath"] = path
	fields["isSubTask"] = false
	fields["nestingLevel"] = 0
	fields["subTasks"] = orEmptySubtree(r.subtrees.Fetch(ctx, path, 1))
	return fields, nil
}

// GetSpecificSubtask looks up one subtask and embeds its own descendants,
// starting the fetch at level 2 since the subtask occupies level 1.
func (r *Repository) GetSpecificSubtask(ctx context.Context, projectID, parentTaskID, subTaskID string) (docstore.Fields, error) {
	if projectID == "" || parentTaskID == "" || subTaskID == "" {
		return nil, fmt.Errorf("%w: projectId, parentTaskId and subTaskId are required", model.ErrValidation)
	}
	path := docstore.JoinPath(projectsCollection, projectID, tasksCollection, parentTaskID,
		subtree.SubTasksCollection, subTaskID)
	doc, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("get subtask %s: %w", path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("subtask %s: %w", path, model.ErrNotFound)
	}
	fields := doc.Fields
	fields["projectId"] = projectID
	fields["taskId"] = subTaskID
	fields["parentTaskId"] = parentTaskID
	fields["taskPath"] = path
	fields["isSubTask"] = true
	fields["nestingLevel"] = 1
	fields["subTasks"] = orEmptySubtree(r.subtrees.Fetch(ctx, path, 2))
	return fields, nil
}

// inlineMemberInfo resolves each member reference to its identity and a
// userInfo projection, then strips the write-side isOwner and userRef fields.
func (r *Repository) inlineMemberInfo(ctx context.Context, members []any) {
	for _, m := range members {
		member, ok := m.(docstore.Fields)
		if !ok {
			continue
		}
		if ref, ok := member["userRef"].(docstore.Ref); ok {
			if email, ok := refresolve.UserEmail(ref); ok {
				member["userEmail"] = email
				if info := r.userInfo(ctx, email); info != nil {
					member["userInfo"] = info
				}
			}
		}
		delete(member, "isOwner")
		delete(member, "userRef")
	}
}

// userInfo fetches a user's display name and nickname from the profile
// sub-collection. Failures degrade to nil.
func (r *Repository) userInfo(ctx context.Context, email string) docstore.Fields {
	docs, err := r.store.Stream(ctx,
		docstore.JoinPath(usersCollection, email, profilesCollection),
		docstore.Query{Select: []string{"displayName", "nickname"}, Limit: 1})
	if err != nil {
		r.log.Warn().Err(err).Str("user", email).Msg("failed to read user profile")
		return nil
	}
	if len(docs) == 0 {
		return nil
	}
	return docs[0].Fields
}

// assignedTo matches a task's assignee field against a user identity.
// Assignee is a string today; a set of identities is accepted for forward
// compatibility.
func assignedTo(assignee any, email string) bool {
	switch a := assignee.(type) {
	case string:
		return a == email
	case []any:
		for _, e := range a {
			if s, ok := e.(string); ok && s == email {
				return true
			}
		}
	case []string:
		for _, s := range a {
			if s == email {
				return true
			}
		}
	}
	return false
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func orEmptyList(members []any) []any {
	if members == nil {
		return []any{}
	}
	return members
}

func orEmptySubtree(subs []docstore.Fields) []docstore.Fields {
	if subs == nil {
		return []docstore.Fields{}
	}
	return subs
}
