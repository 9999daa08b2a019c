package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus is the closed set of task lifecycle states accepted on writes.
// Reads pass stored values through untouched.
type TaskStatus string

const (
	TaskReady      TaskStatus = "ready"
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskRejected   TaskStatus = "rejected"
)

// ParseTaskStatus rejects unknown status labels on the write path.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskReady, TaskPending, TaskInProgress, TaskCompleted, TaskRejected:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown task status %q", ErrValidation, s)
}

// Advice queue item lifecycle states. SetStatus accepts any string (the
// external worker is trusted); these are the conventional values.
const (
	AdvicePending    = "pending"
	AdviceProcessing = "processing"
	AdviceCompleted  = "completed"
	AdviceFailed     = "failed"
)

// MemberInput is one member entry supplied to CreateProject/UpdateProject.
// Either Email alone (the string member form of the wire format) or the
// full object form with role metadata.
type MemberInput struct {
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	RoleDetails string `json:"roleDetails,omitempty"`
	IsOwner     bool   `json:"isOwner,omitempty"`
}

// UnmarshalJSON accepts both member wire forms: a bare identity string and
// the full object.
func (m *MemberInput) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var email string
		if err := json.Unmarshal(b, &email); err != nil {
			return err
		}
		*m = MemberInput{Email: email}
		return nil
	}
	type plain MemberInput
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*m = MemberInput(p)
	return nil
}

// RuleInput is one project rule supplied by the caller. Priority is
// normalized through the canonical mapping before persistence.
type RuleInput struct {
	Content  string `json:"content"`
	Priority string `json:"priority,omitempty"`
}

// CreateProjectRequest carries the arguments of the project create operation.
type CreateProjectRequest struct {
	OwnerEmail string        `json:"ownerEmail"`
	Name       string        `json:"projectName"`
	Overview   string        `json:"projectOverview,omitempty"`
	Status     string        `json:"status,omitempty"`
	Members    []MemberInput `json:"members,omitempty"`
	Rules      []RuleInput   `json:"rules,omitempty"`
}

// CreateProjectResult is the confirmation payload for a created project.
type CreateProjectResult struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
}

// UpdateProjectRequest patches only the fields that are non-nil.
type UpdateProjectRequest struct {
	ProjectID  string        `json:"projectId"`
	ActorEmail string        `json:"actorEmail"`
	Name       *string       `json:"projectName,omitempty"`
	Status     *string       `json:"status,omitempty"`
	Overview   *string       `json:"projectOverview,omitempty"`
	Members    []MemberInput `json:"members,omitempty"`
	Rules      []RuleInput   `json:"rules,omitempty"`
}

// UpdateProjectResult reports which stored fields the patch touched.
type UpdateProjectResult struct {
	ProjectID     string   `json:"projectId"`
	UpdatedFields []string `json:"updatedFields"`
}

// CreateTaskRequest carries the arguments shared by task and subtask
// creation. ParentTaskID is empty for top-level tasks.
type CreateTaskRequest struct {
	ActorEmail   string `json:"actorEmail"`
	ProjectID    string `json:"projectId"`
	ParentTaskID string `json:"parentTaskId,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Assignee     string `json:"assignee,omitempty"`
	Status       string `json:"status,omitempty"`
	Priority     string `json:"priority,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	DueDate      string `json:"dueDate,omitempty"`
}

// CreateTaskResult confirms a created task.
type CreateTaskResult struct {
	TaskID string `json:"taskId"`
	Title  string `json:"title"`
}

// CreateSubtaskResult confirms a created subtask. ID is the generated
// secondary identity, distinct from the store key SubTaskID.
type CreateSubtaskResult struct {
	SubTaskID string `json:"subTaskId"`
	ID        string `json:"id"`
	Title     string `json:"title"`
}

// ProjectSummary is the projection returned by GetUserProjects.
type ProjectSummary struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// CreateAdviceRequest carries the arguments of the advice queue create
// operation. AdviceTime is an ISO-8601 instant proposed by the caller.
type CreateAdviceRequest struct {
	UserEmail  string `json:"userEmail"`
	ProjectID  string `json:"projectId,omitempty"`
	TaskID     string `json:"taskId,omitempty"`
	AdviceType string `json:"adviceType,omitempty"`
	Priority   int    `json:"priority"`
	Reason     string `json:"reason"`
	AdviceTime string `json:"adviceTime"`
}

// CreateAdviceResult confirms a queued advice item with the effective time
// actually stored, which may differ from the requested one.
type CreateAdviceResult struct {
	AdviceID      string    `json:"adviceId"`
	EffectiveTime time.Time `json:"effectiveTime"`
	Adjusted      bool      `json:"adjusted"`
}

// SetAdviceStatusResult confirms a queue item status change.
type SetAdviceStatusResult struct {
	AdviceID    string    `json:"adviceId"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processedAt"`
}

// TeamContextsResult pairs an individual context with the whole team's
// contexts for the leader-facing entry points.
type TeamContextsResult struct {
	IndividualContext map[string]any   `json:"individualContext"`
	TeamContexts      []map[string]any `json:"teamContexts"`
}
