// Package advice manages the advice scheduling queue: priority-aware
// creation with business-hours validation, pending-item queries and status
// transitions driven by an external worker.
package advice

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/worklens/worklens-backend/internal/clock"
	"github.com/worklens/worklens-backend/internal/docstore"
	"github.com/worklens/worklens-backend/internal/model"
)

const queueCollection = "adviceQueue"

// backoffByPriority is the forced delay applied when the proposed time is
// not strictly in the future. Priority is inverse: higher urgency gets the
// shortest delay.
var backoffByPriority = map[int]time.Duration{
	5: 10 * time.Minute,
	4: 15 * time.Minute,
	3: 20 * time.Minute,
	2: 25 * time.Minute,
	1: 30 * time.Minute,
}

const defaultBackoff = 15 * time.Minute

// DefaultPendingWindowHours is the trailing created_at window for ListPending.
const DefaultPendingWindowHours = 24

// Queue schedules and queries advice items. The business-hours window is
// half-open: [startHour, endHour) in the operating timezone.
type Queue struct {
	store     docstore.Store
	clock     clock.Clock
	log       zerolog.Logger
	startHour int
	endHour   int
}

func NewQueue(store docstore.Store, clk clock.Clock, log zerolog.Logger, startHour, endHour int) *Queue {
	return &Queue{store: store, clock: clk, log: log, startHour: startHour, endHour: endHour}
}

// CreateItem validates and persists one advice item. The proposed time is
// parsed as ISO-8601, converted to the operating timezone and compared
// against a single "now" captured at entry. A non-future time is replaced by
// now plus the priority backoff; the effective time must then fall inside
// the business-hours window or the item is rejected without a write.
func (q *Queue) CreateItem(ctx context.Context, req model.CreateAdviceRequest) (*model.CreateAdviceResult, error) {
	if req.UserEmail == "" {
		return nil, fmt.Errorf("%w: userEmail is required", model.ErrValidation)
	}
	if req.Priority < 1 || req.Priority > 5 {
		return nil, fmt.Errorf("%w: priority must be in [1, 5], got %d", model.ErrValidation, req.Priority)
	}
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: reason is required", model.ErrValidation)
	}

	proposed, err := time.Parse(time.RFC3339, req.AdviceTime)
	if err != nil {
		return nil, fmt.Errorf("%w: adviceTime %q is not a valid ISO-8601 timestamp", model.ErrValidation, req.AdviceTime)
	}

	now := q.clock.Now()
	effective := proposed.In(now.Location())

	adjusted := false
	if !effective.After(now) {
		backoff, ok := backoffByPriority[req.Priority]
		if !ok {
			backoff = defaultBackoff
		}
		effective = now.Add(backoff)
		adjusted = true
		q.log.Info().
			Str("user", req.UserEmail).
			Int("priority", req.Priority).
			Time("proposed", proposed).
			Time("rescheduled", effective).
			Msg("advice time not in the future, rescheduled")
	}

	hour := effective.Hour()
	if hour < q.startHour || hour >= q.endHour {
		return nil, fmt.Errorf("%w: advice time %s falls outside business hours [%02d:00, %02d:00)",
			model.ErrValidation, effective.Format(time.RFC3339), q.startHour, q.endHour)
	}

	adviceID := q.store.NewID(queueCollection)
	fields := docstore.Fields{
		"user_email":  req.UserEmail,
		"project_id":  req.ProjectID,
		"task_id":     req.TaskID,
		"advice_type": req.AdviceType,
		"priority":    req.Priority,
		"reason":      req.Reason,
		"advice_time": effective,
		"status":      model.AdvicePending,
		"created_at":  now,
	}
	if err := q.store.Put(ctx, docstore.JoinPath(queueCollection, adviceID), fields); err != nil {
		return nil, fmt.Errorf("create advice item: %w", err)
	}

	return &model.CreateAdviceResult{
		AdviceID:      adviceID,
		EffectiveTime: effective,
		Adjusted:      adjusted,
	}, nil
}

// ListPending returns items still awaiting completion, pending or already
// picked up as processing, created within the trailing window. An empty
// match is an empty list, not an error.
func (q *Queue) ListPending(ctx context.Context, userEmail string, withinHours int) ([]docstore.Fields, error) {
	if withinHours <= 0 {
		withinHours = DefaultPendingWindowHours
	}
	since := q.clock.Now().Add(-time.Duration(withinHours) * time.Hour)

	query := docstore.Query{
		Filters: []docstore.Filter{
			{Field: "status", Op: "in", Value: []any{model.AdvicePending, model.AdviceProcessing}},
			{Field: "created_at", Op: ">=", Value: since},
		},
		OrderBy: []docstore.Order{
			{Field: "status"},
			{Field: "user_email"},
			{Field: "created_at"},
		},
	}
	if userEmail != "" {
		query.Filters = append(query.Filters, docstore.Filter{Field: "user_email", Op: "==", Value: userEmail})
	}

	docs, err := q.store.Stream(ctx, queueCollection, query)
	if err != nil {
		return nil, fmt.Errorf("stream advice queue: %w", err)
	}
	out := make([]docstore.Fields, 0, len(docs))
	for _, d := range docs {
		item := d.Fields
		item["advice_id"] = d.ID
		out = append(out, item)
	}
	return out, nil
}

// SetStatus records a worker-driven transition. Any status string is
// accepted, processed_at is stamped unconditionally and result is stored
// only when supplied.
func (q *Queue) SetStatus(ctx context.Context, adviceID, status, result string) (*model.SetAdviceStatusResult, error) {
	if adviceID == "" {
		return nil, fmt.Errorf("%w: adviceId is required", model.ErrValidation)
	}
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", model.ErrValidation)
	}

	now := q.clock.Now()
	patch := docstore.Fields{
		"status":       status,
		"processed_at": now,
	}
	if result != "" {
		patch["result"] = result
	}

	err := q.store.Update(ctx, docstore.JoinPath(queueCollection, adviceID), patch)
	if err == docstore.ErrNotFound {
		return nil, fmt.Errorf("advice item %s: %w", adviceID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update advice item %s: %w", adviceID, err)
	}
	return &model.SetAdviceStatusResult{AdviceID: adviceID, Status: status, ProcessedAt: now}, nil
}
