package advice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/worklens/worklens-backend/internal/clock"
	"github.com/worklens/worklens-backend/internal/docstore"
	"github.com/worklens/worklens-backend/internal/docstore/memstore"
	"github.com/worklens/worklens-backend/internal/model"
)

var jst = time.FixedZone("JST", 9*3600)

// Monday 10:30 local, well inside the business window.
var queueNow = time.Date(2026, 3, 2, 10, 30, 0, 0, jst)

func newTestQueue() (*Queue, *memstore.Store) {
	s := memstore.New()
	return NewQueue(s, clock.Frozen{T: queueNow}, zerolog.Nop(), 9, 18), s
}

func validRequest() model.CreateAdviceRequest {
	return model.CreateAdviceRequest{
		UserEmail:  "alice@x.com",
		Priority:   3,
		Reason:     "standup reminder",
		AdviceTime: queueNow.Add(2 * time.Hour).UTC().Format(time.RFC3339),
	}
}

func TestCreateItemKeepsFutureTime(t *testing.T) {
	q, s := newTestQueue()
	out, err := q.CreateItem(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if out.Adjusted {
		t.Errorf("future time should not be adjusted")
	}
	if !out.EffectiveTime.Equal(queueNow.Add(2 * time.Hour)) {
		t.Errorf("effective time = %v", out.EffectiveTime)
	}

	doc, _ := s.Get(context.Background(), "adviceQueue/"+out.AdviceID)
	if doc == nil {
		t.Fatal("item not stored")
	}
	if doc.Fields["status"] != model.AdvicePending {
		t.Errorf("status = %v", doc.Fields["status"])
	}
	if !doc.Fields["created_at"].(time.Time).Equal(queueNow) {
		t.Errorf("created_at = %v", doc.Fields["created_at"])
	}
}

func TestCreateItemBackoffByPriority(t *testing.T) {
	cases := []struct {
		priority int
		delay    time.Duration
	}{
		{5, 10 * time.Minute},
		{4, 15 * time.Minute},
		{3, 20 * time.Minute},
		{2, 25 * time.Minute},
		{1, 30 * time.Minute},
	}
	for _, c := range cases {
		q, _ := newTestQueue()
		req := validRequest()
		req.Priority = c.priority
		req.AdviceTime = queueNow.Add(-time.Hour).UTC().Format(time.RFC3339)

		out, err := q.CreateItem(context.Background(), req)
		if err != nil {
			t.Fatalf("priority %d: %v", c.priority, err)
		}
		if !out.Adjusted {
			t.Errorf("priority %d: past time should be adjusted", c.priority)
		}
		if want := queueNow.Add(c.delay); !out.EffectiveTime.Equal(want) {
			t.Errorf("priority %d: effective = %v, want %v", c.priority, out.EffectiveTime, want)
		}
	}
}

func TestCreateItemExactNowIsAdjusted(t *testing.T) {
	q, _ := newTestQueue()
	req := validRequest()
	req.AdviceTime = queueNow.UTC().Format(time.RFC3339)
	out, err := q.CreateItem(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Adjusted {
		t.Fatal("time equal to now must be treated as not in the future")
	}
}

func TestCreateItemRejectsOutsideWindow(t *testing.T) {
	q, s := newTestQueue()
	req := validRequest()
	req.AdviceTime = time.Date(2026, 3, 2, 20, 0, 0, 0, jst).UTC().Format(time.RFC3339)

	_, err := q.CreateItem(context.Background(), req)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	docs, _ := s.Stream(context.Background(), "adviceQueue", docstore.Query{})
	if len(docs) != 0 {
		t.Fatalf("rejected item must not be persisted")
	}

	// The end hour is exclusive.
	req.AdviceTime = time.Date(2026, 3, 2, 18, 0, 0, 0, jst).UTC().Format(time.RFC3339)
	if _, err := q.CreateItem(context.Background(), req); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("18:00 should be outside [9, 18), got %v", err)
	}
}

func TestCreateItemValidation(t *testing.T) {
	q, _ := newTestQueue()
	ctx := context.Background()

	req := validRequest()
	req.UserEmail = ""
	if _, err := q.CreateItem(ctx, req); !errors.Is(err, model.ErrValidation) {
		t.Errorf("missing user: %v", err)
	}

	req = validRequest()
	req.Priority = 6
	if _, err := q.CreateItem(ctx, req); !errors.Is(err, model.ErrValidation) {
		t.Errorf("priority out of range: %v", err)
	}

	req = validRequest()
	req.Reason = ""
	if _, err := q.CreateItem(ctx, req); !errors.Is(err, model.ErrValidation) {
		t.Errorf("missing reason: %v", err)
	}

	req = validRequest()
	req.AdviceTime = "tomorrow-ish"
	if _, err := q.CreateItem(ctx, req); !errors.Is(err, model.ErrValidation) {
		t.Errorf("malformed time: %v", err)
	}
}

func TestListPendingFiltersAndOrder(t *testing.T) {
	q, s := newTestQueue()
	ctx := context.Background()
	put := func(id string, f docstore.Fields) {
		t.Helper()
		if err := s.Put(ctx, "adviceQueue/"+id, f); err != nil {
			t.Fatal(err)
		}
	}
	put("a", docstore.Fields{"status": "processing", "user_email": "alice@x.com", "created_at": queueNow.Add(-time.Hour)})
	put("b", docstore.Fields{"status": "pending", "user_email": "bob@x.com", "created_at": queueNow.Add(-2 * time.Hour)})
	put("c", docstore.Fields{"status": "pending", "user_email": "alice@x.com", "created_at": queueNow.Add(-time.Minute)})
	put("d", docstore.Fields{"status": "completed", "user_email": "alice@x.com", "created_at": queueNow.Add(-time.Hour)})
	put("e", docstore.Fields{"status": "pending", "user_email": "alice@x.com", "created_at": queueNow.Add(-48 * time.Hour)})

	got, err := q.ListPending(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, item := range got {
		ids = append(ids, item["advice_id"].(string))
	}
	// pending before processing, then user, then created_at ascending.
	want := []string{"c", "b", "a"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got order %v, want %v", ids, want)
		}
	}

	alice, err := q.ListPending(ctx, "alice@x.com", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(alice) != 2 {
		t.Fatalf("user filter failed: %d items", len(alice))
	}

	none, err := q.ListPending(ctx, "carol@x.com", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty list, got %d", len(none))
	}
}

func TestSetStatusStampsProcessedAt(t *testing.T) {
	q, s := newTestQueue()
	ctx := context.Background()
	out, err := q.CreateItem(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}

	res, err := q.SetStatus(ctx, out.AdviceID, "failed", "worker crashed")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != "failed" || !res.ProcessedAt.Equal(queueNow) {
		t.Errorf("unexpected result %+v", res)
	}

	doc, _ := s.Get(ctx, "adviceQueue/"+out.AdviceID)
	if doc.Fields["status"] != "failed" || doc.Fields["result"] != "worker crashed" {
		t.Errorf("transition not persisted: %v", doc.Fields)
	}
	if !doc.Fields["processed_at"].(time.Time).Equal(queueNow) {
		t.Errorf("processed_at = %v", doc.Fields["processed_at"])
	}

	// Any status string is accepted, result stays untouched when omitted.
	if _, err := q.SetStatus(ctx, out.AdviceID, "requeued", ""); err != nil {
		t.Fatal(err)
	}
	doc, _ = s.Get(ctx, "adviceQueue/"+out.AdviceID)
	if doc.Fields["status"] != "requeued" || doc.Fields["result"] != "worker crashed" {
		t.Errorf("free-form transition failed: %v", doc.Fields)
	}
}

func TestSetStatusNotFound(t *testing.T) {
	q, _ := newTestQueue()
	if _, err := q.SetStatus(context.Background(), "missing", "completed", ""); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
