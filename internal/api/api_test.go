package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklens/worklens-backend/internal/advice"
	"github.com/worklens/worklens-backend/internal/clock"
	"github.com/worklens/worklens-backend/internal/docstore"
	"github.com/worklens/worklens-backend/internal/docstore/memstore"
	"github.com/worklens/worklens-backend/internal/refresolve"
	"github.com/worklens/worklens-backend/internal/subtree"
	"github.com/worklens/worklens-backend/internal/team"
	"github.com/worklens/worklens-backend/internal/workitems"
)

var apiNow = time.Date(2026, 3, 2, 10, 30, 0, 0, time.FixedZone("JST", 9*3600))

func newTestServer(t *testing.T) (*httptest.Server, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	log := zerolog.Nop()
	clk := clock.Frozen{T: apiNow}
	resolver := refresolve.New(s, log)
	subtrees := subtree.New(s, log, 3)
	repo := workitems.NewRepository(s, subtrees, clk, log)
	aggregator := team.New(s, resolver, log)
	queue := advice.NewQueue(s, clk, log, 9, 18)

	srv := httptest.NewServer(NewRouter(s, repo, aggregator, queue))
	t.Cleanup(srv.Close)
	return srv, s
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestProjectLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/projects", map[string]interface{}{
		"ownerEmail":  "owner@x.com",
		"projectName": "Apollo",
		"members":     []interface{}{"owner@x.com", "dev@x.com"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	projectID := created["projectId"].(string)
	require.NotEmpty(t, projectID)
	assert.Equal(t, "Apollo", created["projectName"])

	// invalid owner email is rejected before the repository runs
	resp = postJSON(t, srv.URL+"/api/projects", map[string]interface{}{
		"ownerEmail": "not-an-email", "projectName": "Nope",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	// missing name maps to 400
	resp = postJSON(t, srv.URL+"/api/projects", map[string]interface{}{"ownerEmail": "owner@x.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/projects/" + projectID)
	require.NoError(t, err)
	got := decodeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Apollo", got["projectName"])

	resp, err = http.Get(srv.URL + "/api/projects/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	// patch the status
	body, _ := json.Marshal(map[string]interface{}{"status": "closed", "actorEmail": "owner@x.com"})
	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/api/projects/"+projectID, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	patched := decodeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, patched["updatedFields"], "status")

	resp, err = http.Get(srv.URL + "/api/projects")
	require.NoError(t, err)
	list := decodeBody(t, resp)
	assert.Equal(t, float64(1), list["count"])
}

func TestTaskAndSubtaskEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/projects/p1/tasks", map[string]interface{}{
		"title": "build it", "assignee": "alice@x.com", "actorEmail": "alice@x.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := decodeBody(t, resp)
	taskID := task["taskId"].(string)

	resp = postJSON(t, srv.URL+"/api/projects/p1/tasks/"+taskID+"/subtasks", map[string]interface{}{
		"title": "a piece",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sub := decodeBody(t, resp)
	assert.NotEqual(t, sub["subTaskId"], sub["id"])

	resp, err := http.Get(srv.URL + "/api/projects/p1/tasks/" + taskID)
	require.NoError(t, err)
	got := decodeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "build it", got["title"])
	subs := got["subTasks"].([]interface{})
	require.Len(t, subs, 1)
	assert.Equal(t, float64(1), subs[0].(map[string]interface{})["nestingLevel"])
}

func TestUserTasksEndpoint(t *testing.T) {
	srv, s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "projects/p1", docstore.Fields{
		"projectName": "Apollo",
		"members":     []any{docstore.Fields{"userRef": docstore.NewRef("users/alice@x.com")}},
	}))
	require.NoError(t, s.Put(ctx, "projects/p1/tasks/t1", docstore.Fields{
		"title": "mine", "assignee": "alice@x.com", "status": "ready",
	}))

	resp, err := http.Get(srv.URL + "/api/users/alice@x.com/tasks")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	resp, err = http.Get(srv.URL + "/api/users/not-an-email/tasks")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAdviceEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/advice", map[string]interface{}{
		"userEmail":  "alice@x.com",
		"priority":   4,
		"reason":     "review backlog",
		"adviceTime": apiNow.Add(-time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	adviceID := created["adviceId"].(string)
	assert.Equal(t, true, created["adjusted"])

	// outside the business window
	resp = postJSON(t, srv.URL+"/api/advice", map[string]interface{}{
		"userEmail":  "alice@x.com",
		"priority":   4,
		"reason":     "late night ping",
		"adviceTime": time.Date(2026, 3, 2, 22, 0, 0, 0, time.FixedZone("JST", 9*3600)).UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/advice/pending?user=alice@x.com")
	require.NoError(t, err)
	pending := decodeBody(t, resp)
	assert.Equal(t, float64(1), pending["count"])

	body, _ := json.Marshal(map[string]interface{}{"status": "completed", "result": "sent"})
	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/api/advice/"+adviceID+"/status", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	updated := decodeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", updated["status"])

	resp, err = http.Get(srv.URL + "/api/advice/pending?user=alice@x.com")
	require.NoError(t, err)
	pending = decodeBody(t, resp)
	assert.Equal(t, float64(0), pending["count"])
}

func TestTeamContextEndpoints(t *testing.T) {
	srv, s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "projects/p1", docstore.Fields{
		"projectName": "Apollo",
		"members":     []any{docstore.Fields{"userRef": docstore.NewRef("users/alice@x.com")}},
	}))
	require.NoError(t, s.Put(ctx, "users/alice@x.com/userContexts/c1", docstore.Fields{
		"note": "hi", "createdAt": apiNow,
	}))

	resp, err := http.Get(srv.URL + "/api/projects/p1/team/user-contexts?email=alice@x.com")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["individualContext"])
	assert.Len(t, body["teamContexts"], 1)

	// a caller without an individual context short-circuits to 404
	resp, err = http.Get(srv.URL + "/api/projects/p1/team/user-contexts?email=stranger@x.com")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	// members endpoint has no individual-context gate
	resp, err = http.Get(srv.URL + "/api/projects/p1/members")
	require.NoError(t, err)
	members := decodeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), members["count"])
}
