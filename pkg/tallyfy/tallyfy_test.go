package tallyfy

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/cache"
	"github.com/tallyfy/migrator/pkg/client"
	"github.com/tallyfy/migrator/pkg/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	c, err := New(Config{
		BaseURL:  server.URL,
		APIToken: "test-token",
		OrgID:    "org_1",
	}, logger)
	require.NoError(t, err)

	return server, c
}

func TestNewValidatesConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	_, err := New(Config{OrgID: "org_1"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")

	_, err = New(Config{APIToken: "tok"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization")
}

func TestMeSendsAuthHeaders(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "APIClient", r.Header.Get("X-Tallyfy-Client"))

		_, _ = w.Write([]byte(`{"data":{"id":"u1","email":"admin@example.com","full_name":"Admin"}}`))
	})

	account, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", account.Email)
}

func TestInviteMemberSendsIdempotencyKey(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/org_1/users/invite", r.URL.Path)
		assert.Equal(t, "run1:member:alice@example.com", r.Header.Get(IdempotencyHeader))

		var body map[string]any

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@example.com", body["email"])
		assert.Equal(t, "standard", body["role"], "role defaults to standard")

		_, _ = w.Write([]byte(`{"data":{"id":"m1","email":"alice@example.com"}}`))
	})

	member, err := c.InviteMember(context.Background(), InviteMemberOptions{
		Email:          "alice@example.com",
		FirstName:      "Alice",
		IdempotencyKey: "run1:member:alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", member.ID)
}

func TestInviteMemberRequiresEmail(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.InviteMember(context.Background(), InviteMemberOptions{})
	require.Error(t, err)
}

func TestMembersFollowsPagination(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{
				"data":[{"id":"m1","email":"a@example.com"}],
				"meta":{"pagination":{"current_page":1,"total_pages":2}}}`))
		case "2":
			_, _ = w.Write([]byte(`{
				"data":[{"id":"m2","email":"b@example.com"}],
				"meta":{"pagination":{"current_page":2,"total_pages":2}}}`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	members, err := c.Members(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "m1", members[0].ID)
	assert.Equal(t, "m2", members[1].ID)
}

func TestAddStepBuildsPayload(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/org_1/checklists/cl_1/steps", r.URL.Path)

		var body map[string]any

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "approve_request", body["alias"])
		assert.Equal(t, "approve", body["task_type"])
		assert.Equal(t, float64(2), body["position"])

		deadline, ok := body["deadline"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(3), deadline["value"])
		assert.Equal(t, "days", deadline["unit"])

		_, _ = w.Write([]byte(`{"data":{"id":"s1","alias":"approve_request"}}`))
	})

	step, err := c.AddStep(context.Background(), AddStepOptions{
		ChecklistID: "cl_1",
		Alias:       "approve_request",
		Title:       "Approve request",
		Type:        model.StepApprove,
		Position:    2,
		Deadline:    &model.Deadline{Value: 3, Unit: "days", Anchor: model.DeadlineFromLaunch},
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", step.ID)
}

func TestAddCaptureTargetsKickoffOrStep(t *testing.T) {
	var paths []string

	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"id":"cap1"}}`))
	})

	_, err := c.AddCapture(context.Background(), AddCaptureOptions{
		ChecklistID: "cl_1", Label: "Customer name",
	})
	require.NoError(t, err)

	_, err = c.AddCapture(context.Background(), AddCaptureOptions{
		ChecklistID: "cl_1", StepID: "s1", Label: "Approval notes",
	})
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, "/organizations/org_1/checklists/cl_1/prerun", paths[0])
	assert.Equal(t, "/organizations/org_1/checklists/cl_1/steps/s1/captures", paths[1])
}

func TestCreateRuleValidatesOptions(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"r1"}}`))
	})

	_, err := c.CreateRule(context.Background(), CreateRuleOptions{ChecklistID: "cl_1"})
	require.Error(t, err, "rule without capture and targets must fail locally")

	rule, err := c.CreateRule(context.Background(), CreateRuleOptions{
		ChecklistID: "cl_1",
		CaptureRef:  "claim_valid",
		Operator:    model.OperatorEquals,
		Value:       "Yes",
		Action:      model.ActionShow,
		TargetSteps: []string{"pay_claim"},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", rule.ID)
}

func TestFindChecklistByTitle(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Claims", r.URL.Query().Get("search"))
		_, _ = w.Write([]byte(`{"data":[
			{"id":"cl_1","title":"Claims v2"},
			{"id":"cl_2","title":"Claims"}]}`))
	})

	found, err := c.FindChecklistByTitle(context.Background(), "Claims")
	require.NoError(t, err)
	assert.Equal(t, "cl_2", found.ID)

	_, err = c.FindChecklistByTitle(context.Background(), "Missing")
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
}

func TestFindChecklistByTitleUsesCache(t *testing.T) {
	var searches int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searches++

		_, _ = w.Write([]byte(`{"data":[{"id":"cl_9","title":"Claims"}]}`))
	}))
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	c, err := New(Config{
		BaseURL:  server.URL,
		APIToken: "test-token",
		OrgID:    "org_1",
		Cache:    cache.NewMemory(16, time.Minute),
	}, logger)
	require.NoError(t, err)

	first, err := c.FindChecklistByTitle(context.Background(), "Claims")
	require.NoError(t, err)
	assert.Equal(t, "cl_9", first.ID)

	second, err := c.FindChecklistByTitle(context.Background(), "Claims")
	require.NoError(t, err)
	assert.Equal(t, "cl_9", second.ID)

	assert.Equal(t, 1, searches, "second lookup must come from the cache")
}

func TestLaunchProcessSendsFieldValues(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cl_1", body["checklist_id"])

		prerun, ok := body["prerun"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ACME", prerun["customer"])

		_, _ = w.Write([]byte(`{"data":{"id":"run_1","status":"active"}}`))
	})

	run, err := c.LaunchProcess(context.Background(), LaunchProcessOptions{
		ChecklistID: "cl_1",
		Name:        "ACME onboarding",
		FieldValues: map[string]string{"customer": "ACME"},
	})
	require.NoError(t, err)
	assert.Equal(t, "run_1", run.ID)
}

func TestCompleteTask(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/organizations/org_1/runs/run_1/tasks/task_1/complete", r.URL.Path)

		w.WriteHeader(http.StatusOK)
	})

	err := c.CompleteTask(context.Background(), CompleteTaskOptions{
		RunID:  "run_1",
		TaskID: "task_1",
	})
	require.NoError(t, err)
}
