package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-secretary/internal/domain/entities"
)

func jiraIntegration(t *testing.T, baseURL string) *entities.Integration {
	t.Helper()
	raw, _ := json.Marshal(entities.JiraConfig{BaseURL: baseURL, Email: "bot@example.com", APIToken: "tok"})
	in, err := entities.NewIntegration(uuid.New(), entities.ServiceJira, raw, true)
	if err != nil {
		t.Fatalf("integration: %v", err)
	}
	return in
}

func trelloIntegration(t *testing.T, cfg entities.TrelloConfig) *entities.Integration {
	t.Helper()
	raw, _ := json.Marshal(cfg)
	in, err := entities.NewIntegration(uuid.New(), entities.ServiceTrello, raw, true)
	if err != nil {
		t.Fatalf("integration: %v", err)
	}
	return in
}

func sampleItem(target string) Item {
	owner := "Dana"
	deadline := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	return Item{
		Target:      target,
		Summary:     strings.Repeat("é", 300),
		Description: "Prepare the release notes",
		OwnerName:   &owner,
		Deadline:    &deadline,
		Priority:    entities.TaskPriorityCritical,
	}
}

func TestItem_Body(t *testing.T) {
	body := sampleItem("P").Body()
	for _, want := range []string{"Prepare the release notes", "Owner: Dana", "Deadline: 2025-03-14", "Priority: critical"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q: %s", want, body)
		}
	}

	bare := Item{Description: "Only text"}.Body()
	if bare != "Only text" {
		t.Fatalf("unexpected bare body %q", bare)
	}
}

func TestJiraClient_CreateItem(t *testing.T) {
	var got jiraIssueRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/api/3/issue" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "bot@example.com" || pass != "tok" {
			t.Fatalf("missing basic auth")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "10001", "key": "OPS-7"})
	}))
	defer ts.Close()

	tr, err := NewFactory(ts.Client(), 0).For(jiraIntegration(t, ts.URL+"/"))
	if err != nil {
		t.Fatalf("factory: %v", err)
	}

	key, err := tr.CreateItem(context.Background(), sampleItem("OPS"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if key != "OPS-7" {
		t.Fatalf("unexpected key %s", key)
	}

	if got.Fields.Project.Key != "OPS" || got.Fields.IssueType.Name != "Task" {
		t.Fatalf("unexpected fields: %+v", got.Fields)
	}
	if n := len([]rune(got.Fields.Summary)); n != 255 {
		t.Fatalf("summary should be truncated to 255 runes, got %d", n)
	}
	if got.Fields.Priority == nil || got.Fields.Priority.Name != "Highest" {
		t.Fatalf("unexpected priority: %+v", got.Fields.Priority)
	}
	if got.Fields.DueDate != "2025-03-14" {
		t.Fatalf("unexpected duedate %s", got.Fields.DueDate)
	}
	if got.Fields.Description.Type != "doc" || len(got.Fields.Description.Content) != 2 {
		t.Fatalf("unexpected ADF body: %+v", got.Fields.Description)
	}
}

func TestJiraClient_UpstreamErrorVerbatim(t *testing.T) {
	const upstream = `{"errorMessages":[],"errors":{"project":"valid project is required"}}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(upstream))
	}))
	defer ts.Close()

	tr, _ := NewFactory(ts.Client(), 0).For(jiraIntegration(t, ts.URL))
	_, err := tr.CreateItem(context.Background(), sampleItem("NOPE"))

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.StatusCode != http.StatusBadRequest || ue.Body != upstream {
		t.Fatalf("upstream detail not preserved: %+v", ue)
	}
}

func TestTrelloClient_CreateItem(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/cards" || q.Get("key") != "k" || q.Get("token") != "t" {
			t.Fatalf("unexpected request %s %s", r.URL.Path, r.URL.RawQuery)
		}
		if q.Get("idList") != "L1" || q.Get("due") != "2025-03-14T00:00:00Z" {
			t.Fatalf("unexpected params: %s", r.URL.RawQuery)
		}
		if !strings.Contains(q.Get("desc"), "Owner: Dana") {
			t.Fatalf("desc missing owner: %s", q.Get("desc"))
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "card-42"})
	}))
	defer ts.Close()

	f := NewFactory(ts.Client(), 0).WithTrelloBaseURL(ts.URL)
	tr, _ := f.For(trelloIntegration(t, entities.TrelloConfig{APIKey: "k", APIToken: "t"}))

	id, err := tr.CreateItem(context.Background(), sampleItem("L1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "card-42" {
		t.Fatalf("unexpected id %s", id)
	}
}

func TestTrelloClient_FallsBackToFirstBoardList(t *testing.T) {
	var listID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/boards/B1/lists":
			json.NewEncoder(w).Encode([]map[string]string{{"id": "first"}, {"id": "second"}})
		case r.Method == http.MethodPost && r.URL.Path == "/cards":
			listID = r.URL.Query().Get("idList")
			json.NewEncoder(w).Encode(map[string]string{"id": "card-1"})
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	f := NewFactory(ts.Client(), 0).WithTrelloBaseURL(ts.URL)
	tr, _ := f.For(trelloIntegration(t, entities.TrelloConfig{APIKey: "k", APIToken: "t", BoardID: "B1"}))

	if _, err := tr.CreateItem(context.Background(), sampleItem("")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if listID != "first" {
		t.Fatalf("expected first list, got %q", listID)
	}
}

func TestFactory_RateLimiterHonoursContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "x", "key": "P-1"})
	}))
	defer ts.Close()

	tr, _ := NewFactory(ts.Client(), 0.001).For(jiraIntegration(t, ts.URL))
	if _, err := tr.CreateItem(context.Background(), sampleItem("P")); err != nil {
		t.Fatalf("first call should pass the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := tr.CreateItem(ctx, sampleItem("P")); err == nil {
		t.Fatal("second call should be throttled past the deadline")
	}
}
