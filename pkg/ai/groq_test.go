package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-secretary/pkg/config"
)

func TestExtractTasks_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Fatalf("missing bearer auth")
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if req.ResponseFormat["type"] != "json_object" || !strings.Contains(req.Messages[1].Content, "We need X") {
			t.Fatalf("unexpected request: %+v", req)
		}
		content := "```json\n{\"tasks\":[{\"description\":\"Do X\",\"owner\":\"Sam\",\"deadline\":\"2025-01-31\",\"priority\":\"high\",\"confidence\":0.9}]}\n```"
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"content": content}}},
		})
	}))
	defer ts.Close()

	client, err := NewGroqClient(&config.GroqConfig{APIKey: "test-key", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	tasks, err := client.ExtractTasks(context.Background(), "We need X by Friday.")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "Do X" || tasks[0].Priority != "high" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if tasks[0].Owner == nil || *tasks[0].Owner != "Sam" || tasks[0].Confidence == nil {
		t.Fatalf("optional fields lost: %+v", tasks[0])
	}
}

func TestExtractTasks_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client, _ := NewGroqClient(&config.GroqConfig{APIKey: "k", BaseURL: ts.URL})
	if _, err := client.ExtractTasks(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNewClients_RequireKeys(t *testing.T) {
	if _, err := NewGroqClient(&config.GroqConfig{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
	if _, err := NewAssemblyAIClient(&config.AssemblyAIConfig{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestParseExtraction_Empty(t *testing.T) {
	tasks, err := ParseExtraction(`{"tasks": []}`)
	if err != nil || len(tasks) != 0 {
		t.Fatalf("unexpected: %v %v", tasks, err)
	}
	if _, err := ParseExtraction("not json"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExtractSimple(t *testing.T) {
	tasks := ExtractSimple("We need to send the budget to finance. Ok. Action item: book the venue for March.")
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %+v", tasks)
	}
	if tasks[0].Description != "send the budget to finance." || tasks[0].Priority != "medium" {
		t.Fatalf("unexpected first task: %+v", tasks[0])
	}
}

func TestVerifyHMAC(t *testing.T) {
	body := []byte(`{"status":"processing"}`)
	sig := SignHMAC("s3cret", body)
	if !VerifyHMAC("s3cret", body, sig) {
		t.Fatal("valid signature rejected")
	}
	if VerifyHMAC("s3cret", []byte(`{}`), sig) || VerifyHMAC("", body, sig) || VerifyHMAC("s3cret", body, "") {
		t.Fatal("invalid signature accepted")
	}
}
