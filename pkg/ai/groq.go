package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-secretary/pkg/config"
)

const extractionSystemPrompt = `You are an expert at analyzing meeting transcripts and extracting action items.
Extract all action items, tasks, and to-dos mentioned in the meeting.
For each item, identify:
- The task description
- The responsible person (if mentioned)
- The due date or deadline (if mentioned)
- Priority level (low, medium, high, critical)
- Your confidence in the extraction (0.0 to 1.0)

Return only valid JSON in this exact format:
{"tasks": [{"description": "...", "owner": "...", "deadline": "YYYY-MM-DD" or null, "priority": "low|medium|high|critical", "confidence": 0.92}]}

If no action items are found, return: {"tasks": []}
Be thorough but accurate. Only extract clear action items.`

// GroqClient extracts action items through Groq's OpenAI-compatible API
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGroqClient creates a Groq client; it returns ErrNotConfigured without an API key
func NewGroqClient(cfg *config.GroqConfig) (*GroqClient, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("groq: %w", ErrNotConfigured)
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.groq.com"
	}
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = "llama-3.1-70b-versatile"
	}

	return &GroqClient{
		apiKey:  cfg.APIKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string            `json:"model"`
	Messages       []ChatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// ChatMessage is one chat turn
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractedTask is one action item as returned by the model
type ExtractedTask struct {
	Description string   `json:"description"`
	Owner       *string  `json:"owner"`
	Deadline    *string  `json:"deadline"`
	Priority    string   `json:"priority"`
	Confidence  *float64 `json:"confidence"`
}

type extraction struct {
	Tasks []ExtractedTask `json:"tasks"`
}

// ExtractTasks asks the model for the action items in transcript
func (g *GroqClient) ExtractTasks(ctx context.Context, transcript string) ([]ExtractedTask, error) {
	reqBody := ChatRequest{
		Model: g.model,
		Messages: []ChatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: "Analyze the following meeting transcript and extract all action items:\n\n" + transcript},
		},
		Temperature:    0.3,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/openai/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("groq returned status %d: %s", resp.StatusCode, string(body))
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, err
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("empty response from groq")
	}
	return ParseExtraction(cr.Choices[0].Message.Content)
}

// ParseExtraction decodes a {"tasks": [...]} document, tolerating markdown fences
func ParseExtraction(content string) ([]ExtractedTask, error) {
	var out extraction
	if err := json.Unmarshal([]byte(extractJSON(content)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse extraction: %w", err)
	}
	return out.Tasks, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}
	return strings.TrimSpace(content)
}

var simplePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:need to|will|should|must|have to)\s+([^.!?]+[.!?])`),
	regexp.MustCompile(`(?i)action item[:\s]+([^.!?]+[.!?])`),
	regexp.MustCompile(`(?i)todo[:\s]+([^.!?]+[.!?])`),
	regexp.MustCompile(`(?i)task[:\s]+([^.!?]+[.!?])`),
}

const simpleLimit = 10

// ExtractSimple finds action phrases with keyword patterns; it never leaves the process
func ExtractSimple(transcript string) []ExtractedTask {
	confidence := 0.5
	var tasks []ExtractedTask
	for _, re := range simplePatterns {
		for _, m := range re.FindAllStringSubmatch(transcript, -1) {
			desc := strings.TrimSpace(m[1])
			if len(desc) <= 10 {
				continue
			}
			c := confidence
			tasks = append(tasks, ExtractedTask{Description: desc, Priority: "medium", Confidence: &c})
			if len(tasks) == simpleLimit {
				return tasks
			}
		}
	}
	return tasks
}
