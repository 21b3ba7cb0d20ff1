package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"economic/config"
	"economic/logging"
)

// ErrAIDisabled is returned when no completion endpoint is configured.
var ErrAIDisabled = errors.New("ai assistant is not enabled")

// ChatMessage is one message in an OpenAI compatible conversation.
type ChatMessage struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// ContextCategory is the category of a context record.
type ContextCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ContextItem is one income or expense record handed to the assistant.
type ContextItem struct {
	ID          string          `json:"id"`
	Amount      string          `json:"amount"`
	Category    ContextCategory `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// ContextData is the optional financial context of a contextual completion.
type ContextData struct {
	Expenses []ContextItem `json:"expenses,omitempty"`
	Income   []ContextItem `json:"income,omitempty"`
}

// Empty reports whether there is nothing to attach.
func (d ContextData) Empty() bool {
	return len(d.Expenses) == 0 && len(d.Income) == 0
}

// AIService calls a non-streaming chat/completions endpoint.
type AIService struct {
	cfg        *config.AIConfig
	httpClient *http.Client
}

// NewAIService creates the completion service. A nil httpClient uses one
// bounded by cfg.Timeout.
func NewAIService(cfg *config.AIConfig, httpClient *http.Client) *AIService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &AIService{cfg: cfg, httpClient: httpClient}
}

// Model is the configured model name.
func (s *AIService) Model() string {
	return s.cfg.Model
}

// BuildMessages assembles the conversation for one user question.
// With context data a second system message carries the records as JSON.
func (s *AIService) BuildMessages(message string, data *ContextData) ([]ChatMessage, error) {
	msgs := []ChatMessage{{Role: "system", Content: s.cfg.SystemPrompt}}
	if data != nil && !data.Empty() {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode context data: %w", err)
		}
		msgs = append(msgs, ChatMessage{
			Role:    "system",
			Content: "Context info (the user's financial records, amounts in the user's currency): " + string(b),
		})
	}
	msgs = append(msgs, ChatMessage{Role: "user", Content: message})
	return msgs, nil
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends messages and returns the assistant reply.
func (s *AIService) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if !s.cfg.Enabled || s.cfg.BaseURL == "" {
		return "", ErrAIDisabled
	}

	payload, err := json.Marshal(completionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ai service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logging.Component("ai").WithField("status", resp.StatusCode).Warn("completion failed")
		return "", fmt.Errorf("ai service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode ai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("ai service returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
