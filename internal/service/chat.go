package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ChatService is the chat-completion side of the enrichment service, used
// for tag generation and tag categorization.
type ChatService struct {
	client      *resty.Client
	endpoint    string
	model       string
	temperature float32
}

// ChatConfig holds configuration for the chat client.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// NewChatService creates a new chat-completion client.
func NewChatService(cfg *ChatConfig) *ChatService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(60 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &ChatService{
		client:      client,
		endpoint:    baseURL + "/chat/completions",
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Model returns the model name being used.
func (s *ChatService) Model() string {
	return s.model
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one prompt and returns the first message's content.
// Rate-limit and service-unavailable statuses come back as TransientError so
// callers can retry; other failures are final.
func (s *ChatService) Complete(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return "", fmt.Errorf("failed to call chat API: %w", err)
	}

	status := httpResp.StatusCode()
	if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
		return "", &TransientError{StatusCode: status, Body: string(httpResp.Body())}
	}
	if status < 200 || status >= 300 {
		if resp.Error != nil {
			return "", fmt.Errorf("chat API error: HTTP %d: %s", status, resp.Error.Message)
		}
		return "", fmt.Errorf("chat API error: HTTP %d: %s", status, string(httpResp.Body()))
	}
	if resp.Error != nil {
		return "", fmt.Errorf("chat API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Reason: "no choices in response", Content: string(httpResp.Body())}
	}

	return resp.Choices[0].Message.Content, nil
}
