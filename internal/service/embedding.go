package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// EmbeddingService generates fixed-length embedding vectors with the same
// retry policy as tag generation.
type EmbeddingService struct {
	client     *resty.Client
	endpoint   string
	model      string
	dimensions int
	maxRetries int
	retryBase  time.Duration
	sleep      SleepFunc
}

// EmbeddingConfig holds configuration for the embedding service.
type EmbeddingConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Dimensions    int
	MaxRetries    int
	RetryInterval time.Duration

	// Sleep overrides the backoff delay; nil uses a real timer.
	Sleep SleepFunc
}

// NewEmbeddingService creates a new embedding client.
func NewEmbeddingService(cfg *EmbeddingConfig) *EmbeddingService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(60 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	retryBase := cfg.RetryInterval
	if retryBase <= 0 {
		retryBase = 1500 * time.Millisecond
	}

	return &EmbeddingService{
		client:     client,
		endpoint:   baseURL + "/embeddings",
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		maxRetries: maxRetries,
		retryBase:  retryBase,
		sleep:      cfg.Sleep,
	}
}

// Model returns the model name being used.
func (s *EmbeddingService) Model() string {
	return s.model
}

// Dimensions returns the configured vector dimensionality.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed generates the embedding vector for a text. Transient faults retry
// with linearly increasing delay; every component is coerced to float32 on
// the way out.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := retryTransient(ctx, s.maxRetries, s.retryBase, s.sleep, func() error {
		var err error
		vector, err = s.embedOnce(ctx, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

func (s *EmbeddingService) embedOnce(ctx context.Context, text string) ([]float32, error) {
	req := embeddingRequest{
		Model: s.model,
		Input: text,
	}

	var resp embeddingResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call embedding API: %w", err)
	}

	status := httpResp.StatusCode()
	if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
		return nil, &TransientError{StatusCode: status, Body: string(httpResp.Body())}
	}
	if status < 200 || status >= 300 {
		if resp.Error != nil {
			return nil, fmt.Errorf("embedding API error: HTTP %d: %s", status, resp.Error.Message)
		}
		return nil, fmt.Errorf("embedding API error: status %d", status)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	raw := resp.Data[0].Embedding
	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}
	return vector, nil
}
