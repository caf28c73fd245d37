package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestEmbedReturnsVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[0.25,-0.5,1],"index":0}]}`))
	}))
	t.Cleanup(srv.Close)

	svc := NewEmbeddingService(&EmbeddingConfig{
		APIKey:  "k",
		BaseURL: srv.URL,
		Model:   "text-embedding-3-large",
		Sleep:   func(ctx context.Context, d time.Duration) {},
	})

	vec, err := svc.Embed(context.Background(), "sunset over the bay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float32{0.25, -0.5, 1}
	if len(vec) != len(want) {
		t.Fatalf("vector = %v", vec)
	}
	for i := range want {
		if vec[i] != want[i] {
			t.Errorf("vec[%d] = %v, want %v", i, vec[i], want[i])
		}
	}
}

func TestEmbedRetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[0.1],"index":0}]}`))
	}))
	t.Cleanup(srv.Close)

	svc := NewEmbeddingService(&EmbeddingConfig{
		APIKey:     "k",
		BaseURL:    srv.URL,
		Model:      "text-embedding-3-large",
		MaxRetries: 5,
		Sleep:      func(ctx context.Context, d time.Duration) {},
	})

	vec, err := svc.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 1 {
		t.Errorf("vector = %v", vec)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestEmbedExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	svc := NewEmbeddingService(&EmbeddingConfig{
		APIKey:     "k",
		BaseURL:    srv.URL,
		Model:      "text-embedding-3-large",
		MaxRetries: 2,
		Sleep:      func(ctx context.Context, d time.Duration) {},
	})

	_, err := svc.Embed(context.Background(), "text")
	var te *TransientError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransientError, got %v", err)
	}
	// 1 initial call plus 2 retries
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}
