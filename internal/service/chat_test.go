package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestChatCompleteReturnsContent(t *testing.T) {
	var gotReq chatRequest
	srv := chatTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"[\"sunset\"]"}}]}`))
	})

	svc := NewChatService(&ChatConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Model:       "gpt-4.1-mini",
		Temperature: 0.3,
	})

	content, err := svc.Complete(context.Background(), "tag this image")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != `["sunset"]` {
		t.Errorf("content = %q", content)
	}
	if gotReq.Model != "gpt-4.1-mini" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.Temperature != 0.3 {
		t.Errorf("temperature = %v", gotReq.Temperature)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestChatCompleteTransientStatuses(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		srv := chatTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		svc := NewChatService(&ChatConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
		_, err := svc.Complete(context.Background(), "prompt")

		var te *TransientError
		if !errors.As(err, &te) {
			t.Fatalf("status %d: expected TransientError, got %v", status, err)
		}
		if te.StatusCode != status {
			t.Errorf("status = %d, want %d", te.StatusCode, status)
		}
	}
}

func TestChatCompleteServerErrorIsFinal(t *testing.T) {
	srv := chatTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad model"}}`))
	})

	svc := NewChatService(&ChatConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := svc.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsTransient(err) {
		t.Error("4xx other than 429 must not be transient")
	}
}

func TestChatCompleteEmptyChoices(t *testing.T) {
	srv := chatTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})

	svc := NewChatService(&ChatConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := svc.Complete(context.Background(), "prompt")

	var mre *MalformedResponseError
	if !errors.As(err, &mre) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}
