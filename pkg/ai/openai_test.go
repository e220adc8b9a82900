package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropofflens/dropofflens/pkg/config"
)

func newTestClient(baseURL string) *OpenAIClient {
	return NewOpenAIClient(&config.OpenAIConfig{
		APIKey:           "test-key",
		BaseURL:          baseURL,
		Model:            "gpt-4o",
		Temperature:      0.3,
		BreakerThreshold: 3,
		BreakerCooldown:  time.Minute,
	})
}

func TestCompleteJSON_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.ResponseFormat == nil || payload.ResponseFormat.Type != "json_object" {
			t.Fatalf("expected json_object response format, got %+v", payload.ResponseFormat)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"themes":[]}`}},
			},
		})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	content, err := client.CompleteJSON(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if content != `{"themes":[]}` {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestCompleteJSON_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	_, err := client.CompleteJSON(context.Background(), []Message{{Role: "user", Content: "hi"}})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.Retryable() {
		t.Fatalf("429 should be retryable")
	}
}

func TestCompleteJSON_BreakerOpensAfterThreshold(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	for i := 0; i < 3; i++ {
		if _, err := client.CompleteJSON(context.Background(), nil); err == nil {
			t.Fatalf("expected error on attempt %d", i)
		}
	}

	_, err := client.CompleteJSON(context.Background(), nil)
	if err != ErrBreakerOpen {
		t.Fatalf("expected breaker open, got %v", err)
	}
}
