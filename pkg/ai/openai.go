package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dropofflens/dropofflens/pkg/config"
)

// OpenAIClient is a minimal client for OpenAI-compatible chat completion APIs
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	client      *http.Client

	// Circuit breaker state. After threshold consecutive failures the
	// client fails fast until cooldown elapses.
	mu        sync.Mutex
	failures  int
	threshold int
	cooldown  time.Duration
	openedAt  time.Time
}

// NewOpenAIClient creates an OpenAI client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("OPENAI_API_URL")
		if base == "" {
			base = "https://api.openai.com"
		}
	}

	model := "gpt-4o"
	temperature := 0.3
	timeout := 60 * time.Second
	threshold := 5
	cooldown := time.Minute
	if cfg != nil {
		if cfg.Model != "" {
			model = cfg.Model
		}
		if cfg.Temperature > 0 {
			temperature = cfg.Temperature
		}
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout
		}
		if cfg.BreakerThreshold > 0 {
			threshold = cfg.BreakerThreshold
		}
		if cfg.BreakerCooldown > 0 {
			cooldown = cfg.BreakerCooldown
		}
	}

	return &OpenAIClient{
		apiKey:      apiKey,
		baseURL:     base,
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: timeout},
		threshold:   threshold,
		cooldown:    cooldown,
	}
}

// Message is a single chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []Message       `json:"messages,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat selects structured output mode
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// APIError is returned for non-2xx provider responses so callers can decide
// whether the failure is retryable.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai returned status %d", e.StatusCode)
}

// Retryable reports whether the failure is transient (rate limit or 5xx).
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ErrBreakerOpen is returned when the circuit breaker is tripped.
var ErrBreakerOpen = fmt.Errorf("openai circuit breaker open")

// CompleteJSON sends the messages to the chat completions endpoint in
// JSON-object response mode and returns the assistant content.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, messages []Message) (string, error) {
	if err := c.checkBreaker(); err != nil {
		return "", err
	}

	reqBody := ChatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    c.temperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure()
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.recordFailure()
		return "", &APIError{StatusCode: resp.StatusCode}
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		c.recordFailure()
		return "", err
	}
	if len(cr.Choices) == 0 {
		c.recordFailure()
		return "", fmt.Errorf("empty response from openai")
	}

	c.recordSuccess()
	return cr.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) checkBreaker() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failures < c.threshold {
		return nil
	}
	if time.Since(c.openedAt) >= c.cooldown {
		// Half-open: allow one attempt through.
		c.failures = c.threshold - 1
		return nil
	}
	return ErrBreakerOpen
}

func (c *OpenAIClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures++
	if c.failures == c.threshold {
		c.openedAt = time.Now()
	}
}

func (c *OpenAIClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = 0
}
