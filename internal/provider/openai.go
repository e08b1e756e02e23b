package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TenangChat/internal/session"
	"TenangChat/internal/telemetry"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIRequest represents the request body for the chat completions API
type OpenAIRequest struct {
	Model            string              `json:"model"`
	Messages         []map[string]string `json:"messages"`
	MaxTokens        int                 `json:"max_tokens,omitempty"`
	Temperature      float64             `json:"temperature,omitempty"`
	PresencePenalty  float64             `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64             `json:"frequency_penalty,omitempty"`
}

// OpenAIResponse represents the response from the chat completions API
type OpenAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage map[string]interface{} `json:"usage"`
}

// OpenAI is the primary chat adapter.
type OpenAI struct {
	apiKey     string
	baseURL    string
	opts       Options
	httpClient *http.Client
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewOpenAI creates the primary adapter. baseURL is overridable for tests.
func NewOpenAI(apiKey, baseURL string, opts Options, tracer trace.Tracer, meter metric.Meter) *OpenAI {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAI{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		opts:       opts,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tracer:     tracer,
		meter:      meter,
	}
}

// Complete sends the conversation to the chat completions endpoint.
func (c *OpenAI) Complete(ctx context.Context, system string, turns []session.Turn) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "openai_api_call")
	defer span.End()

	start := time.Now()

	reqMessages := make([]map[string]string, 0, len(turns)+1)
	reqMessages = append(reqMessages, map[string]string{"role": "system", "content": system})
	for _, t := range turns {
		reqMessages = append(reqMessages, map[string]string{"role": t.Role, "content": t.Text})
	}

	reqBody := OpenAIRequest{
		Model:            c.opts.Model,
		Messages:         reqMessages,
		MaxTokens:        c.opts.MaxTokens,
		Temperature:      c.opts.Temperature,
		PresencePenalty:  c.opts.PresencePenalty,
		FrequencyPenalty: c.opts.FrequencyPenalty,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: openai: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: openai: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("%w: openai: %s - %s", ErrUnavailable, resp.Status, string(body))
	}

	var apiResp OpenAIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return Response{}, fmt.Errorf("%w: openai: unmarshal response: %v", ErrUnavailable, err)
	}

	duration := time.Since(start)
	telemetry.RecordRequestDuration(ctx, c.meter, duration)
	telemetry.RecordUsage(ctx, c.meter, apiResp.Usage)

	if len(apiResp.Choices) == 0 || strings.TrimSpace(apiResp.Choices[0].Message.Content) == "" {
		return Response{}, fmt.Errorf("%w: empty response from OpenAI", ErrUnavailable)
	}

	return Response{
		Text:     strings.TrimSpace(apiResp.Choices[0].Message.Content),
		Provider: "openai",
		Model:    c.opts.Model,
		Latency:  duration,
	}, nil
}
