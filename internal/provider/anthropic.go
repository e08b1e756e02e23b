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

// AnthropicRequest represents the request body for the messages API
type AnthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []AnthropicMessage `json:"messages"`
}

// AnthropicMessage represents a message in the conversation
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicContent represents a content block in the response
type AnthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// AnthropicResponse represents the response from the messages API
type AnthropicResponse struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Role       string                 `json:"role"`
	Content    []AnthropicContent     `json:"content"`
	Model      string                 `json:"model"`
	StopReason string                 `json:"stop_reason"`
	Usage      map[string]interface{} `json:"usage"`
}

// Anthropic is the fallback chat adapter.
type Anthropic struct {
	apiKey     string
	baseURL    string
	opts       Options
	httpClient *http.Client
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewAnthropic creates the fallback adapter. baseURL is overridable for tests.
func NewAnthropic(apiKey, baseURL string, opts Options, tracer trace.Tracer, meter metric.Meter) *Anthropic {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	return &Anthropic{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		opts:       opts,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tracer:     tracer,
		meter:      meter,
	}
}

// Complete sends the conversation to the messages endpoint. The system
// prompt rides in the dedicated system field rather than as a message.
func (c *Anthropic) Complete(ctx context.Context, system string, turns []session.Turn) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "anthropic_api_call")
	defer span.End()

	start := time.Now()

	reqMessages := make([]AnthropicMessage, 0, len(turns))
	for _, t := range turns {
		if t.Role != session.RoleUser && t.Role != session.RoleAssistant {
			continue
		}
		reqMessages = append(reqMessages, AnthropicMessage{Role: t.Role, Content: t.Text})
	}

	reqBody := AnthropicRequest{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
		System:      system,
		Messages:    reqMessages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: anthropic: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: anthropic: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("%w: anthropic: %s - %s", ErrUnavailable, resp.Status, string(body))
	}

	var apiResp AnthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return Response{}, fmt.Errorf("%w: anthropic: unmarshal response: %v", ErrUnavailable, err)
	}

	duration := time.Since(start)
	telemetry.RecordRequestDuration(ctx, c.meter, duration)
	telemetry.RecordUsage(ctx, c.meter, apiResp.Usage)

	for _, content := range apiResp.Content {
		if content.Type == "text" && strings.TrimSpace(content.Text) != "" {
			return Response{
				Text:     strings.TrimSpace(content.Text),
				Provider: "anthropic",
				Model:    c.opts.Model,
				Latency:  duration,
			}, nil
		}
	}

	return Response{}, fmt.Errorf("%w: empty response from Anthropic", ErrUnavailable)
}
