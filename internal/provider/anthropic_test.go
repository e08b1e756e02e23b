package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"TenangChat/internal/session"
)

var anthropicTestOpts = Options{
	Model:       "claude-3-5-sonnet-20241022",
	MaxTokens:   256,
	Temperature: 0.3,
}

func TestAnthropicComplete(t *testing.T) {
	var gotReq AnthropicRequest
	var gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{
			"id": "msg-1",
			"content": [{"type": "text", "text": " Saya di sini untuk mendengarkan. "}],
			"usage": {"input_tokens": 100, "output_tokens": 12}
		}`))
	}))
	defer srv.Close()

	c := NewAnthropic("ak-test", srv.URL, anthropicTestOpts, otel.Tracer("test"), otel.Meter("test"))
	resp, err := c.Complete(context.Background(), "kamu adalah pendengar", testTurns())
	require.NoError(t, err)
	require.Equal(t, "Saya di sini untuk mendengarkan.", resp.Text)
	require.Equal(t, "anthropic", resp.Provider)
	require.Equal(t, "claude-3-5-sonnet-20241022", resp.Model)

	require.Equal(t, "ak-test", gotKey)
	require.Equal(t, "2023-06-01", gotVersion)
	require.Equal(t, "kamu adalah pendengar", gotReq.System)
	require.Len(t, gotReq.Messages, 3)
	require.Equal(t, session.RoleUser, gotReq.Messages[0].Role)
}

func TestAnthropicCompleteFiltersOtherRoles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req AnthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		w.Write([]byte(`{"content": [{"type": "text", "text": "ok"}]}`))
	}))
	defer srv.Close()

	turns := []session.Turn{
		{Role: "system", Text: "jangan dikirim"},
		{Role: session.RoleUser, Text: "halo"},
	}

	c := NewAnthropic("ak-test", srv.URL, anthropicTestOpts, otel.Tracer("test"), otel.Meter("test"))
	_, err := c.Complete(context.Background(), "sistem", turns)
	require.NoError(t, err)
}

func TestAnthropicCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewAnthropic("ak-test", srv.URL, anthropicTestOpts, otel.Tracer("test"), otel.Meter("test"))
	_, err := c.Complete(context.Background(), "sistem", testTurns())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestAnthropicCompleteNoTextContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": [{"type": "tool_use"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropic("ak-test", srv.URL, anthropicTestOpts, otel.Tracer("test"), otel.Meter("test"))
	_, err := c.Complete(context.Background(), "sistem", testTurns())
	require.ErrorIs(t, err, ErrUnavailable)
}
