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

var testOpts = Options{
	Model:            "gpt-4.1",
	MaxTokens:        256,
	Temperature:      0.3,
	PresencePenalty:  0.1,
	FrequencyPenalty: 0.1,
}

func testTurns() []session.Turn {
	return []session.Turn{
		{Role: session.RoleUser, Text: "halo kak"},
		{Role: session.RoleAssistant, Text: "Halo! Ada yang ingin diceritakan?"},
		{Role: session.RoleUser, Text: "saya sedang banyak pikiran"},
	}
}

func TestOpenAIComplete(t *testing.T) {
	var gotReq OpenAIRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": " Tentu, ceritakan saja. "}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 18, "total_tokens": 138}
		}`))
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", srv.URL, testOpts, otel.Tracer("test"), otel.Meter("test"))
	resp, err := c.Complete(context.Background(), "kamu adalah pendengar", testTurns())
	require.NoError(t, err)
	require.Equal(t, "Tentu, ceritakan saja.", resp.Text)
	require.Equal(t, "openai", resp.Provider)
	require.Equal(t, "gpt-4.1", resp.Model)

	require.Equal(t, "Bearer sk-test", gotAuth)
	require.Equal(t, "gpt-4.1", gotReq.Model)
	require.Equal(t, 256, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 4)
	require.Equal(t, "system", gotReq.Messages[0]["role"])
	require.Equal(t, "kamu adalah pendengar", gotReq.Messages[0]["content"])
	require.Equal(t, "saya sedang banyak pikiran", gotReq.Messages[3]["content"])
}

func TestOpenAICompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", srv.URL, testOpts, otel.Tracer("test"), otel.Meter("test"))
	_, err := c.Complete(context.Background(), "sistem", testTurns())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAICompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "chatcmpl-2", "choices": []}`))
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", srv.URL, testOpts, otel.Tracer("test"), otel.Meter("test"))
	_, err := c.Complete(context.Background(), "sistem", testTurns())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAICompleteConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewOpenAI("sk-test", srv.URL, testOpts, otel.Tracer("test"), otel.Meter("test"))
	_, err := c.Complete(context.Background(), "sistem", testTurns())
	require.ErrorIs(t, err, ErrUnavailable)
}
