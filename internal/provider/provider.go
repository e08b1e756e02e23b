package provider

import (
	"context"
	"errors"
	"time"

	"TenangChat/internal/session"
)

// ErrUnavailable marks a provider call that failed in a recoverable way:
// network error, timeout, non-2xx status, or an empty/malformed body. The
// orchestrator falls back to the secondary provider when it sees this.
var ErrUnavailable = errors.New("provider unavailable")

// Response is a normalized completion from either provider.
type Response struct {
	Text     string
	Provider string
	Model    string
	Latency  time.Duration
}

// Options are the static generation parameters for one provider. They are
// fixed at construction and never tuned per request.
type Options struct {
	Model            string
	MaxTokens        int
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// Completer is the single capability both adapters implement. The
// orchestrator depends on nothing beyond it.
type Completer interface {
	Complete(ctx context.Context, system string, turns []session.Turn) (Response, error)
}
