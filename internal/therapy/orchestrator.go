package therapy

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"TenangChat/internal/archive"
	"TenangChat/internal/cache"
	"TenangChat/internal/provider"
	"TenangChat/internal/safety"
	"TenangChat/internal/session"
)

// ErrAllProvidersUnavailable is returned when the primary call failed and
// the fallback is either absent or also failed. There is no further retry.
var ErrAllProvidersUnavailable = errors.New("all providers unavailable")

// Sources for a served response.
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
	SourceCache    = "cache"
)

// maxContextTurns caps the history window sent upstream. The store itself
// keeps the full history.
const maxContextTurns = 20

// Result is one completed text exchange.
type Result struct {
	Response  provider.Response
	Source    string
	Severity  safety.Tier
	SessionID string
}

// Validation is the dual-model comparison result. Only the response chosen
// as primary is written into session history.
type Validation struct {
	GPT       *provider.Response
	Claude    *provider.Response
	Primary   string
	Consensus bool
	Severity  safety.Tier
	SessionID string
}

// Orchestrator mediates between sessions and the chat providers: prompt
// assembly, primary-then-fallback calling, history bookkeeping, and crisis
// classification.
type Orchestrator struct {
	primary  provider.Completer
	fallback provider.Completer // nil disables fallback
	store    *session.Store
	archive  *archive.Archive // nil disables archiving
	logger   *slog.Logger
	cache    sync.Map
}

// New creates an orchestrator. fallback and arch may be nil.
func New(primary provider.Completer, fallback provider.Completer, store *session.Store, arch *archive.Archive, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		primary:  primary,
		fallback: fallback,
		store:    store,
		archive:  arch,
		logger:   logger,
	}
}

// Respond handles one text exchange:
// append the user turn, call the primary provider over the windowed history,
// fall back once on unavailability, append the assistant turn, classify the
// user text. When both providers fail the user turn stays in the session
// with no assistant turn and ErrAllProvidersUnavailable is returned.
func (o *Orchestrator) Respond(ctx context.Context, sessionID, userText string) (Result, error) {
	id := o.store.GetOrCreate(sessionID)
	o.store.AppendTurn(id, session.RoleUser, userText)

	window := o.contextWindow(id)
	severity := safety.Classify(userText)

	cacheKey := cache.Key(window)
	if val, ok := o.cache.Load(cacheKey); ok {
		cached := val.(cache.CachedResponse)
		o.logger.Info("cache hit", "session_id", id, "key", cacheKey[:16])
		o.store.AppendTurn(id, session.RoleAssistant, cached.Text)
		return Result{
			Response:  provider.Response{Text: withEscalation(cached.Text, severity), Provider: cached.Provider},
			Source:    SourceCache,
			Severity:  severity,
			SessionID: id,
		}, nil
	}

	resp, source, err := o.complete(ctx, id, window)
	if err != nil {
		return Result{SessionID: id, Severity: severity}, err
	}

	o.store.AppendTurn(id, session.RoleAssistant, resp.Text)
	o.cache.Store(cacheKey, cache.CachedResponse{Text: resp.Text, Provider: resp.Provider, Source: source})
	o.archiveExchange(id, userText, resp.Text, resp.Provider, severity)

	resp.Text = withEscalation(resp.Text, severity)
	return Result{Response: resp, Source: source, Severity: severity, SessionID: id}, nil
}

// RespondValidated calls both providers unconditionally and returns both
// replies. The primary's reply is written into history when it succeeded,
// otherwise the fallback's.
func (o *Orchestrator) RespondValidated(ctx context.Context, sessionID, userText string) (Validation, error) {
	id := o.store.GetOrCreate(sessionID)
	o.store.AppendTurn(id, session.RoleUser, userText)

	window := o.contextWindow(id)
	severity := safety.Classify(userText)

	v := Validation{Severity: severity, SessionID: id}

	if resp, err := o.primary.Complete(ctx, SystemPrompt, window); err != nil {
		o.logger.Warn("primary provider failed during validation", "session_id", id, "error", err)
	} else {
		v.GPT = &resp
	}

	if o.fallback != nil {
		if resp, err := o.fallback.Complete(ctx, SystemPrompt, window); err != nil {
			o.logger.Warn("fallback provider failed during validation", "session_id", id, "error", err)
		} else {
			v.Claude = &resp
		}
	}

	var chosen *provider.Response
	switch {
	case v.GPT != nil:
		chosen = v.GPT
		v.Primary = v.GPT.Provider
	case v.Claude != nil:
		chosen = v.Claude
		v.Primary = v.Claude.Provider
	default:
		return v, ErrAllProvidersUnavailable
	}

	o.store.AppendTurn(id, session.RoleAssistant, chosen.Text)
	o.archiveExchange(id, userText, chosen.Text, chosen.Provider, severity)
	v.Consensus = consensus(v.GPT, v.Claude)
	return v, nil
}

// complete runs the primary call and at most one fallback attempt.
func (o *Orchestrator) complete(ctx context.Context, id string, window []session.Turn) (provider.Response, string, error) {
	resp, err := o.primary.Complete(ctx, SystemPrompt, window)
	if err == nil {
		return resp, SourcePrimary, nil
	}
	if !errors.Is(err, provider.ErrUnavailable) {
		return provider.Response{}, "", err
	}
	o.logger.Warn("primary provider unavailable", "session_id", id, "error", err)

	if o.fallback == nil {
		return provider.Response{}, "", ErrAllProvidersUnavailable
	}

	resp, err = o.fallback.Complete(ctx, SystemPrompt, window)
	if err != nil {
		o.logger.Error("fallback provider failed", "session_id", id, "error", err)
		if errors.Is(err, provider.ErrUnavailable) {
			return provider.Response{}, "", ErrAllProvidersUnavailable
		}
		return provider.Response{}, "", err
	}
	o.logger.Info("served by fallback provider", "session_id", id, "provider", resp.Provider)
	return resp, SourceFallback, nil
}

// contextWindow returns the most recent turns for the outgoing prompt.
func (o *Orchestrator) contextWindow(id string) []session.Turn {
	turns, _ := o.store.Snapshot(id)
	if len(turns) > maxContextTurns {
		turns = turns[len(turns)-maxContextTurns:]
	}
	return turns
}

func (o *Orchestrator) archiveExchange(id, userText, assistantText, providerName string, severity safety.Tier) {
	if o.archive == nil {
		return
	}
	go func() {
		if err := o.archive.RecordExchange(id, userText, assistantText, providerName, severity.String()); err != nil {
			o.logger.Error("failed to archive exchange", "session_id", id, "error", err)
		}
	}()
}

// withEscalation appends the emergency footer for high tiers. History keeps
// the plain assistant text; only the served reply carries the footer.
func withEscalation(text string, tier safety.Tier) string {
	if notice := safety.EscalationNotice(tier); notice != "" {
		return text + notice
	}
	return text
}

// consensus reports whether both replies exist and are within 50% word-count
// of each other.
func consensus(a, b *provider.Response) bool {
	if a == nil || b == nil {
		return false
	}
	la := len(strings.Fields(a.Text))
	lb := len(strings.Fields(b.Text))
	if la == 0 || lb == 0 {
		return false
	}
	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	return float64(shorter)/float64(longer) > 0.5
}
