package session

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn represents a single conversation turn
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session represents one therapy conversation
type Session struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	Turns        []Turn    `json:"turns"`
}

// Info is a read-only summary of a session.
type Info struct {
	ID              string    `json:"session_id"`
	CreatedAt       time.Time `json:"created_at"`
	LastActivity    time.Time `json:"last_activity"`
	TurnCount       int       `json:"turn_count"`
	UserTurns       int       `json:"user_turns"`
	AssistantTurns  int       `json:"assistant_turns"`
	DurationSeconds float64   `json:"duration_seconds"`
}
