package cache

import (
	"crypto/sha256"
	"fmt"
	"time"

	"TenangChat/internal/session"
)

// CachedResponse represents a cached provider reply
type CachedResponse struct {
	Text     string
	Provider string
	Source   string
	Stamp    time.Time
}

// Key generates a cache key from a conversation
func Key(turns []session.Turn) string {
	h := sha256.New()
	for _, t := range turns {
		h.Write([]byte(t.Role))
		h.Write([]byte(t.Text))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
