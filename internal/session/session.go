package session

import (
	"context"
	"errors"
	"time"

	"paper-analyzer/internal/llm"
)

// ErrNotFound is returned by Get for unknown or expired sessions.
var ErrNotFound = errors.New("session: not found")

// Session is one browser's model selection. Provider holds the API key in
// plaintext; stores keep it only until the session TTL expires.
type Session struct {
	ID        string             `json:"id"`
	Provider  llm.ProviderConfig `json:"provider"`
	CreatedAt time.Time          `json:"created_at"`
}

// Store keeps sessions keyed by ID.
type Store interface {
	// Get returns ErrNotFound when the session does not exist.
	Get(ctx context.Context, id string) (*Session, error)

	// Save stores s, replacing any session with the same ID.
	Save(ctx context.Context, s *Session, ttl time.Duration) error

	Delete(ctx context.Context, id string) error

	Close() error
}
