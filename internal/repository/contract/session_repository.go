package contract

import (
	"context"

	"chat-assistant-be/pkg/store"
)

// SessionRepository keeps one conversational session per identity.
// Sessions are created lazily and never deleted.
type SessionRepository interface {
	// GetOrCreate returns a snapshot of the identity's session, creating an empty one first if needed.
	GetOrCreate(ctx context.Context, identity string) (*store.UserSession, error)

	// RecordTurn appends a User then a Bot utterance and sets the last question.
	RecordTurn(ctx context.Context, identity, userText, botText string) error

	// WithSession runs fn with exclusive access to the identity's session and stores
	// the result when fn returns nil. Different identities never block each other.
	WithSession(ctx context.Context, identity string, fn func(session *store.UserSession) error) error

	// SetPreferences replaces the identity's preference list.
	SetPreferences(ctx context.Context, identity string, preferences []string) error

	// MaxTurns is the retention cap applied to history, 0 when unbounded.
	MaxTurns() int
}
