package memory

import (
	"context"
	"sync"

	"chat-assistant-be/internal/repository/contract"
	"chat-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type sessionEntry struct {
	mu      sync.Mutex
	session *store.UserSession
}

type SessionRepository struct {
	cache    *cache.Cache
	maxTurns int
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(maxTurns int) *SessionRepository {
	// Sessions live for the whole process, so nothing expires and no janitor runs.
	c := cache.New(cache.NoExpiration, 0)
	return &SessionRepository{
		cache:    c,
		maxTurns: maxTurns,
	}
}

func (r *SessionRepository) MaxTurns() int {
	return r.maxTurns
}

// entry returns the identity's slot, creating it atomically on first use.
func (r *SessionRepository) entry(identity string) *sessionEntry {
	if x, found := r.cache.Get(identity); found {
		return x.(*sessionEntry)
	}
	fresh := &sessionEntry{session: store.NewUserSession(identity)}
	if err := r.cache.Add(identity, fresh, cache.NoExpiration); err != nil {
		// Another request created it first.
		x, _ := r.cache.Get(identity)
		return x.(*sessionEntry)
	}
	return fresh
}

func (r *SessionRepository) GetOrCreate(ctx context.Context, identity string) (*store.UserSession, error) {
	e := r.entry(identity)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

func (r *SessionRepository) WithSession(ctx context.Context, identity string, fn func(session *store.UserSession) error) error {
	e := r.entry(identity)
	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.session.Clone()
	if err := fn(working); err != nil {
		return err
	}
	e.session = working
	return nil
}

func (r *SessionRepository) RecordTurn(ctx context.Context, identity, userText, botText string) error {
	return r.WithSession(ctx, identity, func(s *store.UserSession) error {
		s.RecordTurn(userText, botText, r.maxTurns)
		return nil
	})
}

func (r *SessionRepository) SetPreferences(ctx context.Context, identity string, preferences []string) error {
	return r.WithSession(ctx, identity, func(s *store.UserSession) error {
		s.Preferences = append([]string{}, preferences...)
		return nil
	})
}

// Count reports how many identities have a session.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
