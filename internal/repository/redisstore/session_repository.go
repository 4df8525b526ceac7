package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"chat-assistant-be/internal/repository/contract"
	"chat-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix      = "chat:session:"
	lockSuffix     = ":lock"
	defaultLockTTL = 2 * time.Minute
	lockRetryDelay = 25 * time.Millisecond
)

// ErrLockLost means the session lock expired or was taken over before the
// session could be written back. The session is left as the new holder wrote it.
var ErrLockLost = errors.New("session lock lost")

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the lock expiry out only if this holder still owns it.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// saveScript writes the session only while the lock is still held by ARGV[1].
var saveScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2])
return 1
`)

// SessionRepository stores sessions as JSON values so several processes share them.
// Access to one identity is serialized with a token lock next to the session key.
// The lock is renewed while a caller holds it, so a slow turn keeps exclusivity.
type SessionRepository struct {
	rdb      *redis.Client
	maxTurns int
	lockTTL  time.Duration
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(rdb *redis.Client, maxTurns int) *SessionRepository {
	return &SessionRepository{
		rdb:      rdb,
		maxTurns: maxTurns,
		lockTTL:  defaultLockTTL,
	}
}

func (r *SessionRepository) MaxTurns() int {
	return r.maxTurns
}

// sessionKey wraps the identity in a hash tag so the session and its lock
// land in the same cluster slot, which the save script requires.
func sessionKey(identity string) string {
	return keyPrefix + "{" + identity + "}"
}

func lockKey(identity string) string {
	return sessionKey(identity) + lockSuffix
}

func (r *SessionRepository) load(ctx context.Context, identity string) (*store.UserSession, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.NewUserSession(identity), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s store.UserSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Preferences == nil {
		s.Preferences = []string{}
	}
	if s.History == nil {
		s.History = []store.Utterance{}
	}
	return &s, nil
}

// lease is a held session lock. A watchdog keeps it alive while the holder works.
type lease struct {
	key   string
	token string
	lost  atomic.Bool
	stop  chan struct{}
	wg    sync.WaitGroup
}

func (r *SessionRepository) save(ctx context.Context, l *lease, s *store.UserSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := saveScript.Run(ctx, r.rdb, []string{l.key, sessionKey(s.Identity)}, l.token, raw).Int()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if ok == 0 {
		return ErrLockLost
	}
	return nil
}

func (r *SessionRepository) lock(ctx context.Context, identity string) (*lease, error) {
	l := &lease{
		key:   lockKey(identity),
		token: uuid.NewString(),
		stop:  make(chan struct{}),
	}

	for {
		ok, err := r.rdb.SetNX(ctx, l.key, l.token, r.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire session lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	l.wg.Add(1)
	go r.keepAlive(l)
	return l, nil
}

// keepAlive renews the lock at a third of its TTL until released or lost.
func (r *SessionRepository) keepAlive(l *lease) {
	defer l.wg.Done()
	ticker := time.NewTicker(r.lockTTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			n, err := extendScript.Run(context.Background(), r.rdb, []string{l.key}, l.token, r.lockTTL.Milliseconds()).Int()
			if err != nil {
				// transient; the next tick retries before the TTL runs out
				continue
			}
			if n == 0 {
				l.lost.Store(true)
				return
			}
		}
	}
}

func (r *SessionRepository) unlock(l *lease) {
	close(l.stop)
	l.wg.Wait()
	// Release even if the request context is already cancelled.
	_ = releaseScript.Run(context.Background(), r.rdb, []string{l.key}, l.token).Err()
}

func (r *SessionRepository) GetOrCreate(ctx context.Context, identity string) (*store.UserSession, error) {
	var snapshot *store.UserSession
	err := r.WithSession(ctx, identity, func(s *store.UserSession) error {
		snapshot = s.Clone()
		return nil
	})
	return snapshot, err
}

func (r *SessionRepository) WithSession(ctx context.Context, identity string, fn func(session *store.UserSession) error) error {
	l, err := r.lock(ctx, identity)
	if err != nil {
		return err
	}
	defer r.unlock(l)

	s, err := r.load(ctx, identity)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	if l.lost.Load() {
		return ErrLockLost
	}
	return r.save(ctx, l, s)
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
