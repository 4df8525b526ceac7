package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chat-assistant-be/internal/dto"
	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/internal/repository/fake"
	"chat-assistant-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func newAuthService(t *testing.T) (*authService, *fake.Store, *recordingPublisher) {
	t.Helper()
	store := fake.NewStore()
	pub := &recordingPublisher{}
	svc := NewAuthService(fake.NewFactory(store), AuthConfig{Secret: "test-secret"}, pub, logger.NewNopLogger())
	return svc.(*authService), store, pub
}

func TestRegisterAndLogin(t *testing.T) {
	svc, store, pub := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, &dto.RegisterRequest{Email: "sam@example.com", Password: "hunter2"}))

	stored := store.Get("sam@example.com")
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter2", stored.PasswordHash)
	assert.Empty(t, stored.History)
	assert.Empty(t, stored.LastQuestion)

	res, err := svc.Login(ctx, &dto.LoginRequest{Email: "sam@example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", res.User.Email)

	email, err := svc.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", email)

	assert.Equal(t, []string{events.TypeUserRegistered, events.TypeUserLogin}, pub.types())
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	req := &dto.RegisterRequest{Email: "sam@example.com", Password: "pw"}

	require.NoError(t, svc.Register(ctx, req))
	err := svc.Register(ctx, req)

	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthService(t)

	err := svc.Register(context.Background(), &dto.RegisterRequest{Email: "not-an-email"})

	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "Password")
}

func TestRegisterStorageFailure(t *testing.T) {
	svc, store, pub := newAuthService(t)
	store.CreateErr = errors.New("disk full")

	err := svc.Register(context.Background(), &dto.RegisterRequest{Email: "sam@example.com", Password: "pw"})

	assert.Error(t, err)
	assert.Empty(t, pub.types())
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, &dto.RegisterRequest{Email: "sam@example.com", Password: "right"}))

	tests := []struct {
		name string
		req  dto.LoginRequest
	}{
		{"wrong password", dto.LoginRequest{Email: "sam@example.com", Password: "wrong"}},
		{"unknown user", dto.LoginRequest{Email: "nobody@example.com", Password: "right"}},
		{"missing password", dto.LoginRequest{Email: "sam@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &tt.req)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestVerifyTokenExpiredAndInvalid(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, &dto.RegisterRequest{Email: "sam@example.com", Password: "pw"}))

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	res, err := svc.Login(ctx, &dto.LoginRequest{Email: "sam@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(res.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = svc.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = time.Now
	res, err = svc.Login(ctx, &dto.LoginRequest{Email: "sam@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = ParseToken(res.Token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
