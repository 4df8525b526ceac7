package history

import (
	"context"
	"errors"
	"testing"

	"chat-assistant-be/internal/entity"
	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/internal/repository/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPersister() (*Persister, *fake.Store) {
	store := fake.NewStore()
	return NewPersister(fake.NewFactory(store), logger.NewNopLogger()), store
}

func TestFormatTurn(t *testing.T) {
	assert.Equal(t, "User: hi | Bot: hello\n", FormatTurn("hi", "hello"))
}

func TestMergeAppendsOneLine(t *testing.T) {
	p, store := newPersister()
	store.Put(&entity.User{Email: "sam@example.com", History: "User: a | Bot: b\n"})

	require.NoError(t, p.Merge(context.Background(), "sam@example.com", "hello", "Hi there! What's your name?"))

	got := store.Get("sam@example.com")
	assert.Equal(t, "User: a | Bot: b\nUser: hello | Bot: Hi there! What's your name?\n", got.History)
	assert.Equal(t, "hello", got.LastQuestion)
	assert.Equal(t, 1, store.Commits)
}

func TestMergeSequentialTurnsAccumulate(t *testing.T) {
	p, store := newPersister()
	store.Put(&entity.User{Email: "sam@example.com"})

	require.NoError(t, p.Merge(context.Background(), "sam@example.com", "one", "1"))
	require.NoError(t, p.Merge(context.Background(), "sam@example.com", "two", "2"))

	got := store.Get("sam@example.com")
	assert.Equal(t, "User: one | Bot: 1\nUser: two | Bot: 2\n", got.History)
	assert.Equal(t, "two", got.LastQuestion)
}

func TestMergeMissingRecordIsNoop(t *testing.T) {
	p, store := newPersister()

	err := p.Merge(context.Background(), "ghost@example.com", "hello", "hi")

	assert.NoError(t, err)
	assert.Nil(t, store.Get("ghost@example.com"))
	assert.Equal(t, 0, store.Commits)
	assert.Equal(t, 1, store.Rollbacks)
}

func TestMergeErrors(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name   string
		inject func(s *fake.Store)
		want   string
	}{
		{"begin", func(s *fake.Store) { s.BeginErr = boom }, "begin history merge"},
		{"find", func(s *fake.Store) { s.FindErr = boom }, "load user record"},
		{"update", func(s *fake.Store) { s.UpdateErr = boom }, "update history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, store := newPersister()
			store.Put(&entity.User{Email: "sam@example.com"})
			tt.inject(store)

			err := p.Merge(context.Background(), "sam@example.com", "hi", "hello")

			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, 0, store.Commits)
		})
	}
}
