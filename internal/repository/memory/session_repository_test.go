package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"chat-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGetOrCreateCreatesEmptySessionOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)

	s, err := repo.GetOrCreate(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", s.Identity)
	assert.False(t, s.HasName())
	assert.Empty(t, s.History)
	assert.False(t, s.HasLastQuestion())

	require.NoError(t, repo.WithSession(ctx, "new@example.com", func(s *store.UserSession) error {
		s.Name = "Sam"
		return nil
	}))

	again, err := repo.GetOrCreate(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Sam", again.Name)
	assert.Equal(t, 1, repo.Count())
}

func TestGetOrCreateReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)

	s, _ := repo.GetOrCreate(ctx, "u")
	s.Name = "mutated outside"

	fresh, _ := repo.GetOrCreate(ctx, "u")
	assert.Empty(t, fresh.Name)
}

func TestRecordTurnAccumulatesTwoEntriesPerTurn(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)

	const turns = 7
	for i := 0; i < turns; i++ {
		require.NoError(t, repo.RecordTurn(ctx, "u", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	s, _ := repo.GetOrCreate(ctx, "u")
	require.Len(t, s.History, 2*turns)
	assert.Equal(t, store.SpeakerUser, s.History[0].Speaker)
	assert.Equal(t, store.SpeakerBot, s.History[2*turns-1].Speaker)
	assert.Equal(t, "q6", s.LastQuestion)
}

func TestRecordTurnAppliesRetention(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(3)

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.RecordTurn(ctx, "u", fmt.Sprintf("q%d", i), "a"))
	}

	s, _ := repo.GetOrCreate(ctx, "u")
	assert.Len(t, s.History, 6)
	assert.Equal(t, "q7", s.History[0].Text)
	assert.Equal(t, 3, repo.MaxTurns())
}

func TestWithSessionDiscardsChangesOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)
	boom := errors.New("boom")

	err := repo.WithSession(ctx, "u", func(s *store.UserSession) error {
		s.Name = "ghost"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	s, _ := repo.GetOrCreate(ctx, "u")
	assert.Empty(t, s.Name)
}

func TestSetPreferencesCopiesInput(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)

	prefs := []string{"jazz", "tea"}
	require.NoError(t, repo.SetPreferences(ctx, "u", prefs))
	prefs[0] = "metal"

	s, _ := repo.GetOrCreate(ctx, "u")
	assert.Equal(t, []string{"jazz", "tea"}, s.Preferences)
}

func TestConcurrentTurnsForSameIdentityAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)

	const workers = 20
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = repo.RecordTurn(ctx, "shared", fmt.Sprintf("w%d-%d", w, i), "ok")
			}
		}(w)
	}
	wg.Wait()

	s, _ := repo.GetOrCreate(ctx, "shared")
	require.Len(t, s.History, 2*workers*perWorker)
	for i := 0; i < len(s.History); i += 2 {
		assert.Equal(t, store.SpeakerUser, s.History[i].Speaker)
		assert.Equal(t, store.SpeakerBot, s.History[i+1].Speaker)
	}
}

func TestConcurrentFirstContactCreatesOneSession(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.RecordTurn(ctx, "racer", "hi", "hello")
		}()
	}
	wg.Wait()

	s, _ := repo.GetOrCreate(ctx, "racer")
	assert.Len(t, s.History, 100)
	assert.Equal(t, 1, repo.Count())
}
