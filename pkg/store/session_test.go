package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserSessionIsEmpty(t *testing.T) {
	s := NewUserSession("alex@example.com")

	assert.Equal(t, "alex@example.com", s.Identity)
	assert.False(t, s.HasName())
	assert.False(t, s.HasLastQuestion())
	assert.Empty(t, s.History)
	assert.NotNil(t, s.Preferences)
	assert.Empty(t, s.Preferences)
}

func TestRecordTurnAlternatesSpeakers(t *testing.T) {
	s := NewUserSession("u")

	for i := 0; i < 3; i++ {
		s.RecordTurn(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), 0)
	}

	require.Len(t, s.History, 6)
	for i, u := range s.History {
		if i%2 == 0 {
			assert.Equal(t, SpeakerUser, u.Speaker)
			assert.Equal(t, fmt.Sprintf("q%d", i/2), u.Text)
		} else {
			assert.Equal(t, SpeakerBot, u.Speaker)
			assert.Equal(t, fmt.Sprintf("a%d", i/2), u.Text)
		}
	}
	assert.Equal(t, "q2", s.LastQuestion)
}

func TestRecordTurnRetentionDropsOldestTurns(t *testing.T) {
	s := NewUserSession("u")

	for i := 0; i < 5; i++ {
		s.RecordTurn(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), 2)
	}

	require.Len(t, s.History, 4)
	assert.Equal(t, "User: q3", s.History[0].String())
	assert.Equal(t, "Bot: a4", s.History[3].String())
}

func TestTranscript(t *testing.T) {
	s := NewUserSession("u")
	assert.Equal(t, "", s.Transcript())

	s.RecordTurn("hello", "Hi there! What's your name?", 0)
	assert.Equal(t, "User: hello\nBot: Hi there! What's your name?", s.Transcript())
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	s := NewUserSession("u")
	s.Preferences = []string{"tea"}
	s.RecordTurn("a", "b", 0)

	c := s.Clone()
	c.Preferences[0] = "coffee"
	c.RecordTurn("c", "d", 0)

	assert.Equal(t, "tea", s.Preferences[0])
	assert.Len(t, s.History, 2)
	assert.Len(t, c.History, 4)
}
