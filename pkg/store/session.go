package store

import (
	"fmt"
	"strings"
	"time"
)

// Speaker tags who produced an utterance.
type Speaker string

const (
	SpeakerUser Speaker = "User"
	SpeakerBot  Speaker = "Bot"
)

// Utterance is one line of the in-memory transcript.
type Utterance struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// String renders the utterance the way the transcript shows it, e.g. "User: hello".
func (u Utterance) String() string {
	return fmt.Sprintf("%s: %s", u.Speaker, u.Text)
}

// UserSession is the conversational state kept for one identity.
type UserSession struct {
	Identity     string      `json:"identity"`
	Name         string      `json:"name,omitempty"` // empty until a naming rule fires
	Preferences  []string    `json:"preferences"`
	History      []Utterance `json:"history"`
	LastQuestion string      `json:"last_question,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewUserSession returns an empty session for identity.
func NewUserSession(identity string) *UserSession {
	return &UserSession{
		Identity:    identity,
		Preferences: []string{},
		History:     []Utterance{},
		CreatedAt:   time.Now(),
	}
}

func (s *UserSession) HasName() bool {
	return s.Name != ""
}

func (s *UserSession) HasLastQuestion() bool {
	return s.LastQuestion != ""
}

// RecordTurn appends the user line then the bot line and remembers the user text
// as the last question. maxTurns > 0 keeps only the newest maxTurns exchanges;
// whole exchanges are dropped so the history keeps alternating User/Bot.
func (s *UserSession) RecordTurn(userText, botText string, maxTurns int) {
	now := time.Now()
	s.History = append(s.History,
		Utterance{Speaker: SpeakerUser, Text: userText, At: now},
		Utterance{Speaker: SpeakerBot, Text: botText, At: now},
	)
	s.LastQuestion = userText

	if maxTurns > 0 && len(s.History) > 2*maxTurns {
		drop := len(s.History) - 2*maxTurns
		s.History = append([]Utterance(nil), s.History[drop:]...)
	}
}

// Transcript joins the history one utterance per line.
func (s *UserSession) Transcript() string {
	lines := make([]string, len(s.History))
	for i, u := range s.History {
		lines[i] = u.String()
	}
	return strings.Join(lines, "\n")
}

// Clone returns a deep copy so callers never share slices with the store.
func (s *UserSession) Clone() *UserSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Preferences = append([]string{}, s.Preferences...)
	c.History = append([]Utterance{}, s.History...)
	return &c
}
