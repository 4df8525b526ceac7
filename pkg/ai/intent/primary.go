package intent

import (
	"context"
	"fmt"
	"strings"

	"chat-assistant-be/pkg/store"
)

const (
	TriggerNameCapture = "my name is"

	ReplyGoodMorning        = "Good morning! How can I assist you today?"
	ReplyGoodEvening        = "Good evening! How can I assist you today?"
	ReplyAskName            = "Hi there! What's your name?"
	ReplyFarewell           = "Goodbye! Have a great day."
	ReplyNameNotCaught      = "I didn't catch your name. Could you tell me again?"
	ReplyNoHistory          = "No conversation history yet."
	ReplyNoLastQuestion     = "You haven't asked me anything yet."
	PreferencesReplyPrefix  = "Your preferences: "
	PreferencesSeparator    = ", "
	lastQuestionReplyFormat = "Your last question was: %s"
	nameConfirmationFormat  = "Got it, %s! I will remember your name."
	personalGreetingFormat  = "Hello %s!"
	personalMorningFormat   = "Good morning %s!"
	personalEveningFormat   = "Good evening %s!"
)

// Completer answers messages no keyword rule recognises.
type Completer interface {
	Reply(ctx context.Context, message string) string
}

// NewPrimaryRules returns the English rule set in priority order. Unmatched
// messages go to completer verbatim.
func NewPrimaryRules(completer Completer) *RuleSet {
	fallback := Rule{
		Intent: IntentFallback,
		Handle: func(ctx context.Context, _ *store.UserSession, message string) string {
			return completer.Reply(ctx, message)
		},
	}

	return NewRuleSet(fallback,
		Rule{Intent: IntentTimeGreeting, Matches: ContainsAny("good morning", "good evening"), Handle: handleTimeGreeting},
		Rule{Intent: IntentGreeting, Matches: ContainsAny("hello"), Handle: handleGreeting},
		Rule{Intent: IntentFarewell, Matches: ContainsAny("bye"), Handle: handleFarewell},
		Rule{Intent: IntentNameCapture, Matches: ContainsAny(TriggerNameCapture), Handle: handleNameCapture},
		Rule{Intent: IntentPreferences, Matches: ContainsAny("preferences"), Handle: handlePreferences},
		Rule{Intent: IntentHistory, Matches: ContainsAny("history"), Handle: handleHistory},
		Rule{Intent: IntentLastQuestion, Matches: ContainsAny("last question"), Handle: handleLastQuestion},
	)
}

func handleTimeGreeting(_ context.Context, s *store.UserSession, message string) string {
	morning := ContainsAny("good morning")(message)
	switch {
	case morning && s.HasName():
		return fmt.Sprintf(personalMorningFormat, s.Name)
	case morning:
		return ReplyGoodMorning
	case s.HasName():
		return fmt.Sprintf(personalEveningFormat, s.Name)
	default:
		return ReplyGoodEvening
	}
}

func handleGreeting(_ context.Context, s *store.UserSession, _ string) string {
	if s.HasName() {
		return fmt.Sprintf(personalGreetingFormat, s.Name)
	}
	return ReplyAskName
}

func handleFarewell(context.Context, *store.UserSession, string) string {
	return ReplyFarewell
}

func handleNameCapture(_ context.Context, s *store.UserSession, message string) string {
	name := extractAfter(message, TriggerNameCapture)
	if name == "" {
		return ReplyNameNotCaught
	}
	s.Name = name
	return fmt.Sprintf(nameConfirmationFormat, name)
}

func handlePreferences(_ context.Context, s *store.UserSession, _ string) string {
	return PreferencesReplyPrefix + strings.Join(s.Preferences, PreferencesSeparator)
}

func handleHistory(_ context.Context, s *store.UserSession, _ string) string {
	if len(s.History) == 0 {
		return ReplyNoHistory
	}
	return s.Transcript()
}

func handleLastQuestion(_ context.Context, s *store.UserSession, _ string) string {
	if !s.HasLastQuestion() {
		return ReplyNoLastQuestion
	}
	return fmt.Sprintf(lastQuestionReplyFormat, s.LastQuestion)
}
