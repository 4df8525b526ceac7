package intent

import (
	"context"
	"fmt"

	"chat-assistant-be/pkg/store"
)

// GateKeywords is the fixed Tagalog vocabulary that diverts a message away from
// the English rules.
var GateKeywords = []string{"kamusta", "magandang araw", "salamat", "paalam", "kumusta", "oo", "hindi"}

const (
	ReplyTagalogGreeting  = "Magandang araw din! Ano ang pangalan mo?"
	ReplyTagalogHowAreYou = "Mabuti naman, salamat! Ikaw, kumusta ka?"
	ReplyTagalogThanks    = "Walang anuman!"
	ReplyTagalogFarewell  = "Paalam! Ingat ka palagi."
	ReplyTagalogUnknown   = "Pasensya na, hindi ko masyadong maintindihan. Puwede mo bang ulitin?"

	personalTagalogGreetingFormat  = "Magandang araw din, %s!"
	personalTagalogHowAreYouFormat = "Mabuti naman, %s! Ikaw, kumusta ka?"
	personalTagalogThanksFormat    = "Walang anuman, %s!"
	tagalogNameConfirmationFormat  = "Sige, %s! Tatandaan ko ang pangalan mo."
)

var tagalogNameTriggers = []string{"pangalan ko ay", "ako si"}

// LanguageGate decides whether a message belongs to the secondary language.
type LanguageGate struct {
	matches Matcher
}

func NewLanguageGate(keywords ...string) *LanguageGate {
	if len(keywords) == 0 {
		keywords = GateKeywords
	}
	return &LanguageGate{matches: ContainsWord(keywords...)}
}

// Detect reports whether message contains any gate keyword. It has no side effects.
func (g *LanguageGate) Detect(message string) bool {
	return g.matches(message)
}

// NewTagalogRules returns the secondary rule set. Messages that passed the gate
// but match no rule get the fixed apology.
func NewTagalogRules() *RuleSet {
	fallback := Rule{
		Intent: IntentTagalogUnknown,
		Handle: func(context.Context, *store.UserSession, string) string {
			return ReplyTagalogUnknown
		},
	}

	return NewRuleSet(fallback,
		Rule{Intent: IntentTagalogGreeting, Matches: ContainsWord("magandang araw"), Handle: handleTagalogGreeting},
		Rule{Intent: IntentTagalogHowAreYou, Matches: ContainsWord("kamusta", "kumusta"), Handle: handleTagalogHowAreYou},
		Rule{Intent: IntentTagalogThanks, Matches: ContainsWord("salamat"), Handle: handleTagalogThanks},
		Rule{Intent: IntentTagalogFarewell, Matches: ContainsWord("paalam"), Handle: handleTagalogFarewell},
		Rule{Intent: IntentTagalogNameCapture, Matches: ContainsWord(tagalogNameTriggers...), Handle: handleTagalogNameCapture},
	)
}

func handleTagalogGreeting(_ context.Context, s *store.UserSession, _ string) string {
	if s.HasName() {
		return fmt.Sprintf(personalTagalogGreetingFormat, s.Name)
	}
	return ReplyTagalogGreeting
}

func handleTagalogHowAreYou(_ context.Context, s *store.UserSession, _ string) string {
	if s.HasName() {
		return fmt.Sprintf(personalTagalogHowAreYouFormat, s.Name)
	}
	return ReplyTagalogHowAreYou
}

func handleTagalogThanks(_ context.Context, s *store.UserSession, _ string) string {
	if s.HasName() {
		return fmt.Sprintf(personalTagalogThanksFormat, s.Name)
	}
	return ReplyTagalogThanks
}

func handleTagalogFarewell(context.Context, *store.UserSession, string) string {
	return ReplyTagalogFarewell
}

func handleTagalogNameCapture(_ context.Context, s *store.UserSession, message string) string {
	for _, trigger := range tagalogNameTriggers {
		if name := extractAfter(message, trigger); name != "" {
			s.Name = name
			return fmt.Sprintf(tagalogNameConfirmationFormat, name)
		}
	}
	return ReplyTagalogUnknown
}
