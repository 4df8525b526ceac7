package intent

import (
	"context"
	"strings"

	"chat-assistant-be/pkg/store"
)

// Intent names the rule that answered a message.
type Intent string

const (
	IntentTimeGreeting Intent = "TIME_GREETING"
	IntentGreeting     Intent = "GREETING"
	IntentFarewell     Intent = "FAREWELL"
	IntentNameCapture  Intent = "NAME_CAPTURE"
	IntentPreferences  Intent = "PREFERENCES"
	IntentHistory      Intent = "HISTORY"
	IntentLastQuestion Intent = "LAST_QUESTION"
	IntentFallback     Intent = "FALLBACK"

	IntentTagalogGreeting    Intent = "TL_GREETING"
	IntentTagalogHowAreYou   Intent = "TL_HOW_ARE_YOU"
	IntentTagalogThanks      Intent = "TL_THANKS"
	IntentTagalogFarewell    Intent = "TL_FAREWELL"
	IntentTagalogNameCapture Intent = "TL_NAME_CAPTURE"
	IntentTagalogUnknown     Intent = "TL_UNKNOWN"
)

// Handler produces the reply for a matched message. It may mutate the session it is given.
type Handler func(ctx context.Context, session *store.UserSession, message string) string

// Matcher reports whether a rule applies to a message.
type Matcher func(message string) bool

// Rule is one (predicate, handler) pair.
type Rule struct {
	Intent  Intent
	Matches Matcher
	Handle  Handler
}

// ContainsAny matches when the lowercased message contains any keyword as a substring.
func ContainsAny(keywords ...string) Matcher {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return func(message string) bool {
		m := strings.ToLower(message)
		for _, k := range lowered {
			if strings.Contains(m, k) {
				return true
			}
		}
		return false
	}
}

// ContainsWord matches when any keyword appears as a whole word or phrase,
// ignoring case. "oo" matches "oo, salamat" but not "good".
func ContainsWord(keywords ...string) Matcher {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return func(message string) bool {
		m := strings.ToLower(message)
		for _, k := range lowered {
			if containsWord(m, k) {
				return true
			}
		}
		return false
	}
}

func containsWord(haystack, word string) bool {
	if word == "" {
		return false
	}
	for start := 0; start <= len(haystack)-len(word); {
		idx := strings.Index(haystack[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)
		if (idx == 0 || !isWordByte(haystack[idx-1])) && (end == len(haystack) || !isWordByte(haystack[end])) {
			return true
		}
		start = idx + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}

// RuleSet evaluates rules in declaration order; the first match wins.
type RuleSet struct {
	rules    []Rule
	fallback Rule
}

// NewRuleSet builds an ordered rule set. fallback answers when no rule matches;
// its Matches field is ignored.
func NewRuleSet(fallback Rule, rules ...Rule) *RuleSet {
	return &RuleSet{rules: rules, fallback: fallback}
}

// Classify returns the rule that would answer message, without running it.
func (rs *RuleSet) Classify(message string) Rule {
	for _, r := range rs.rules {
		if r.Matches(message) {
			return r
		}
	}
	return rs.fallback
}

// Apply classifies message and runs the winning handler.
func (rs *RuleSet) Apply(ctx context.Context, session *store.UserSession, message string) (Intent, string) {
	r := rs.Classify(message)
	return r.Intent, r.Handle(ctx, session, message)
}

// Intents lists the rule intents in evaluation order, fallback last.
func (rs *RuleSet) Intents() []Intent {
	out := make([]Intent, 0, len(rs.rules)+1)
	for _, r := range rs.rules {
		out = append(out, r.Intent)
	}
	return append(out, rs.fallback.Intent)
}

// extractAfter returns the trimmed text following the last case-insensitive
// occurrence of trigger, or "" when trigger is absent.
func extractAfter(message, trigger string) string {
	for idx := len(message) - len(trigger); idx >= 0; idx-- {
		if strings.EqualFold(message[idx:idx+len(trigger)], trigger) {
			return strings.TrimSpace(message[idx+len(trigger):])
		}
	}
	return ""
}
