package router

import (
	"context"

	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/pkg/ai/intent"
	"chat-assistant-be/pkg/store"
)

// Language identifies which rule set answered a message.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageTagalog Language = "tl"
)

// Result is the outcome of routing one message.
type Result struct {
	Reply    string
	Intent   intent.Intent
	Language Language
}

// Router sends a message to the secondary rule set when the language gate
// fires, otherwise to the primary rules, whose fallback calls the completion
// backend.
type Router struct {
	gate      *intent.LanguageGate
	primary   *intent.RuleSet
	secondary *intent.RuleSet
	logger    logger.ILogger
}

// NewRouter builds the default English and Tagalog rule sets around completer.
func NewRouter(completer intent.Completer, log logger.ILogger) *Router {
	return New(intent.NewLanguageGate(), intent.NewPrimaryRules(completer), intent.NewTagalogRules(), log)
}

func New(gate *intent.LanguageGate, primary, secondary *intent.RuleSet, log logger.ILogger) *Router {
	return &Router{
		gate:      gate,
		primary:   primary,
		secondary: secondary,
		logger:    log,
	}
}

// Route answers message. Handlers may mutate session; callers must hold
// exclusive access to it.
func (r *Router) Route(ctx context.Context, session *store.UserSession, message string) Result {
	lang, rules := r.pick(message)
	matched, reply := rules.Apply(ctx, session, message)

	r.logger.Debug("ROUTER", "Message routed", map[string]interface{}{
		"identity": session.Identity,
		"intent":   string(matched),
		"language": string(lang),
	})

	return Result{Reply: reply, Intent: matched, Language: lang}
}

// Classify returns the intent that would answer message without running any handler.
func (r *Router) Classify(message string) intent.Intent {
	_, rules := r.pick(message)
	return rules.Classify(message).Intent
}

func (r *Router) pick(message string) (Language, *intent.RuleSet) {
	if r.gate.Detect(message) {
		return LanguageTagalog, r.secondary
	}
	return LanguageEnglish, r.primary
}
