package response

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/pkg/llm"
)

const (
	ReplyBackendFailure = "Error: Cannot process your request at the moment."
	ReplyEmpty          = "I'm not sure how to answer that yet."
)

// Outcome classifies a completion attempt.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeEmpty
	OutcomeBackendFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeEmpty:
		return "EMPTY"
	case OutcomeBackendFailure:
		return "BACKEND_FAILURE"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// FailurePolicy decides how much of a backend error reaches the user.
type FailurePolicy string

const (
	PolicyGeneric  FailurePolicy = "generic"
	PolicyDetailed FailurePolicy = "detailed"
)

// ParseFailurePolicy maps a config value to a policy, defaulting to generic.
func ParseFailurePolicy(v string) FailurePolicy {
	if strings.EqualFold(strings.TrimSpace(v), string(PolicyDetailed)) {
		return PolicyDetailed
	}
	return PolicyGeneric
}

type Completion struct {
	Text    string
	Outcome Outcome
	Err     error
}

type Config struct {
	Model     string
	MaxTokens int
	Policy    FailurePolicy
	// Timeout bounds a single completion. Zero leaves the caller's context as is.
	Timeout time.Duration
}

// Generator wraps an LLM provider. One Generate call per message, fixed
// model and token cap. Backend errors never escape Reply.
type Generator struct {
	provider llm.LLMProvider
	config   Config
	logger   logger.ILogger
}

func NewGenerator(provider llm.LLMProvider, config Config, log logger.ILogger) *Generator {
	if config.Policy == "" {
		config.Policy = PolicyGeneric
	}
	return &Generator{provider: provider, config: config, logger: log}
}

// Complete sends message to the backend and classifies the result.
func (g *Generator) Complete(ctx context.Context, message string) Completion {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	var opts []llm.Option
	if g.config.Model != "" {
		opts = append(opts, llm.WithModel(g.config.Model))
	}
	if g.config.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(g.config.MaxTokens))
	}

	start := time.Now()
	text, err := g.provider.Generate(ctx, message, opts...)
	if err != nil {
		g.logger.Warn("RESPONSE", "Completion backend failed", map[string]interface{}{
			"error":       err.Error(),
			"model":       g.config.Model,
			"duration_ms": time.Since(start).Milliseconds(),
			"timed_out":   errors.Is(err, context.DeadlineExceeded),
		})
		return Completion{Outcome: OutcomeBackendFailure, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.logger.Info("RESPONSE", "Completion backend returned empty text", map[string]interface{}{
			"model": g.config.Model,
		})
		return Completion{Outcome: OutcomeEmpty}
	}

	g.logger.Debug("RESPONSE", "Completion generated", map[string]interface{}{
		"model":       g.config.Model,
		"chars":       len(text),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return Completion{Text: text, Outcome: OutcomeOK}
}

// Reply returns the user-facing text for message.
func (g *Generator) Reply(ctx context.Context, message string) string {
	return g.Render(g.Complete(ctx, message))
}

// Render maps a completion to reply text according to the failure policy.
func (g *Generator) Render(c Completion) string {
	switch c.Outcome {
	case OutcomeOK:
		return c.Text
	case OutcomeEmpty:
		return ReplyEmpty
	default:
		if g.config.Policy == PolicyDetailed && c.Err != nil {
			return fmt.Sprintf("%s (%s)", ReplyBackendFailure, c.Err.Error())
		}
		return ReplyBackendFailure
	}
}
