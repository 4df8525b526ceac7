package factory

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chat-assistant-be/pkg/llm"
	"chat-assistant-be/pkg/llm/cohere"
	"chat-assistant-be/pkg/llm/gemini"
	"chat-assistant-be/pkg/llm/huggingface"
	"chat-assistant-be/pkg/llm/ollama"
)

// DefaultRequestTimeout caps one backend HTTP call when no timeout is configured.
const DefaultRequestTimeout = 120 * time.Second

type Config struct {
	Provider string
	// Model empty lets each backend use its own default model.
	Model    string
	BaseURL  string
	APIKey   string
	// Timeout bounds each completion request. Zero means DefaultRequestTimeout.
	Timeout time.Duration
}

func NewLLMProvider(ctx context.Context, cfg Config) (llm.LLMProvider, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch strings.ToLower(cfg.Provider) {
	case "cohere", "":
		return cohere.NewCohereProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, client), nil
	case "ollama":
		return ollama.NewOllamaProvider(cfg.BaseURL, cfg.Model, client), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, client), nil
	case "gemini":
		return gemini.NewGeminiProvider(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model, client)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
