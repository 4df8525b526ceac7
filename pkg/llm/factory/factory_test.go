package factory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/pkg/ai/response"
	"chat-assistant-be/pkg/llm/cohere"
	"chat-assistant-be/pkg/llm/gemini"
	"chat-assistant-be/pkg/llm/huggingface"
	"chat-assistant-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     any
	}{
		{"", &cohere.CohereProvider{}},
		{"cohere", &cohere.CohereProvider{}},
		{"Ollama", &ollama.OllamaProvider{}},
		{"huggingface", &huggingface.HuggingFaceProvider{}},
		{"gemini", &gemini.GeminiProvider{}},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewLLMProvider(context.Background(), Config{
				Provider: tt.provider,
				APIKey:   "key",
				Timeout:  time.Second,
			})
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestNewLLMProviderUnknown(t *testing.T) {
	_, err := NewLLMProvider(context.Background(), Config{Provider: "openai"})
	assert.ErrorContains(t, err, "unsupported LLM provider")
}

func TestProviderDefaultModelWhenUnset(t *testing.T) {
	tests := []struct {
		provider  string
		wantModel string
		reply     string
	}{
		{"cohere", cohere.DefaultModel, `{"generations":[{"text":"hi"}]}`},
		{"ollama", ollama.DefaultModel, `{"message":{"role":"assistant","content":"hi"},"done":true}`},
		{"huggingface", huggingface.DefaultModel, `{"choices":[{"message":{"content":"hi"}}]}`},
		{"gemini", gemini.DefaultModel, `{"candidates":[{"content":{"role":"model","parts":[{"text":"hi"}]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			var gotModel string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.provider == "gemini" {
					if strings.Contains(r.URL.Path, "models/"+tt.wantModel+":") {
						gotModel = tt.wantModel
					} else {
						gotModel = r.URL.Path
					}
				} else {
					var body struct {
						Model string `json:"model"`
					}
					assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
					gotModel = body.Model
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			p, err := NewLLMProvider(context.Background(), Config{
				Provider: tt.provider,
				BaseURL:  srv.URL,
				APIKey:   "key",
			})
			require.NoError(t, err)

			gen := response.NewGenerator(p, response.Config{MaxTokens: 100}, logger.NewNopLogger())
			assert.Equal(t, "hi", gen.Reply(context.Background(), "what is go"))
			assert.Equal(t, tt.wantModel, gotModel)
		})
	}
}

func TestZeroTimeoutKeepsRequestCeiling(t *testing.T) {
	p, err := NewLLMProvider(context.Background(), Config{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, DefaultRequestTimeout, p.(*ollama.OllamaProvider).Client.Timeout)

	p, err = NewLLMProvider(context.Background(), Config{Provider: "ollama", Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, p.(*ollama.OllamaProvider).Client.Timeout)
}
