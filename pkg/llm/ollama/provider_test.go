package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendsModelAndTokenCap(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   got.Model,
			Message: ollamaMessage{Role: "assistant", Content: "  hi there  "},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3", srv.Client())
	out, err := p.Generate(context.Background(), "tell me a joke", llm.WithModel("command"), llm.WithMaxTokens(100))

	require.NoError(t, err)
	assert.Equal(t, "  hi there  ", out)
	assert.Equal(t, "command", got.Model)
	require.NotNil(t, got.Options)
	assert.Equal(t, 100, got.Options.NumPredict)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "tell me a joke", got.Messages[0].Content)
}

func TestChatMapsModelRoleAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "assistant", req.Messages[0].Role)
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3", nil)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: "model", Content: "x"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestDefaultBaseURL(t *testing.T) {
	p := NewOllamaProvider("", "llama3", nil)
	assert.Equal(t, DefaultBaseURL, p.BaseURL)
	assert.NotNil(t, p.Client)
}
