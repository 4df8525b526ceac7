package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"chat-assistant-be/pkg/llm"
)

const (
	DefaultBaseURL = "https://api.cohere.ai/v1"
	DefaultModel   = "command"
)

// CohereProvider talks to the Cohere v1 REST API. Generate uses /generate,
// Chat uses /chat with the earlier turns as chat_history.
type CohereProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = (*CohereProvider)(nil)

type generateRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
}

type chatTurn struct {
	Role    string `json:"role"` // USER | CHATBOT | SYSTEM
	Message string `json:"message"`
}

type chatRequest struct {
	Model       string     `json:"model"`
	Message     string     `json:"message"`
	ChatHistory []chatTurn `json:"chat_history,omitempty"`
	Preamble    string     `json:"preamble,omitempty"`
	MaxTokens   int        `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func NewCohereProvider(apiKey, baseURL, model string, client *http.Client) *CohereProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if client == nil {
		client = &http.Client{}
	}
	return &CohereProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  client,
	}
}

func (p *CohereProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model}, options...)

	reqBody := generateRequest{
		Model:     opts.Model,
		Prompt:    prompt,
		MaxTokens: opts.MaxTokens,
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = &opts.Temperature
	}

	var resp generateResponse
	if err := p.post(ctx, "/generate", reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Generations) == 0 {
		return "", fmt.Errorf("cohere returned no generations")
	}
	return resp.Generations[0].Text, nil
}

func (p *CohereProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("cohere chat requires at least one message")
	}
	opts := llm.Apply(llm.Options{Model: p.model}, options...)

	last := history[len(history)-1]
	reqBody := chatRequest{
		Model:     opts.Model,
		Message:   last.Content,
		MaxTokens: opts.MaxTokens,
	}
	for _, m := range history[:len(history)-1] {
		switch m.Role {
		case "system":
			reqBody.Preamble = m.Content
		case "assistant", "model":
			reqBody.ChatHistory = append(reqBody.ChatHistory, chatTurn{Role: "CHATBOT", Message: m.Content})
		default:
			reqBody.ChatHistory = append(reqBody.ChatHistory, chatTurn{Role: "USER", Message: m.Content})
		}
	}

	var resp chatResponse
	if err := p.post(ctx, "/chat", reqBody, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (p *CohereProvider) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("cohere request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("cohere error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("cohere error (status %d): %s", resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
