package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chat-assistant-be/internal/constant"
	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/internal/pkg/serverutils"
	"chat-assistant-be/internal/repository/fake"
	"chat-assistant-be/internal/repository/memory"
	"chat-assistant-be/internal/service"
	"chat-assistant-be/pkg/ai/history"
	"chat-assistant-be/pkg/ai/intent"
	"chat-assistant-be/pkg/ai/response"
	"chat-assistant-be/pkg/ai/router"
	"chat-assistant-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProvider struct{}

func (failingProvider) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", errors.New("unavailable")
}

func (failingProvider) Generate(context.Context, string, ...llm.Option) (string, error) {
	return "", errors.New("unavailable")
}

func newTestApp(t *testing.T) (*fiber.App, *fake.Store) {
	t.Helper()
	log := logger.NewNopLogger()
	db := fake.NewStore()
	factory := fake.NewFactory(db)

	generator := response.NewGenerator(failingProvider{}, response.Config{}, log)
	chatSvc := service.NewChatService(
		memory.NewSessionRepository(0),
		router.NewRouter(generator, log),
		history.NewPersister(factory, log),
		nil,
		log,
	)
	authSvc := service.NewAuthService(factory, service.AuthConfig{Secret: "test-secret"}, nil, log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	api := app.Group("/api")
	NewAuthController(authSvc).RegisterRoutes(api, serverutils.NewJwtMiddleware(authSvc))
	NewChatController(chatSvc).RegisterRoutes(api)
	return app, db
}

func do(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestChatEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/api/chat", `{"email":"sam@example.com","message":"hello"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, intent.ReplyAskName, body["response"])

	status, body = do(t, app, http.MethodPost, "/api/chat", `{"email":"sam@example.com","message":"explain quantum physics"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, response.ReplyBackendFailure, body["response"])
}

func TestChatEndpointValidation(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing message", `{"email":"sam@example.com"}`, constant.MsgNoMessage},
		{"empty message", `{"email":"sam@example.com","message":""}`, constant.MsgNoMessage},
		{"malformed", `{"email":`, constant.MsgInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestPreferencesAndSessionEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := do(t, app, http.MethodPut, "/api/chat/preferences", `{"email":"sam@example.com","preferences":["jazz","tea"]}`)
	require.Equal(t, http.StatusOK, status)

	_, body := do(t, app, http.MethodPost, "/api/chat", `{"email":"sam@example.com","message":"what are my preferences"}`)
	assert.Equal(t, "Your preferences: jazz, tea", body["response"])

	status, body = do(t, app, http.MethodGet, "/api/chat/session?email=sam@example.com", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"jazz", "tea"}, body["preferences"])
	assert.Len(t, body["history"], 2)

	status, _ = do(t, app, http.MethodGet, "/api/chat/session", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPut, "/api/chat/preferences", `{"preferences":["x"]}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuthFlow(t *testing.T) {
	app, db := newTestApp(t)
	creds := `{"email":"sam@example.com","password":"hunter2"}`

	status, body := do(t, app, http.MethodPost, "/api/auth/register", creds)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, constant.MsgUserRegistered, body["message"])

	status, body = do(t, app, http.MethodPost, "/api/auth/register", creds)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, constant.MsgUserExists, body["message"])

	status, body = do(t, app, http.MethodPost, "/api/auth/login", `{"email":"sam@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, constant.MsgInvalidCredentials, body["message"])

	status, body = do(t, app, http.MethodPost, "/api/auth/login", creds)
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, map[string]interface{}{"email": "sam@example.com"}, body["user"])

	status, body = do(t, app, http.MethodGet, "/api/auth/protected", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, constant.MsgAccessGranted, body["message"])

	status, body = do(t, app, http.MethodGet, "/api/auth/protected", "", "Authorization", "Bearer "+token+"x")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, constant.MsgInvalidToken, body["message"])

	// Registered users get their transcript persisted.
	do(t, app, http.MethodPost, "/api/chat", `{"email":"sam@example.com","message":"bye"}`)
	assert.Equal(t, "User: bye | Bot: "+intent.ReplyFarewell+"\n", db.Get("sam@example.com").History)
	assert.Equal(t, "bye", db.Get("sam@example.com").LastQuestion)
}
