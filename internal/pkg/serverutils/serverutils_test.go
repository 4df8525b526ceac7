package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"chat-assistant-be/internal/constant"
	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]error

func (s stubVerifier) VerifyToken(tokenStr string) (string, error) {
	if err, ok := s[tokenStr]; ok {
		return "", err
	}
	return "sam@example.com", nil
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	verifier := stubVerifier{
		"expired": service.ErrTokenExpired,
		"garbage": service.ErrInvalidToken,
	}
	app.Get("/protected", NewJwtMiddleware(verifier), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": c.Locals(constant.LocalsUser)})
	})

	tests := []struct {
		name   string
		header string
		status int
		key    string
		want   string
	}{
		{"missing", "", fiber.StatusUnauthorized, "message", constant.MsgMissingToken},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized, "message", constant.MsgMissingToken},
		{"expired", "Bearer expired", fiber.StatusUnauthorized, "message", constant.MsgTokenExpired},
		{"invalid", "Bearer garbage", fiber.StatusUnauthorized, "message", constant.MsgInvalidToken},
		{"valid", "Bearer good", fiber.StatusOK, "user", "sam@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.want, decode(t, resp.Body)[tt.key])
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("kaboom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "short and stout", decode(t, resp.Body)["message"])

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", decode(t, resp.Body)["message"])
}
