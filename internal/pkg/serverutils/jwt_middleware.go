package serverutils

import (
	"errors"
	"strings"

	"chat-assistant-be/internal/constant"
	"chat-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier resolves a bearer token to the email it was issued to.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (string, error)
}

// NewJwtMiddleware rejects requests without a valid bearer token and stores
// the token's user claim in Locals under constant.LocalsUser.
func NewJwtMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": constant.MsgMissingToken})
		}

		email, err := verifier.VerifyToken(strings.TrimSpace(tokenStr))
		if err != nil {
			msg := constant.MsgInvalidToken
			if errors.Is(err, service.ErrTokenExpired) {
				msg = constant.MsgTokenExpired
			}
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": msg})
		}

		ctx.Locals(constant.LocalsUser, email)
		return ctx.Next()
	}
}
