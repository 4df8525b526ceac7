package controller

import (
	"errors"

	"chat-assistant-be/internal/constant"
	"chat-assistant-be/internal/dto"
	"chat-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, ws ...fiber.Handler)
	Chat(ctx *fiber.Ctx) error
	SetPreferences(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

// RegisterRoutes mounts the chat API. ws, when given, serves /chat/ws.
func (c *chatController) RegisterRoutes(r fiber.Router, ws ...fiber.Handler) {
	h := r.Group("/chat")
	h.Post("/", c.Chat)
	h.Put("/preferences", c.SetPreferences)
	h.Get("/session", c.GetSession)
	if len(ws) > 0 {
		h.Get("/ws", ws...)
	}
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": constant.MsgInvalidRequest})
	}

	res, err := c.service.Chat(ctx.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageRequired):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": constant.MsgNoMessage})
		case errors.Is(err, service.ErrInvalidRequest):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": constant.MsgInvalidRequest})
		default:
			return err
		}
	}

	return ctx.JSON(res)
}

func (c *chatController) SetPreferences(ctx *fiber.Ctx) error {
	var req dto.PreferencesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": constant.MsgInvalidRequest})
	}

	if err := c.service.SetPreferences(ctx.UserContext(), &req); err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": constant.MsgInvalidRequest})
		}
		return err
	}

	return ctx.JSON(fiber.Map{"message": constant.MsgPreferencesSaved})
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), ctx.Query("email"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": constant.MsgEmailRequired})
		}
		return err
	}
	return ctx.JSON(res)
}
