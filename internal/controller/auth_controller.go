package controller

import (
	"errors"

	"chat-assistant-be/internal/constant"
	"chat-assistant-be/internal/dto"
	"chat-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, protected fiber.Handler)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Protected(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Get("/protected", protected, c.Protected)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": constant.MsgInvalidRequest})
	}

	if err := c.service.Register(ctx.UserContext(), &req); err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": constant.MsgUserExists})
		case errors.Is(err, service.ErrInvalidRequest):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return err
		}
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"message": constant.MsgUserRegistered})
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": constant.MsgInvalidRequest})
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": constant.MsgInvalidCredentials})
		}
		return err
	}

	return ctx.JSON(res)
}

func (c *authController) Protected(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"message": constant.MsgAccessGranted})
}
