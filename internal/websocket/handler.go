package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"chat-assistant-be/internal/constant"
	"chat-assistant-be/internal/dto"
	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type errorFrame struct {
	Error string `json:"error"`
}

// FrameHandler turns one JSON chat request frame into one JSON reply frame.
type FrameHandler struct {
	chat   service.IChatService
	logger logger.ILogger
}

func NewFrameHandler(chat service.IChatService, log logger.ILogger) *FrameHandler {
	return &FrameHandler{chat: chat, logger: log}
}

// Handle answers raw. A frame without an email uses the connection identity.
func (h *FrameHandler) Handle(ctx context.Context, identity string, raw []byte) []byte {
	var req dto.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return encode(errorFrame{Error: constant.MsgInvalidRequest})
	}
	if req.Email == "" {
		req.Email = identity
	}

	res, err := h.chat.Chat(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrMessageRequired) {
			return encode(errorFrame{Error: constant.MsgNoMessage})
		}
		h.logger.Error("WS", "Chat turn failed", map[string]interface{}{
			"identity": req.Email,
			"error":    err.Error(),
		})
		return encode(errorFrame{Error: constant.MsgInvalidRequest})
	}
	return encode(res)
}

func encode(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}

// RequireUpgrade rejects plain HTTP requests on the websocket route.
func RequireUpgrade(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		ctx.Locals("identity", ctx.Query("email"))
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// NewChatHandler serves chat over a websocket. The connection identity comes
// from the email query parameter.
func NewChatHandler(chat service.IChatService, log logger.ILogger) fiber.Handler {
	frames := NewFrameHandler(chat, log)
	return websocket.New(func(conn *websocket.Conn) {
		identity, _ := conn.Locals("identity").(string)
		ServeWs(conn, identity, frames, log)
	})
}

// ServeWs runs the connection until the peer goes away.
func ServeWs(conn *websocket.Conn, identity string, frames *FrameHandler, log logger.ILogger) {
	serve(conn, identity, frames, log)
}

func serve(conn frameConn, identity string, frames *FrameHandler, log logger.ILogger) {
	client := &Client{
		Conn:     conn,
		Identity: identity,
		Send:     make(chan []byte, 16),
		handler:  frames,
		logger:   log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.writePump(cancel)
	client.readPump(ctx)
}
