package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"chat-assistant-be/internal/config"
	"chat-assistant-be/internal/controller"
	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/internal/pkg/serverutils"
	"chat-assistant-be/internal/repository/contract"
	"chat-assistant-be/internal/repository/memory"
	"chat-assistant-be/internal/repository/redisstore"
	"chat-assistant-be/internal/repository/unitofwork"
	"chat-assistant-be/internal/service"
	"chat-assistant-be/internal/websocket"
	"chat-assistant-be/pkg/ai/history"
	"chat-assistant-be/pkg/ai/response"
	"chat-assistant-be/pkg/ai/router"
	"chat-assistant-be/pkg/events"
	"chat-assistant-be/pkg/events/local"
	"chat-assistant-be/pkg/llm/factory"

	pktNats "chat-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	AuthController controller.IAuthController
	ChatController controller.IChatController

	// Middleware and socket handlers
	JwtMiddleware fiber.Handler
	ChatSocket    []fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.EventLogFilePath)

	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = auditLogger.Sync() }, func() { _ = sysLogger.Sync() })

	// 2. Event Bus
	publisher, source := c.newEventBus(cfg, sysLogger)

	// 3. Session Storage
	sessions, err := c.newSessionRepository(ctx, cfg, sysLogger)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 4. Completion backend
	apiKey := cfg.Keys.Cohere
	switch strings.ToLower(cfg.Ai.Provider) {
	case "huggingface":
		apiKey = cfg.Keys.HuggingFace
	case "gemini":
		apiKey = cfg.Keys.GoogleGemini
	}
	llmProvider, err := factory.NewLLMProvider(ctx, factory.Config{
		Provider: cfg.Ai.Provider,
		Model:    cfg.Ai.Model,
		BaseURL:  cfg.Ai.BaseURL,
		APIKey:   apiKey,
		Timeout:  cfg.Ai.Timeout,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.Provider,
		"model":    cfg.Ai.Model,
	})

	generator := response.NewGenerator(llmProvider, response.Config{
		Model:     cfg.Ai.Model,
		MaxTokens: cfg.Ai.MaxTokens,
		Policy:    response.ParseFailurePolicy(cfg.Ai.FailurePolicy),
		Timeout:   cfg.Ai.Timeout,
	}, sysLogger)

	// 5. Services
	chatService := service.NewChatService(
		sessions,
		router.NewRouter(generator, sysLogger),
		history.NewPersister(uowFactory, sysLogger),
		publisher,
		sysLogger,
	)
	authService := service.NewAuthService(uowFactory, service.AuthConfig{
		Secret:   cfg.Auth.SecretKey,
		TokenTTL: cfg.Auth.TokenTTL,
	}, publisher, sysLogger)

	// 6. Controllers
	c.AuthController = controller.NewAuthController(authService)
	c.ChatController = controller.NewChatController(chatService)
	c.JwtMiddleware = serverutils.NewJwtMiddleware(authService)
	c.ChatSocket = []fiber.Handler{websocket.RequireUpgrade, websocket.NewChatHandler(chatService, sysLogger)}
	c.ConsumerService = service.NewConsumerService(source, auditLogger)

	return c, nil
}

// newEventBus prefers NATS when configured and falls back to the in-process bus.
func (c *Container) newEventBus(cfg *config.Config, log logger.ILogger) (events.Publisher, service.EventSource) {
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err == nil {
			natsSub, subErr := pktNats.NewSubscriber(cfg.App.NatsURL)
			if subErr == nil {
				c.closers = append(c.closers, natsSub.Close, natsPub.Close)
				log.Info("BOOTSTRAP", "Using NATS event bus", map[string]interface{}{"url": cfg.App.NatsURL})
				return natsPub, natsSub.Durable("chat-audit")
			}
			natsPub.Close()
			err = subErr
		}
		log.Warn("BOOTSTRAP", "Failed to connect to NATS, using in-process bus", map[string]interface{}{"error": err.Error()})
	}

	bus := local.NewBus(cfg.App.EventTopic, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = bus.Close() })
	return bus, bus
}

func (c *Container) newSessionRepository(ctx context.Context, cfg *config.Config, log logger.ILogger) (contract.SessionRepository, error) {
	if !strings.EqualFold(cfg.Session.Backend, "redis") {
		return memory.NewSessionRepository(cfg.Session.MaxTurns), nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	log.Info("BOOTSTRAP", "Using Redis session store", map[string]interface{}{"max_turns": cfg.Session.MaxTurns})
	return redisstore.NewSessionRepository(rdb, cfg.Session.MaxTurns), nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
