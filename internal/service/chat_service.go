package service

import (
	"context"
	"slices"
	"time"

	"chat-assistant-be/internal/dto"
	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/internal/pkg/validation"
	"chat-assistant-be/internal/repository/contract"
	"chat-assistant-be/pkg/ai/router"
	"chat-assistant-be/pkg/events"
	"chat-assistant-be/pkg/store"
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	SetPreferences(ctx context.Context, req *dto.PreferencesRequest) error
	GetSession(ctx context.Context, email string) (*dto.SessionResponse, error)
}

// HistoryMerger writes a finished turn to durable storage.
type HistoryMerger interface {
	Merge(ctx context.Context, identity, userText, botText string) error
}

type chatService struct {
	sessions       contract.SessionRepository
	router         *router.Router
	history        HistoryMerger
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewChatService(
	sessions contract.SessionRepository,
	router *router.Router,
	history HistoryMerger,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		sessions:       sessions,
		router:         router,
		history:        history,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Chat answers one message. Turns for the same email run one at a time; the
// reply is returned even when persisting the transcript fails.
func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	if err := validation.Struct(req); err != nil {
		if slices.Contains(validation.FailedFields(err), "Message") {
			return nil, ErrMessageRequired
		}
		return nil, ErrInvalidRequest
	}

	start := time.Now()
	var (
		result    router.Result
		persisted bool
	)
	err := s.sessions.WithSession(ctx, req.Email, func(session *store.UserSession) error {
		result = s.router.Route(ctx, session, req.Message)
		session.RecordTurn(req.Message, result.Reply, s.sessions.MaxTurns())
		persisted = s.persist(ctx, req.Email, req.Message, result.Reply)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CHAT", "Turn completed", map[string]interface{}{
		"identity":    req.Email,
		"intent":      string(result.Intent),
		"language":    string(result.Language),
		"persisted":   persisted,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if s.eventPublisher != nil {
		event := events.NewChatTurnCompleted(req.Email, string(result.Intent), string(result.Language), persisted)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("CHAT", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.ChatResponse{Response: result.Reply}, nil
}

func (s *chatService) persist(ctx context.Context, identity, userText, botText string) bool {
	if s.history == nil {
		return false
	}
	if err := s.history.Merge(ctx, identity, userText, botText); err != nil {
		s.logger.Warn("CHAT", "Failed to persist history", map[string]interface{}{
			"identity": identity,
			"error":    err.Error(),
		})
		return false
	}
	return true
}

func (s *chatService) SetPreferences(ctx context.Context, req *dto.PreferencesRequest) error {
	if err := validation.Struct(req); err != nil {
		return ErrInvalidRequest
	}
	return s.sessions.SetPreferences(ctx, req.Email, req.Preferences)
}

func (s *chatService) GetSession(ctx context.Context, email string) (*dto.SessionResponse, error) {
	if email == "" {
		return nil, ErrInvalidRequest
	}
	session, err := s.sessions.GetOrCreate(ctx, email)
	if err != nil {
		return nil, err
	}

	history := make([]dto.UtteranceDTO, len(session.History))
	for i, u := range session.History {
		history[i] = dto.UtteranceDTO{Speaker: string(u.Speaker), Text: u.Text, At: u.At}
	}
	prefs := session.Preferences
	if prefs == nil {
		prefs = []string{}
	}

	return &dto.SessionResponse{
		Email:        session.Identity,
		Name:         session.Name,
		Preferences:  prefs,
		History:      history,
		LastQuestion: session.LastQuestion,
	}, nil
}
