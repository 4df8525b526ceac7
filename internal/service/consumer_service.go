package service

import (
	"context"

	"chat-assistant-be/internal/pkg/logger"
	"chat-assistant-be/pkg/events"
)

// EventSource delivers bus events to a handler in the background.
type EventSource interface {
	Subscribe(ctx context.Context, handler events.Handler) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService copies every bus event into the audit log.
type consumerService struct {
	source EventSource
	audit  logger.ILogger
}

func NewConsumerService(source EventSource, audit logger.ILogger) IConsumerService {
	return &consumerService{source: source, audit: audit}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	return cs.source.Subscribe(ctx, cs.processEvent)
}

func (cs *consumerService) processEvent(_ context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()

	cs.audit.Info("EVENTS", event.EventType(), details)
	return nil
}
