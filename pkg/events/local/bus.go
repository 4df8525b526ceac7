// Package local runs the event bus in process when no broker is configured.
package local

import (
	"context"
	"fmt"

	"chat-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Bus struct {
	pubSub *gochannel.GoChannel
	topic  string
}

var _ events.Publisher = (*Bus)(nil)

func NewBus(topic string, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger),
		topic:  topic,
	}
}

func (b *Bus) Publish(ctx context.Context, event events.Event) error {
	payload, err := events.Encode(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.pubSub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event to topic %s: %w", b.topic, err)
	}
	return nil
}

// Subscribe delivers every event on the bus topic to handler until ctx ends
// or the bus is closed. Messages are acked whether or not handler fails.
func (b *Bus) Subscribe(ctx context.Context, handler events.Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, b.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			event, err := events.Decode(msg.Payload)
			if err == nil {
				_ = handler(msg.Context(), event)
			}
			msg.Ack()
		}
	}()

	return nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
