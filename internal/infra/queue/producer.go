package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// ProgressionProducer publishes progression events for the consumer to apply.
type ProgressionProducer struct {
	ch channelPublisher
}

func NewProducer(ch *amqp.Channel) *ProgressionProducer {
	return &ProgressionProducer{ch: ch}
}

func (p *ProgressionProducer) PublishProgression(ctx context.Context, event entity.ProgressionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal progression event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.AssignmentID,
			Timestamp:    event.SentAt,
		},
	)
	if err != nil {
		return fmt.Errorf("publish progression event: %w", err)
	}
	return nil
}
