package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
	"github.com/xavierca1/ecold-outreach/internal/infra/http/middleware"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

// Worker consumes progression events and moves each assignment to its
// follow-up template. Every delivery is acked or dead-lettered, never requeued.
type Worker struct {
	Channel *amqp.Channel
	Mover   usecase.FollowupMover
	Logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, mover usecase.FollowupMover, logger *zap.Logger) *Worker {
	return &Worker{Channel: ch, Mover: mover, Logger: logger}
}

// Start blocks until ctx is cancelled or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.Logger.Info("progression worker waiting", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("progression worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queueName)
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event entity.ProgressionEvent
	if err := json.Unmarshal(d.Body, &event); err != nil || event.AssignmentID == "" || event.OwnerID == "" {
		w.Logger.Error("malformed progression event", zap.ByteString("body", d.Body), zap.Error(err))
		middleware.RecordProgression("malformed")
		_ = d.Nack(false, false)
		return
	}

	if !usecase.Progress(ctx, w.Mover, event, w.Logger) {
		middleware.RecordProgression("failed")
		_ = d.Nack(false, false)
		return
	}
	middleware.RecordProgression("moved")
	_ = d.Ack(false)
}
