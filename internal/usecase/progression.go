package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

// AsyncProgression advances assignments in-process on a background goroutine.
// It is used when no message broker is configured.
type AsyncProgression struct {
	Mover   FollowupMover
	Logger  *zap.Logger
	Timeout time.Duration
}

func NewAsyncProgression(mover FollowupMover, logger *zap.Logger) *AsyncProgression {
	return &AsyncProgression{Mover: mover, Logger: logger, Timeout: 30 * time.Second}
}

func (p *AsyncProgression) PublishProgression(_ context.Context, event entity.ProgressionEvent) error {
	go func() {
		// The request context is gone by the time this runs.
		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		defer cancel()
		Progress(ctx, p.Mover, event, p.Logger)
	}()
	return nil
}

// Progress runs one progression event and logs the outcome. Errors are not
// returned: the email has already left and cannot be recalled.
func Progress(ctx context.Context, mover FollowupMover, event entity.ProgressionEvent, logger *zap.Logger) bool {
	move, err := mover.MoveToFollowup(ctx, event.OwnerID, event.AssignmentID)
	if err != nil {
		logger.Warn("outreach progression failed",
			zap.String("owner_id", event.OwnerID),
			zap.String("assignment_id", event.AssignmentID),
			zap.Error(err),
		)
		return false
	}
	fields := []zap.Field{
		zap.String("owner_id", event.OwnerID),
		zap.String("assignment_id", event.AssignmentID),
	}
	if move.Followup != nil {
		fields = append(fields, zap.String("followup_template_id", move.Followup.TemplateID))
	}
	logger.Info("outreach progression applied", fields...)
	return true
}
