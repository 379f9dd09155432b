package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/infra/http/middleware"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

type DueDispatcher interface {
	DispatchDue(ctx context.Context) (*usecase.DispatchReport, error)
}

// ScheduledEmailWorker fires due scheduled emails on a fixed tick.
type ScheduledEmailWorker struct {
	dispatcher   DueDispatcher
	tickInterval time.Duration
	logger       *zap.Logger
}

func NewScheduledEmailWorker(d DueDispatcher, interval time.Duration, logger *zap.Logger) *ScheduledEmailWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ScheduledEmailWorker{dispatcher: d, tickInterval: interval, logger: logger}
}

func (w *ScheduledEmailWorker) Start(ctx context.Context) {
	w.logger.Info("scheduled email worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("scheduled email worker stopped")
			return
		case <-ticker.C:
			w.dispatch(ctx)
		}
	}
}

func (w *ScheduledEmailWorker) dispatch(ctx context.Context) {
	report, err := w.dispatcher.DispatchDue(ctx)
	if err != nil {
		w.logger.Error("failed to dispatch scheduled emails", zap.Error(err))
		middleware.RecordIntegrationError("scheduler")
		return
	}

	middleware.RecordScheduledDispatch("sent", report.Sent)
	middleware.RecordScheduledDispatch("failed", report.Failed)
	if report.Sent > 0 || report.Failed > 0 {
		w.logger.Info("scheduled emails dispatched",
			zap.Int("sent", report.Sent),
			zap.Int("failed", report.Failed),
		)
	}
}
