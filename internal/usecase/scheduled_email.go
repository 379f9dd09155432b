package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

const dueBatchSize = 50

type ScheduledEmailUseCase struct {
	Repo        entity.ScheduledEmailRepository
	Dispatcher  *Dispatcher
	Ledger      EmailSentMarker
	Usage       UsageRecorder
	Progression ProgressionPublisher
	Logger      *zap.Logger
}

func NewScheduledEmailUseCase(
	repo entity.ScheduledEmailRepository,
	dispatcher *Dispatcher,
	ledger EmailSentMarker,
	usage UsageRecorder,
	progression ProgressionPublisher,
	logger *zap.Logger,
) *ScheduledEmailUseCase {
	return &ScheduledEmailUseCase{
		Repo:        repo,
		Dispatcher:  dispatcher,
		Ledger:      ledger,
		Usage:       usage,
		Progression: progression,
		Logger:      logger,
	}
}

func (uc *ScheduledEmailUseCase) List(ctx context.Context, ownerID string, page entity.PageRequest) (*entity.Page[*entity.ScheduledEmail], error) {
	res, err := uc.Repo.List(ctx, ownerID, page.Normalize())
	if err != nil {
		return nil, databaseError("list scheduled emails", err)
	}
	return res, nil
}

// Cancel stops a SCHEDULED email from firing.
func (uc *ScheduledEmailUseCase) Cancel(ctx context.Context, ownerID, id string) error {
	s, err := uc.Repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return lookupFailed("find scheduled email", err, entity.ErrScheduledEmailNotFound, id)
	}
	if s.Status != entity.EmailScheduled {
		return invalidField("status", "only SCHEDULED emails can be cancelled")
	}
	if err := uc.Repo.Cancel(ctx, ownerID, id); err != nil {
		return lookupFailed("cancel scheduled email", err, entity.ErrScheduledEmailNotFound, id)
	}
	return nil
}

type DispatchReport struct {
	Sent   int
	Failed int
}

// DispatchDue sends every SCHEDULED email whose time has come. Single
// template sends tied to an assignment run the progression rule once sent.
func (uc *ScheduledEmailUseCase) DispatchDue(ctx context.Context) (*DispatchReport, error) {
	due, err := uc.Repo.FindDue(ctx, uc.Dispatcher.Now(), dueBatchSize)
	if err != nil {
		return nil, databaseError("find due scheduled emails", err)
	}

	report := &DispatchReport{}
	for _, s := range due {
		if ctx.Err() != nil {
			break
		}
		refs := DispatchRefs{TemplateID: s.TemplateID, RecruiterID: s.RecruiterID, AssignmentID: s.AssignmentID}
		messageID, err := uc.Dispatcher.SendNow(ctx, s.OwnerID, s.Message(), refs)
		if err != nil {
			report.Failed++
			if markErr := uc.Repo.MarkFailed(ctx, s.ID, err.Error()); markErr != nil {
				uc.Logger.Error("failed to mark scheduled email failed",
					zap.String("scheduled_email_id", s.ID),
					zap.Error(markErr),
				)
			}
			continue
		}

		report.Sent++
		if err := uc.Repo.MarkSent(ctx, s.ID, messageID, uc.Dispatcher.Now()); err != nil {
			uc.Logger.Error("failed to mark scheduled email sent",
				zap.String("scheduled_email_id", s.ID),
				zap.Error(err),
			)
		}
		if s.AssignmentID != "" && uc.Ledger != nil {
			if err := uc.Ledger.MarkEmailSent(ctx, s.OwnerID, s.AssignmentID); err != nil {
				uc.Logger.Warn("failed to mark email sent",
					zap.String("assignment_id", s.AssignmentID),
					zap.Error(err),
				)
			}
		}
		if uc.Usage != nil {
			uc.Usage.RecordSend(ctx, s.OwnerID, s.TemplateID, 1)
		}
		if s.Progress {
			uc.progress(ctx, s)
		}
	}

	if report.Sent+report.Failed > 0 {
		uc.Logger.Info("scheduled emails dispatched",
			zap.Int("sent", report.Sent),
			zap.Int("failed", report.Failed),
		)
	}
	return report, nil
}

func (uc *ScheduledEmailUseCase) progress(ctx context.Context, s *entity.ScheduledEmail) {
	if uc.Progression == nil || s.AssignmentID == "" {
		return
	}
	event := entity.ProgressionEvent{
		OwnerID:      s.OwnerID,
		AssignmentID: s.AssignmentID,
		TemplateID:   s.TemplateID,
		RecruiterID:  s.RecruiterID,
		SentAt:       uc.Dispatcher.Now(),
	}
	if err := uc.Progression.PublishProgression(ctx, event); err != nil {
		uc.Logger.Warn("failed to publish outreach progression",
			zap.String("scheduled_email_id", s.ID),
			zap.String("assignment_id", s.AssignmentID),
			zap.Error(err),
		)
	}
}
