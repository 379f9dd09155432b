package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type SendEmailUseCase struct {
	Templates   entity.TemplateRepository
	Recruiters  entity.RecruiterRepository
	Assignments entity.AssignmentRepository
	Users       entity.UserRepositoryInterface
	Dispatcher  *Dispatcher
	Ledger      EmailSentMarker
	Usage       UsageRecorder
	Contacts    ContactMarker
	Progression ProgressionPublisher
	Logger      *zap.Logger
}

func NewSendEmailUseCase(
	templates entity.TemplateRepository,
	recruiters entity.RecruiterRepository,
	assignments entity.AssignmentRepository,
	users entity.UserRepositoryInterface,
	dispatcher *Dispatcher,
	ledger EmailSentMarker,
	usage UsageRecorder,
	contacts ContactMarker,
	progression ProgressionPublisher,
	logger *zap.Logger,
) *SendEmailUseCase {
	return &SendEmailUseCase{
		Templates:   templates,
		Recruiters:  recruiters,
		Assignments: assignments,
		Users:       users,
		Dispatcher:  dispatcher,
		Ledger:      ledger,
		Usage:       usage,
		Contacts:    contacts,
		Progression: progression,
		Logger:      logger,
	}
}

// Send delivers a free-form message.
func (uc *SendEmailUseCase) Send(ctx context.Context, ownerID string, input SendEmailInput) (*EmailResponse, error) {
	var errs []ValidationError
	if !isValidEmail(input.To) {
		errs = append(errs, ValidationError{"to", "is invalid"})
	}
	if strings.TrimSpace(input.Subject) == "" {
		errs = append(errs, ValidationError{"subject", "is required"})
	}
	if strings.TrimSpace(input.Body) == "" {
		errs = append(errs, ValidationError{"body", "is required"})
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	msg := entity.OutgoingEmail{
		To:      strings.TrimSpace(input.To),
		Subject: input.Subject,
		Body:    input.Body,
		IsHTML:  input.IsHTML,
	}
	res, err := uc.Dispatcher.Dispatch(ctx, ownerID, msg, input.ScheduleTime, DispatchRefs{})
	if err != nil {
		return nil, err
	}
	return dispatchResponse(res), nil
}

// SendTemplate resolves a template for one recruiter and sends it. When the
// send is tied to an assignment it is counted on the ledger and the
// assignment is handed to the progression rule. Everything after the
// transport call is best effort.
func (uc *SendEmailUseCase) SendTemplate(ctx context.Context, ownerID string, input SendTemplateInput) (*EmailResponse, error) {
	if input.TemplateID == "" || input.RecruiterID == "" {
		var errs []ValidationError
		if input.TemplateID == "" {
			errs = append(errs, ValidationError{"templateId", "is required"})
		}
		if input.RecruiterID == "" {
			errs = append(errs, ValidationError{"recruiterId", "is required"})
		}
		return nil, validationFailed(errs)
	}

	tpl, err := uc.Templates.FindByID(ctx, ownerID, input.TemplateID)
	if err != nil {
		return nil, lookupFailed("find template", err, entity.ErrTemplateNotFound, input.TemplateID)
	}
	if tpl.Status != entity.TemplateActive {
		return nil, invalidField("templateId", "only ACTIVE templates can be sent")
	}
	recruiter, err := uc.Recruiters.FindByID(ctx, ownerID, input.RecruiterID)
	if err != nil {
		return nil, lookupFailed("find recruiter", err, entity.ErrRecruiterNotFound, input.RecruiterID)
	}
	if input.AssignmentID != "" {
		a, err := uc.Assignments.FindByID(ctx, ownerID, input.AssignmentID)
		if err != nil {
			return nil, lookupFailed("find assignment", err, entity.ErrAssignmentNotFound, input.AssignmentID)
		}
		if a.RecruiterID != recruiter.ID {
			return nil, invalidField("assignmentId", "does not belong to this recruiter")
		}
	}

	myName := ""
	if uc.Users != nil {
		if u, err := uc.Users.FindByID(ctx, ownerID); err == nil {
			myName = u.Name
		}
	}
	values := RecruiterContext(recruiter, myName)
	msg := entity.OutgoingEmail{
		To:      recruiter.Email,
		Subject: Resolve(tpl.Subject, values),
		Body:    Resolve(tpl.Body, values),
		IsHTML:  input.IsHTML,
	}
	refs := DispatchRefs{TemplateID: tpl.ID, RecruiterID: recruiter.ID, AssignmentID: input.AssignmentID, Progress: true}

	res, err := uc.Dispatcher.Dispatch(ctx, ownerID, msg, input.ScheduleTime, refs)
	if err != nil {
		return nil, err
	}
	if res.Scheduled {
		return dispatchResponse(res), nil
	}

	if uc.Usage != nil {
		uc.Usage.RecordSend(ctx, ownerID, tpl.ID, 1)
	}
	if uc.Contacts != nil {
		if _, err := uc.Contacts.MarkAsContacted(ctx, ownerID, recruiter.ID); err != nil {
			uc.Logger.Warn("failed to mark recruiter contacted",
				zap.String("recruiter_id", recruiter.ID),
				zap.Error(err),
			)
		}
	}
	if input.AssignmentID != "" {
		uc.progress(ctx, ownerID, tpl.ID, recruiter.ID, input.AssignmentID)
	}

	return dispatchResponse(res), nil
}

// ListLogs returns the owner's delivery history, newest first.
func (uc *SendEmailUseCase) ListLogs(ctx context.Context, ownerID string, page entity.PageRequest) (*entity.Page[*entity.EmailLog], error) {
	res, err := uc.Dispatcher.Logs.List(ctx, ownerID, page.Normalize())
	if err != nil {
		return nil, databaseError("list email logs", err)
	}
	return res, nil
}

func (uc *SendEmailUseCase) progress(ctx context.Context, ownerID, templateID, recruiterID, assignmentID string) {
	if err := uc.Ledger.MarkEmailSent(ctx, ownerID, assignmentID); err != nil {
		uc.Logger.Warn("failed to mark email sent",
			zap.String("assignment_id", assignmentID),
			zap.Error(err),
		)
	}
	if uc.Progression == nil {
		return
	}
	event := entity.ProgressionEvent{
		OwnerID:      ownerID,
		AssignmentID: assignmentID,
		TemplateID:   templateID,
		RecruiterID:  recruiterID,
		SentAt:       time.Now(),
	}
	if err := uc.Progression.PublishProgression(ctx, event); err != nil {
		uc.Logger.Warn("failed to publish outreach progression",
			zap.String("assignment_id", assignmentID),
			zap.Error(err),
		)
	}
}

func dispatchResponse(res *DispatchResult) *EmailResponse {
	if res.Scheduled {
		return &EmailResponse{
			Success:   true,
			Message:   "Email scheduled successfully",
			MessageID: res.ScheduledEmailID,
			Scheduled: true,
		}
	}
	return &EmailResponse{
		Success:   true,
		Message:   "Email sent successfully",
		MessageID: res.MessageID,
	}
}
