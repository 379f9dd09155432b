package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

const cohortPageSize = entity.MaxPageSize

type BulkSendUseCase struct {
	Templates   entity.TemplateRepository
	Recruiters  entity.RecruiterRepository
	Assignments entity.AssignmentRepository
	Users       entity.UserRepositoryInterface
	Dispatcher  *Dispatcher
	Ledger      EmailSentMarker
	Usage       UsageRecorder
	Contacts    ContactMarker
	Logger      *zap.Logger
}

func NewBulkSendUseCase(
	templates entity.TemplateRepository,
	recruiters entity.RecruiterRepository,
	assignments entity.AssignmentRepository,
	users entity.UserRepositoryInterface,
	dispatcher *Dispatcher,
	ledger EmailSentMarker,
	usage UsageRecorder,
	contacts ContactMarker,
	logger *zap.Logger,
) *BulkSendUseCase {
	return &BulkSendUseCase{
		Templates:   templates,
		Recruiters:  recruiters,
		Assignments: assignments,
		Users:       users,
		Dispatcher:  dispatcher,
		Ledger:      ledger,
		Usage:       usage,
		Contacts:    contacts,
		Logger:      logger,
	}
}

// recipient is one cohort member. recruiter is nil when the id did not resolve.
type recipient struct {
	recruiterID string
	recruiter   *entity.Recruiter
	assignment  *entity.Assignment
	missing     string
}

// Execute sends the template to every cohort member, one at a time. The
// cohort is read once up front. A failed recipient is counted and skipped,
// it never stops the batch.
func (uc *BulkSendUseCase) Execute(ctx context.Context, ownerID string, input BulkSendInput) (*BulkSendSummary, error) {
	tpl, err := uc.Templates.FindByID(ctx, ownerID, input.TemplateID)
	if err != nil {
		return nil, lookupFailed("find template", err, entity.ErrTemplateNotFound, input.TemplateID)
	}
	if tpl.Status != entity.TemplateActive {
		return nil, invalidField("templateId", "only ACTIVE templates can be sent")
	}

	subject, body := tpl.Subject, tpl.Body
	if strings.TrimSpace(input.Subject) != "" {
		subject = input.Subject
	}
	if strings.TrimSpace(input.Body) != "" {
		body = input.Body
	}
	var errs []ValidationError
	errs = append(errs, ValidatePlaceholders("subject", subject)...)
	errs = append(errs, ValidatePlaceholders("body", body)...)
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	cohort, err := uc.snapshot(ctx, ownerID, tpl.ID, input.Cohort)
	if err != nil {
		return nil, err
	}

	summary := &BulkSendSummary{Total: len(cohort), Scheduled: input.ScheduleTime != nil}
	if len(cohort) == 0 {
		return summary, nil
	}

	myName := uc.senderName(ctx, ownerID)

	for _, rc := range cohort {
		failure := BulkSendFailure{RecruiterID: rc.recruiterID}
		if rc.assignment != nil {
			failure.AssignmentID = rc.assignment.ID
		}

		if rc.recruiter == nil {
			failure.Reason = rc.missing
			summary.FailureCount++
			summary.Failures = append(summary.Failures, failure)
			continue
		}
		failure.Email = rc.recruiter.Email
		if strings.TrimSpace(rc.recruiter.Email) == "" {
			failure.Reason = "recipient has no email address"
			summary.FailureCount++
			summary.Failures = append(summary.Failures, failure)
			continue
		}

		values := RecruiterContext(rc.recruiter, myName)
		msg := entity.OutgoingEmail{
			To:      rc.recruiter.Email,
			Subject: Resolve(subject, values),
			Body:    Resolve(body, values),
			IsHTML:  input.IsHTML,
		}
		refs := DispatchRefs{TemplateID: tpl.ID, RecruiterID: rc.recruiter.ID}
		if rc.assignment != nil {
			refs.AssignmentID = rc.assignment.ID
		}

		res, err := uc.Dispatcher.Dispatch(ctx, ownerID, msg, input.ScheduleTime, refs)
		if err != nil {
			failure.Reason = err.Error()
			summary.FailureCount++
			summary.Failures = append(summary.Failures, failure)
			continue
		}
		summary.SuccessCount++

		// A scheduled message has not been sent yet; the dispatcher worker
		// does the bookkeeping when it fires.
		if res.Scheduled {
			continue
		}
		if rc.assignment != nil {
			if err := uc.Ledger.MarkEmailSent(ctx, ownerID, rc.assignment.ID); err != nil {
				uc.Logger.Warn("failed to mark email sent",
					zap.String("assignment_id", rc.assignment.ID),
					zap.Error(err),
				)
			}
		}
		if uc.Contacts != nil {
			if _, err := uc.Contacts.MarkAsContacted(ctx, ownerID, rc.recruiter.ID); err != nil {
				uc.Logger.Warn("failed to mark recruiter contacted",
					zap.String("recruiter_id", rc.recruiter.ID),
					zap.Error(err),
				)
			}
		}
	}

	if uc.Usage != nil && summary.SuccessCount > 0 && !summary.Scheduled {
		uc.Usage.RecordSend(ctx, ownerID, tpl.ID, int64(summary.SuccessCount))
	}

	uc.Logger.Info("bulk send finished",
		zap.String("owner_id", ownerID),
		zap.String("template_id", tpl.ID),
		zap.Int("total", summary.Total),
		zap.Int("success", summary.SuccessCount),
		zap.Int("failure", summary.FailureCount),
		zap.Bool("scheduled", summary.Scheduled),
	)
	return summary, nil
}

func (uc *BulkSendUseCase) snapshot(ctx context.Context, ownerID, templateID string, cohort Cohort) ([]recipient, error) {
	// A non-nil id list selects by recruiter, even when empty.
	if cohort.RecruiterIDs != nil {
		return uc.snapshotByIDs(ctx, ownerID, templateID, cohort.RecruiterIDs)
	}
	if cohort.Start.IsZero() || cohort.End.IsZero() {
		return nil, invalidField("cohort", "either a date range or recruiter ids is required")
	}
	return uc.snapshotByRange(ctx, ownerID, templateID, cohort)
}

func (uc *BulkSendUseCase) snapshotByRange(ctx context.Context, ownerID, templateID string, cohort Cohort) ([]recipient, error) {
	from, to, err := dayRange(cohort.Start, cohort.End)
	if err != nil {
		return nil, err
	}

	var assignments []*entity.Assignment
	for page := 0; ; page++ {
		res, err := uc.Assignments.ListActiveInRange(ctx, ownerID, templateID, from, to,
			entity.PageRequest{Page: page, Size: cohortPageSize})
		if err != nil {
			return nil, databaseError("load bulk send cohort", err)
		}
		assignments = append(assignments, res.Content...)
		if len(res.Content) < cohortPageSize || page+1 >= res.TotalPages {
			break
		}
	}

	out := make([]recipient, 0, len(assignments))
	for _, a := range assignments {
		rc := recipient{recruiterID: a.RecruiterID, assignment: a}
		r, err := uc.Recruiters.FindByID(ctx, ownerID, a.RecruiterID)
		if err != nil {
			rc.missing = "recruiter not found"
		} else {
			rc.recruiter = r
		}
		out = append(out, rc)
	}
	return out, nil
}

func (uc *BulkSendUseCase) snapshotByIDs(ctx context.Context, ownerID, templateID string, ids []string) ([]recipient, error) {
	out := make([]recipient, 0, len(ids))
	for _, id := range ids {
		rc := recipient{recruiterID: id}
		r, err := uc.Recruiters.FindByID(ctx, ownerID, id)
		if err != nil {
			rc.missing = "recruiter not found"
			out = append(out, rc)
			continue
		}
		rc.recruiter = r

		a, err := uc.Assignments.FindActive(ctx, ownerID, id, templateID)
		switch {
		case err == nil:
			rc.assignment = a
		case !errors.Is(err, entity.ErrAssignmentNotFound):
			return nil, databaseError("load bulk send cohort", err)
		}
		out = append(out, rc)
	}
	return out, nil
}

func (uc *BulkSendUseCase) senderName(ctx context.Context, ownerID string) string {
	if uc.Users == nil {
		return ""
	}
	u, err := uc.Users.FindByID(ctx, ownerID)
	if err != nil {
		uc.Logger.Debug("sender name unavailable", zap.String("owner_id", ownerID), zap.Error(err))
		return ""
	}
	return u.Name
}
