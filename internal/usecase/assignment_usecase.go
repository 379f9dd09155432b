package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

const DateLayout = "2006-01-02"

type AssignmentUseCase struct {
	Repo       entity.AssignmentRepository
	Templates  entity.TemplateRepository
	Recruiters entity.RecruiterRepository
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewAssignmentUseCase(
	repo entity.AssignmentRepository,
	templates entity.TemplateRepository,
	recruiters entity.RecruiterRepository,
	logger *zap.Logger,
) *AssignmentUseCase {
	return &AssignmentUseCase{
		Repo:       repo,
		Templates:  templates,
		Recruiters: recruiters,
		Logger:     logger,
		Now:        time.Now,
	}
}

// Assign binds a recruiter to a template for the current week. An existing
// ACTIVE assignment for the pair is returned as is.
func (uc *AssignmentUseCase) Assign(ctx context.Context, ownerID, recruiterID, templateID string) (*entity.Assignment, error) {
	tpl, err := uc.Templates.FindByID(ctx, ownerID, templateID)
	if err != nil {
		return nil, lookupFailed("find template", err, entity.ErrTemplateNotFound, templateID)
	}
	return uc.assign(ctx, ownerID, recruiterID, tpl)
}

func (uc *AssignmentUseCase) assign(ctx context.Context, ownerID, recruiterID string, tpl *entity.Template) (*entity.Assignment, error) {
	if tpl.Status == entity.TemplateArchived {
		return nil, invalidField("templateId", "template is archived")
	}
	if _, err := uc.Recruiters.FindByID(ctx, ownerID, recruiterID); err != nil {
		return nil, lookupFailed("find recruiter", err, entity.ErrRecruiterNotFound, recruiterID)
	}

	existing, err := uc.Repo.FindActive(ctx, ownerID, recruiterID, tpl.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, entity.ErrAssignmentNotFound) {
		return nil, databaseError("find active assignment", err)
	}

	a := entity.NewAssignment(ownerID, recruiterID, tpl.ID, uc.Now())
	if err := uc.Repo.Create(ctx, a); err != nil {
		return nil, databaseError("create assignment", err)
	}
	return a, nil
}

// BulkAssign assigns each recruiter independently; failures are reported per id.
func (uc *AssignmentUseCase) BulkAssign(ctx context.Context, ownerID string, recruiterIDs []string, templateID string) (*BulkAssignOutput, error) {
	if len(recruiterIDs) == 0 {
		return nil, invalidField("recruiterIds", "must not be empty")
	}
	tpl, err := uc.Templates.FindByID(ctx, ownerID, templateID)
	if err != nil {
		return nil, lookupFailed("find template", err, entity.ErrTemplateNotFound, templateID)
	}

	out := &BulkAssignOutput{Assigned: []*entity.Assignment{}, Errors: map[string]string{}}
	seen := map[string]bool{}
	for _, id := range recruiterIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		a, err := uc.assign(ctx, ownerID, id, tpl)
		if err != nil {
			out.Errors[id] = err.Error()
			continue
		}
		out.Assigned = append(out.Assigned, a)
	}

	uc.Logger.Info("bulk assign finished",
		zap.String("owner_id", ownerID),
		zap.String("template_id", templateID),
		zap.Int("assigned", len(out.Assigned)),
		zap.Int("failed", len(out.Errors)),
	)
	return out, nil
}

func (uc *AssignmentUseCase) Get(ctx context.Context, ownerID, id string) (*entity.Assignment, error) {
	a, err := uc.Repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, lookupFailed("find assignment", err, entity.ErrAssignmentNotFound, id)
	}
	return a, nil
}

func (uc *AssignmentUseCase) ListByTemplate(ctx context.Context, ownerID, templateID string, page entity.PageRequest) (*entity.Page[*entity.Assignment], error) {
	res, err := uc.Repo.ListByTemplate(ctx, ownerID, templateID, page.Normalize())
	if err != nil {
		return nil, databaseError("list assignments", err)
	}
	uc.attachRecruiters(ctx, ownerID, res.Content)
	return res, nil
}

// GetByTemplateAndDateRange returns the ACTIVE assignments whose assignment
// day falls in [start, end], both inclusive.
func (uc *AssignmentUseCase) GetByTemplateAndDateRange(ctx context.Context, ownerID, templateID string, start, end time.Time, page entity.PageRequest) (*entity.Page[*entity.Assignment], error) {
	from, to, err := dayRange(start, end)
	if err != nil {
		return nil, err
	}
	if _, err := uc.Templates.FindByID(ctx, ownerID, templateID); err != nil {
		return nil, lookupFailed("find template", err, entity.ErrTemplateNotFound, templateID)
	}
	res, err := uc.Repo.ListActiveInRange(ctx, ownerID, templateID, from, to, page.Normalize())
	if err != nil {
		return nil, databaseError("list assignments in range", err)
	}
	uc.attachRecruiters(ctx, ownerID, res.Content)
	return res, nil
}

// DateRangeSummaries groups ACTIVE assignments by the Monday of their week, newest first.
func (uc *AssignmentUseCase) DateRangeSummaries(ctx context.Context, ownerID, templateID string) ([]WeekSummary, error) {
	if _, err := uc.Templates.FindByID(ctx, ownerID, templateID); err != nil {
		return nil, lookupFailed("find template", err, entity.ErrTemplateNotFound, templateID)
	}
	list, err := uc.Repo.ListActiveByTemplate(ctx, ownerID, templateID)
	if err != nil {
		return nil, databaseError("list active assignments", err)
	}
	return summarizeWeeks(list), nil
}

func summarizeWeeks(list []*entity.Assignment) []WeekSummary {
	counts := map[time.Time]int64{}
	for _, a := range list {
		counts[weekStart(a.AssignedAt)]++
	}
	starts := make([]time.Time, 0, len(counts))
	for s := range counts {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].After(starts[j]) })

	out := make([]WeekSummary, 0, len(starts))
	for _, s := range starts {
		e := s.AddDate(0, 0, 6)
		out = append(out, WeekSummary{
			StartDate:       s.Format(DateLayout),
			EndDate:         e.Format(DateLayout),
			RecruitersCount: counts[s],
			DateRangeLabel:  weekLabel(s, e),
		})
	}
	return out
}

// MarkEmailSent counts one successful send against the assignment.
func (uc *AssignmentUseCase) MarkEmailSent(ctx context.Context, ownerID, id string) error {
	if err := uc.Repo.IncrementEmailsSent(ctx, ownerID, id, uc.Now()); err != nil {
		return lookupFailed("mark email sent", err, entity.ErrAssignmentNotFound, id)
	}
	return nil
}

// MoveToFollowup flags an ACTIVE assignment MOVED_TO_FOLLOWUP and, when the
// owner has a follow-up template, opens an ACTIVE assignment on it that
// carries the send history over.
func (uc *AssignmentUseCase) MoveToFollowup(ctx context.Context, ownerID, id string) (*entity.FollowupMove, error) {
	a, err := uc.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if a.Status != entity.AssignmentActive {
		return nil, invalidField("assignmentStatus", fmt.Sprintf("cannot move %s assignment to follow-up", a.Status))
	}

	followTpl, err := uc.findFollowupTemplate(ctx, ownerID, a.TemplateID)
	if err != nil {
		return nil, err
	}

	now := uc.Now()
	move := &entity.FollowupMove{Previous: a}
	txn := NewTransaction(uc.Logger)

	if followTpl != nil {
		existing, err := uc.Repo.FindActive(ctx, ownerID, a.RecruiterID, followTpl.ID)
		switch {
		case err == nil:
			move.Followup = existing
		case errors.Is(err, entity.ErrAssignmentNotFound):
			next := entity.NewAssignment(ownerID, a.RecruiterID, followTpl.ID, now)
			next.WeekAssigned = a.WeekAssigned
			next.YearAssigned = a.YearAssigned
			next.EmailsSent = a.EmailsSent
			next.LastEmailSentAt = a.LastEmailSentAt

			txn.AddOperation("create_followup_assignment", func(ctx context.Context) error {
				return uc.Repo.Create(ctx, next)
			})
			txn.AddCompensation("delete_followup_assignment", func(ctx context.Context) error {
				return uc.Repo.Delete(ctx, ownerID, next.ID)
			})
			move.Followup = next
		default:
			return nil, databaseError("find follow-up assignment", err)
		}
	}

	txn.AddOperation("flag_moved_to_followup", func(ctx context.Context) error {
		return uc.Repo.UpdateStatus(ctx, ownerID, a.ID, entity.AssignmentMovedToFollowup)
	})

	if err := txn.Execute(ctx); err != nil {
		return nil, databaseError("move assignment to follow-up", err)
	}

	a.Status = entity.AssignmentMovedToFollowup
	a.UpdatedAt = now

	fields := []zap.Field{
		zap.String("owner_id", ownerID),
		zap.String("assignment_id", a.ID),
	}
	if move.Followup != nil {
		fields = append(fields, zap.String("followup_assignment_id", move.Followup.ID))
	}
	uc.Logger.Info("assignment moved to follow-up", fields...)
	return move, nil
}

// findFollowupTemplate prefers the template's own follow-up link and falls
// back to the owner's first ACTIVE FOLLOW_UP template. nil means none.
func (uc *AssignmentUseCase) findFollowupTemplate(ctx context.Context, ownerID, templateID string) (*entity.Template, error) {
	current, err := uc.Templates.FindByID(ctx, ownerID, templateID)
	if err != nil && !errors.Is(err, entity.ErrTemplateNotFound) {
		return nil, databaseError("find template", err)
	}
	if current != nil && current.FollowUpTemplateID != "" && current.FollowUpTemplateID != templateID {
		linked, err := uc.Templates.FindByID(ctx, ownerID, current.FollowUpTemplateID)
		if err == nil && linked.Status != entity.TemplateArchived {
			return linked, nil
		}
		if err != nil && !errors.Is(err, entity.ErrTemplateNotFound) {
			return nil, databaseError("find linked follow-up template", err)
		}
	}

	candidates, err := uc.Templates.List(ctx, ownerID, entity.TemplateFilter{
		Status:   entity.TemplateActive,
		Category: entity.CategoryFollowUp,
	})
	if err != nil {
		return nil, databaseError("list follow-up templates", err)
	}
	for _, t := range candidates {
		if t.ID != templateID {
			return t, nil
		}
	}
	return nil, nil
}

// UpdateStatus applies a manual transition: ACTIVE to COMPLETED, or anything
// not terminal to ARCHIVED.
func (uc *AssignmentUseCase) UpdateStatus(ctx context.Context, ownerID, id string, status entity.AssignmentStatus) (*entity.Assignment, error) {
	if !status.Valid() {
		return nil, invalidField("status", "is not a known assignment status")
	}
	a, err := uc.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !a.CanTransition(status) {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: fmt.Sprintf("cannot change assignment from %s to %s", a.Status, status),
			Fields:  []ValidationError{{Field: "status", Message: "transition not allowed"}},
			Err:     entity.ErrInvalidTransition,
		}
	}
	if err := uc.Repo.UpdateStatus(ctx, ownerID, id, status); err != nil {
		return nil, lookupFailed("update assignment status", err, entity.ErrAssignmentNotFound, id)
	}
	a.Status = status
	a.UpdatedAt = uc.Now()
	return a, nil
}

func (uc *AssignmentUseCase) Delete(ctx context.Context, ownerID, id string) error {
	if err := uc.Repo.Delete(ctx, ownerID, id); err != nil {
		return lookupFailed("delete assignment", err, entity.ErrAssignmentNotFound, id)
	}
	return nil
}

func (uc *AssignmentUseCase) BulkDelete(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, invalidField("assignmentIds", "must not be empty")
	}
	n, err := uc.Repo.DeleteMany(ctx, ownerID, ids)
	if err != nil {
		return 0, databaseError("bulk delete assignments", err)
	}
	return n, nil
}

func (uc *AssignmentUseCase) attachRecruiters(ctx context.Context, ownerID string, list []*entity.Assignment) {
	cache := map[string]*entity.Recruiter{}
	for _, a := range list {
		if r, ok := cache[a.RecruiterID]; ok {
			a.Recruiter = r
			continue
		}
		r, err := uc.Recruiters.FindByID(ctx, ownerID, a.RecruiterID)
		if err != nil {
			uc.Logger.Debug("assignment recruiter not loaded",
				zap.String("assignment_id", a.ID),
				zap.Error(err),
			)
			continue
		}
		cache[a.RecruiterID] = r
		a.Recruiter = r
	}
}

// dayRange turns inclusive calendar days into the half-open UTC interval
// [start 00:00, end+1 00:00).
func dayRange(start, end time.Time) (time.Time, time.Time, error) {
	from := startOfDay(start)
	to := startOfDay(end).AddDate(0, 0, 1)
	if !to.After(from) {
		return time.Time{}, time.Time{}, invalidField("endDate", "must not be before startDate")
	}
	return from, to, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func weekStart(t time.Time) time.Time {
	d := startOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// weekLabel renders "Sep 16-22, 2024" or "Sep 30-Oct 6, 2024".
func weekLabel(start, end time.Time) string {
	if start.Month() == end.Month() {
		return fmt.Sprintf("%s-%d, %d", start.Format("Jan 2"), end.Day(), start.Year())
	}
	return fmt.Sprintf("%s-%s, %d", start.Format("Jan 2"), end.Format("Jan 2"), start.Year())
}
