package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type RecruiterUseCase struct {
	Repo        entity.RecruiterRepository
	Assignments entity.AssignmentRepository
	Assigner    BulkAssigner
	Logger      *zap.Logger
	Now         func() time.Time
}

func NewRecruiterUseCase(
	repo entity.RecruiterRepository,
	assignments entity.AssignmentRepository,
	assigner BulkAssigner,
	logger *zap.Logger,
) *RecruiterUseCase {
	return &RecruiterUseCase{
		Repo:        repo,
		Assignments: assignments,
		Assigner:    assigner,
		Logger:      logger,
		Now:         time.Now,
	}
}

func (uc *RecruiterUseCase) Create(ctx context.Context, ownerID string, input RecruiterInput) (*entity.Recruiter, error) {
	if errs := ValidateRecruiterInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	r := entity.NewRecruiter(ownerID, input.Email, input.RecruiterName, input.CompanyName, input.JobRole)
	r.LinkedinProfile = strings.TrimSpace(input.LinkedinProfile)
	r.Notes = strings.TrimSpace(input.Notes)
	if input.Status != "" {
		r.Status = input.Status
	}
	if r.Status == entity.RecruiterContacted {
		now := uc.Now()
		r.LastContactedAt = &now
	}

	if err := uc.Repo.Create(ctx, r); err != nil {
		if errors.Is(err, entity.ErrRecruiterEmailExists) {
			return nil, invalidField("email", "a recruiter with this email already exists")
		}
		return nil, databaseError("create recruiter", err)
	}
	return r, nil
}

func (uc *RecruiterUseCase) Update(ctx context.Context, ownerID, id string, input RecruiterInput) (*entity.Recruiter, error) {
	if errs := ValidateRecruiterInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	r, err := uc.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	now := uc.Now()
	if input.Status != "" {
		if r.Status == entity.RecruiterPending && input.Status == entity.RecruiterContacted {
			r.LastContactedAt = &now
		}
		r.Status = input.Status
	}
	r.Email = strings.ToLower(strings.TrimSpace(input.Email))
	r.RecruiterName = strings.TrimSpace(input.RecruiterName)
	r.CompanyName = strings.TrimSpace(input.CompanyName)
	r.JobRole = strings.TrimSpace(input.JobRole)
	r.LinkedinProfile = strings.TrimSpace(input.LinkedinProfile)
	r.Notes = strings.TrimSpace(input.Notes)
	r.UpdatedAt = now

	if err := uc.Repo.Update(ctx, r); err != nil {
		if errors.Is(err, entity.ErrRecruiterEmailExists) {
			return nil, invalidField("email", "a recruiter with this email already exists")
		}
		return nil, lookupFailed("update recruiter", err, entity.ErrRecruiterNotFound, id)
	}
	return r, nil
}

func (uc *RecruiterUseCase) Get(ctx context.Context, ownerID, id string) (*entity.Recruiter, error) {
	r, err := uc.Repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, lookupFailed("find recruiter", err, entity.ErrRecruiterNotFound, id)
	}
	return r, nil
}

func (uc *RecruiterUseCase) List(ctx context.Context, ownerID string, filter entity.RecruiterFilter, page entity.PageRequest) (*entity.Page[*entity.Recruiter], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalidField("status", "is not a known recruiter status")
	}
	res, err := uc.Repo.List(ctx, ownerID, filter, page.Normalize())
	if err != nil {
		return nil, databaseError("list recruiters", err)
	}
	return res, nil
}

func (uc *RecruiterUseCase) ListUncontacted(ctx context.Context, ownerID string) ([]*entity.Recruiter, error) {
	list, err := uc.Repo.ListUncontacted(ctx, ownerID)
	if err != nil {
		return nil, databaseError("list uncontacted recruiters", err)
	}
	return list, nil
}

func (uc *RecruiterUseCase) Stats(ctx context.Context, ownerID string) (*entity.RecruiterStats, error) {
	counts, err := uc.Repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, databaseError("recruiter stats", err)
	}
	stats := &entity.RecruiterStats{
		Pending:   counts[entity.RecruiterPending],
		Contacted: counts[entity.RecruiterContacted],
		Responded: counts[entity.RecruiterResponded],
		Rejected:  counts[entity.RecruiterRejected],
		Hired:     counts[entity.RecruiterHired],
	}
	for _, c := range counts {
		stats.Total += c
	}
	return stats, nil
}

// MarkAsContacted always lands on CONTACTED and moves lastContactedAt to now.
func (uc *RecruiterUseCase) MarkAsContacted(ctx context.Context, ownerID, id string) (*entity.Recruiter, error) {
	r, err := uc.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	r.MarkContacted(uc.Now())
	if err := uc.Repo.Update(ctx, r); err != nil {
		return nil, lookupFailed("mark recruiter contacted", err, entity.ErrRecruiterNotFound, id)
	}
	return r, nil
}

// BulkUpdateStatus writes each recruiter on its own and reports the ids that failed.
func (uc *RecruiterUseCase) BulkUpdateStatus(ctx context.Context, ownerID string, ids []string, status entity.RecruiterStatus) (*BulkStatusOutput, error) {
	if !status.Valid() {
		return nil, invalidField("status", "is not a known recruiter status")
	}
	if len(ids) == 0 {
		return nil, invalidField("recruiterIds", "must not be empty")
	}

	out := &BulkStatusOutput{Failed: map[string]string{}}
	for _, id := range ids {
		r, err := uc.Repo.FindByID(ctx, ownerID, id)
		if err != nil {
			out.Failed[id] = err.Error()
			continue
		}
		now := uc.Now()
		if status == entity.RecruiterContacted {
			r.MarkContacted(now)
		} else {
			r.Status = status
			r.UpdatedAt = now
		}
		if err := uc.Repo.Update(ctx, r); err != nil {
			out.Failed[id] = err.Error()
			continue
		}
		out.Updated++
	}

	if len(out.Failed) > 0 {
		uc.Logger.Warn("bulk status update partially failed",
			zap.String("owner_id", ownerID),
			zap.Int("updated", out.Updated),
			zap.Int("failed", len(out.Failed)),
		)
	}
	return out, nil
}

func (uc *RecruiterUseCase) Delete(ctx context.Context, ownerID, id string) error {
	if err := uc.Repo.Delete(ctx, ownerID, id); err != nil {
		return lookupFailed("delete recruiter", err, entity.ErrRecruiterNotFound, id)
	}
	uc.dropAssignments(ctx, ownerID, []string{id})
	return nil
}

func (uc *RecruiterUseCase) BulkDelete(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, invalidField("recruiterIds", "must not be empty")
	}
	n, err := uc.Repo.DeleteMany(ctx, ownerID, ids)
	if err != nil {
		return 0, databaseError("bulk delete recruiters", err)
	}
	uc.dropAssignments(ctx, ownerID, ids)
	return n, nil
}

func (uc *RecruiterUseCase) dropAssignments(ctx context.Context, ownerID string, recruiterIDs []string) {
	if uc.Assignments == nil {
		return
	}
	if _, err := uc.Assignments.DeleteByRecruiters(ctx, ownerID, recruiterIDs); err != nil {
		uc.Logger.Warn("failed to delete assignments of removed recruiters",
			zap.Strings("recruiter_ids", recruiterIDs),
			zap.Error(err),
		)
	}
}

var csvColumns = map[string]string{
	"email":           "email",
	"recruitername":   "recruiterName",
	"recruiter_name":  "recruiterName",
	"name":            "recruiterName",
	"company":         "companyName",
	"companyname":     "companyName",
	"company_name":    "companyName",
	"role":            "jobRole",
	"jobrole":         "jobRole",
	"job_role":        "jobRole",
	"linkedin":        "linkedinProfile",
	"linkedinprofile": "linkedinProfile",
	"notes":           "notes",
}

// ImportCSV validates and stores each row on its own. Bad or duplicate rows
// are skipped and reported by line number. A non-empty templateID assigns
// every imported recruiter to that template.
func (uc *RecruiterUseCase) ImportCSV(ctx context.Context, ownerID string, src io.Reader, templateID string) (*ImportOutput, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalidField("file", "is empty")
		}
		return nil, invalidField("file", "is not valid CSV: "+err.Error())
	}

	index := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if col, ok := csvColumns[key]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	for _, required := range []string{"email", "recruiterName", "companyName", "jobRole"} {
		if _, ok := index[required]; !ok {
			return nil, invalidField("file", "missing required column "+required)
		}
	}

	out := &ImportOutput{Errors: []string{}}
	var imported []string
	seen := map[string]bool{}
	line := 1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			out.Skipped++
			out.Errors = append(out.Errors, fmt.Sprintf("Line %d: %v", line, err))
			continue
		}
		if isBlankRecord(record) {
			continue
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		input := RecruiterInput{
			Email:           cell("email"),
			RecruiterName:   cell("recruiterName"),
			CompanyName:     cell("companyName"),
			JobRole:         cell("jobRole"),
			LinkedinProfile: cell("linkedinProfile"),
			Notes:           cell("notes"),
		}

		if errs := ValidateRecruiterInput(input); len(errs) > 0 {
			out.Skipped++
			out.Errors = append(out.Errors, fmt.Sprintf("Line %d: %s", line, joinValidation(errs)))
			continue
		}
		key := strings.ToLower(input.Email)
		if seen[key] {
			out.Skipped++
			out.Errors = append(out.Errors, fmt.Sprintf("Line %d: duplicate email %s in file", line, input.Email))
			continue
		}
		seen[key] = true

		r, err := uc.Create(ctx, ownerID, input)
		if err != nil {
			out.Skipped++
			out.Errors = append(out.Errors, fmt.Sprintf("Line %d: %s", line, err.Error()))
			continue
		}
		out.Imported++
		imported = append(imported, r.ID)
	}

	if templateID != "" && len(imported) > 0 && uc.Assigner != nil {
		res, err := uc.Assigner.BulkAssign(ctx, ownerID, imported, templateID)
		if err != nil {
			out.Errors = append(out.Errors, "Assignment: "+err.Error())
		} else {
			out.AssignedCount = len(res.Assigned)
		}
	}

	uc.Logger.Info("recruiter csv import finished",
		zap.String("owner_id", ownerID),
		zap.Int("imported", out.Imported),
		zap.Int("skipped", out.Skipped),
		zap.Int("assigned", out.AssignedCount),
	)
	return out, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func joinValidation(errs []ValidationError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
