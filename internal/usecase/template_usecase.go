package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type TemplateUseCase struct {
	Repo   entity.TemplateRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewTemplateUseCase(repo entity.TemplateRepository, logger *zap.Logger) *TemplateUseCase {
	return &TemplateUseCase{Repo: repo, Logger: logger, Now: time.Now}
}

func (uc *TemplateUseCase) Create(ctx context.Context, ownerID string, input TemplateInput) (*entity.Template, error) {
	if errs := ValidateTemplateInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	if err := uc.ensureUniqueName(ctx, ownerID, input.Name, ""); err != nil {
		return nil, err
	}

	t := entity.NewTemplate(ownerID, input.Name, input.Subject, input.Body, input.Category)
	if input.Status != "" {
		t.Status = input.Status
	}
	if input.Tags != nil {
		t.Tags = normalizeTags(input.Tags)
	}
	t.FollowUpTemplateID = input.FollowUpTemplateID
	t.IsDefault = input.IsDefault

	if err := uc.Repo.Create(ctx, t); err != nil {
		if errors.Is(err, entity.ErrTemplateNameExists) {
			return nil, invalidField("name", "a template with this name already exists")
		}
		return nil, databaseError("create template", err)
	}
	uc.keepSingleActive(ctx, t)

	uc.Logger.Info("template created",
		zap.String("owner_id", ownerID),
		zap.String("template_id", t.ID),
		zap.String("category", string(t.Category)),
	)
	return t, nil
}

// Update replaces every mutable field of the template.
func (uc *TemplateUseCase) Update(ctx context.Context, ownerID, id string, input TemplateInput) (*entity.Template, error) {
	if errs := ValidateTemplateInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	t, err := uc.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureUniqueName(ctx, ownerID, input.Name, id); err != nil {
		return nil, err
	}
	if input.FollowUpTemplateID == id {
		return nil, invalidField("followUpTemplateId", "must reference a different template")
	}

	t.Name = strings.TrimSpace(input.Name)
	t.Subject = input.Subject
	t.Body = input.Body
	t.Category = input.Category
	if input.Status != "" {
		t.Status = input.Status
	}
	t.Tags = normalizeTags(input.Tags)
	t.FollowUpTemplateID = input.FollowUpTemplateID
	t.IsDefault = input.IsDefault
	t.UpdatedAt = uc.Now()

	if err := uc.Repo.Update(ctx, t); err != nil {
		return nil, lookupFailed("update template", err, entity.ErrTemplateNotFound, id)
	}
	uc.keepSingleActive(ctx, t)
	return t, nil
}

func (uc *TemplateUseCase) Get(ctx context.Context, ownerID, id string) (*entity.Template, error) {
	t, err := uc.Repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, lookupFailed("find template", err, entity.ErrTemplateNotFound, id)
	}
	return t, nil
}

func (uc *TemplateUseCase) List(ctx context.Context, ownerID string, filter entity.TemplateFilter) ([]*entity.Template, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalidField("status", "must be DRAFT, ACTIVE or ARCHIVED")
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, invalidField("category", "is not a known category")
	}
	list, err := uc.Repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, databaseError("list templates", err)
	}
	return list, nil
}

func (uc *TemplateUseCase) Delete(ctx context.Context, ownerID, id string) error {
	if err := uc.Repo.Delete(ctx, ownerID, id); err != nil {
		return lookupFailed("delete template", err, entity.ErrTemplateNotFound, id)
	}
	return nil
}

func (uc *TemplateUseCase) Duplicate(ctx context.Context, ownerID, id string) (*entity.Template, error) {
	src, err := uc.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	cp := src.Copy()
	if err := uc.Repo.Create(ctx, cp); err != nil {
		if errors.Is(err, entity.ErrTemplateNameExists) {
			return nil, invalidField("name", "a copy with this name already exists")
		}
		return nil, databaseError("duplicate template", err)
	}
	return cp, nil
}

// Archive is terminal until the template is explicitly activated again.
func (uc *TemplateUseCase) Archive(ctx context.Context, ownerID, id string) (*entity.Template, error) {
	return uc.setStatus(ctx, ownerID, id, entity.TemplateArchived)
}

func (uc *TemplateUseCase) Activate(ctx context.Context, ownerID, id string) (*entity.Template, error) {
	return uc.setStatus(ctx, ownerID, id, entity.TemplateActive)
}

// Use bumps the usage counter for an explicit "use" action.
func (uc *TemplateUseCase) Use(ctx context.Context, ownerID, id string) error {
	if err := uc.Repo.IncrementUsage(ctx, ownerID, id, uc.Now()); err != nil {
		return lookupFailed("record template usage", err, entity.ErrTemplateNotFound, id)
	}
	return nil
}

// RecordSend tracks usage after a send. Failures are logged and never returned.
func (uc *TemplateUseCase) RecordSend(ctx context.Context, ownerID, templateID string, emails int64) {
	if templateID == "" {
		return
	}
	if err := uc.Repo.IncrementUsage(ctx, ownerID, templateID, uc.Now()); err != nil {
		uc.Logger.Warn("failed to record template usage",
			zap.String("template_id", templateID),
			zap.Error(err),
		)
	}
	if emails <= 0 {
		return
	}
	if err := uc.Repo.IncrementEmailsSent(ctx, ownerID, templateID, emails); err != nil {
		uc.Logger.Warn("failed to record template emails sent",
			zap.String("template_id", templateID),
			zap.Int64("emails", emails),
			zap.Error(err),
		)
	}
}

func (uc *TemplateUseCase) Stats(ctx context.Context, ownerID string) (*TemplateStats, error) {
	list, err := uc.Repo.List(ctx, ownerID, entity.TemplateFilter{})
	if err != nil {
		return nil, databaseError("template stats", err)
	}
	stats := &TemplateStats{Total: int64(len(list))}
	var rateSum float64
	for _, t := range list {
		switch t.Status {
		case entity.TemplateActive:
			stats.Active++
		case entity.TemplateDraft:
			stats.Draft++
		case entity.TemplateArchived:
			stats.Archived++
		}
		stats.TotalUsage += t.UsageCount
		stats.TotalEmailsSent += t.EmailsSent
		rateSum += t.ResponseRate
	}
	if len(list) > 0 {
		stats.AvgResponseRate = rateSum / float64(len(list))
	}
	return stats, nil
}

func (uc *TemplateUseCase) setStatus(ctx context.Context, ownerID, id string, status entity.TemplateStatus) (*entity.Template, error) {
	t, err := uc.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	t.Status = status
	t.UpdatedAt = uc.Now()
	if err := uc.Repo.Update(ctx, t); err != nil {
		return nil, lookupFailed("update template status", err, entity.ErrTemplateNotFound, id)
	}
	uc.keepSingleActive(ctx, t)
	return t, nil
}

func (uc *TemplateUseCase) ensureUniqueName(ctx context.Context, ownerID, name, selfID string) error {
	existing, err := uc.Repo.FindByName(ctx, ownerID, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, entity.ErrTemplateNotFound) {
			return nil
		}
		return databaseError("check template name", err)
	}
	if existing.ID != selfID {
		return invalidField("name", "a template with this name already exists")
	}
	return nil
}

// keepSingleActive demotes the other ACTIVE templates of the same category.
func (uc *TemplateUseCase) keepSingleActive(ctx context.Context, t *entity.Template) {
	if t.Status != entity.TemplateActive {
		return
	}
	if err := uc.Repo.DemoteActive(ctx, t.OwnerID, t.Category, t.ID); err != nil {
		uc.Logger.Warn("failed to demote active templates",
			zap.String("template_id", t.ID),
			zap.String("category", string(t.Category)),
			zap.Error(err),
		)
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
