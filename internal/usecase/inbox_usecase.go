package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

const dedupeScope = "incoming"

type InboxUseCase struct {
	Repo    entity.IncomingEmailRepository
	Deduper MessageDeduper
	Logger  *zap.Logger
}

func NewInboxUseCase(repo entity.IncomingEmailRepository, deduper MessageDeduper, logger *zap.Logger) *InboxUseCase {
	return &InboxUseCase{Repo: repo, Deduper: deduper, Logger: logger}
}

// Ingest stores a received message once per message id. A repeat returns
// ErrIncomingEmailDuplicate wrapped as a CONFLICT.
func (uc *InboxUseCase) Ingest(ctx context.Context, ownerID string, input IngestInput) (*entity.IncomingEmail, error) {
	var errs []ValidationError
	if strings.TrimSpace(input.MessageID) == "" {
		errs = append(errs, ValidationError{"messageId", "is required"})
	}
	if strings.TrimSpace(input.SenderEmail) == "" {
		errs = append(errs, ValidationError{"senderEmail", "is required"})
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	if uc.Deduper != nil && !uc.Deduper.AcquireOnce(ctx, dedupeScope, ownerID+":"+input.MessageID) {
		return nil, duplicateIncoming(input.MessageID)
	}

	e := entity.NewIncomingEmail(ownerID, input.MessageID, strings.TrimSpace(input.SenderEmail), input.Subject, input.Body)
	e.SenderName = strings.TrimSpace(input.SenderName)
	if input.ReceivedAt != nil {
		e.ReceivedAt = *input.ReceivedAt
	}
	e.Category, e.ConfidenceScore = Classify(e.Subject, e.Body, e.SenderEmail)
	e.Priority = e.Category.Priority()
	e.IsProcessed = true

	if err := uc.Repo.Create(ctx, e); err != nil {
		if errors.Is(err, entity.ErrIncomingEmailDuplicate) {
			return nil, duplicateIncoming(input.MessageID)
		}
		return nil, databaseError("store incoming email", err)
	}

	uc.Logger.Info("incoming email ingested",
		zap.String("owner_id", ownerID),
		zap.String("message_id", e.MessageID),
		zap.String("category", string(e.Category)),
	)
	return e, nil
}

func (uc *InboxUseCase) List(ctx context.Context, ownerID string, category entity.IncomingCategory, page entity.PageRequest) (*entity.Page[*entity.IncomingEmail], error) {
	if category != "" && !category.Valid() {
		return nil, invalidField("category", "is not a known category")
	}
	res, err := uc.Repo.List(ctx, ownerID, category, page.Normalize())
	if err != nil {
		return nil, databaseError("list incoming emails", err)
	}
	return res, nil
}

func (uc *InboxUseCase) UnreadCount(ctx context.Context, ownerID string, category entity.IncomingCategory) (int64, error) {
	if category != "" && !category.Valid() {
		return 0, invalidField("category", "is not a known category")
	}
	n, err := uc.Repo.CountUnread(ctx, ownerID, category)
	if err != nil {
		return 0, databaseError("count unread emails", err)
	}
	return n, nil
}

func (uc *InboxUseCase) MarkRead(ctx context.Context, ownerID, id string, read bool) error {
	if err := uc.Repo.SetRead(ctx, ownerID, id, read); err != nil {
		return lookupFailed("mark email read", err, entity.ErrIncomingEmailNotFound, id)
	}
	return nil
}

func (uc *InboxUseCase) MarkProcessed(ctx context.Context, ownerID, id string, processed bool) error {
	if err := uc.Repo.SetProcessed(ctx, ownerID, id, processed); err != nil {
		return lookupFailed("mark email processed", err, entity.ErrIncomingEmailNotFound, id)
	}
	return nil
}

// Recategorize corrects a wrong classification.
func (uc *InboxUseCase) Recategorize(ctx context.Context, ownerID, id string, category entity.IncomingCategory) error {
	if !category.Valid() {
		return invalidField("category", "is not a known category")
	}
	if err := uc.Repo.SetCategory(ctx, ownerID, id, category); err != nil {
		return lookupFailed("update email category", err, entity.ErrIncomingEmailNotFound, id)
	}
	return nil
}

func duplicateIncoming(messageID string) *DomainError {
	return &DomainError{
		Code:    CodeConflict,
		Message: "incoming email already ingested: " + messageID,
		Err:     entity.ErrIncomingEmailDuplicate,
	}
}
