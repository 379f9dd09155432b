package usecase

import (
	"context"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

// EmailTransport delivers one resolved message. An empty message id lets the
// caller assign its own.
type EmailTransport interface {
	Send(ctx context.Context, msg entity.OutgoingEmail) (string, error)
}

type ProgressionPublisher interface {
	PublishProgression(ctx context.Context, event entity.ProgressionEvent) error
}

type FollowupMover interface {
	MoveToFollowup(ctx context.Context, ownerID, assignmentID string) (*entity.FollowupMove, error)
}

// EmailSentMarker is the part of the assignment ledger the send flows touch.
type EmailSentMarker interface {
	MarkEmailSent(ctx context.Context, ownerID, assignmentID string) error
}

type UsageRecorder interface {
	RecordSend(ctx context.Context, ownerID, templateID string, emails int64)
}

type ContactMarker interface {
	MarkAsContacted(ctx context.Context, ownerID, recruiterID string) (*entity.Recruiter, error)
}

type BulkAssigner interface {
	BulkAssign(ctx context.Context, ownerID string, recruiterIDs []string, templateID string) (*BulkAssignOutput, error)
}

// MessageDeduper reports true the first time a key is seen within its window.
type MessageDeduper interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
}

type TokenIssuer interface {
	GenerateToken(userID, email string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
